package model

import (
	"fmt"
	"sort"
	"time"
)

// Origin records which provider(s) produced a merged candidate.
type Origin string

const (
	// OriginModelOnly marks a candidate only present in the model ranking.
	OriginModelOnly Origin = "model"
	// OriginSemanticOnly marks a candidate only found by semantic search.
	OriginSemanticOnly Origin = "semantic"
	// OriginBoth marks a candidate returned by both providers.
	OriginBoth Origin = "both"
)

// ScoredCandidate is a single provider result. Rank is the model rank for
// model-ranked results and the 1-based result position for semantic results.
type ScoredCandidate struct {
	Card   Candidate
	CardID string
	Reason string
	Score  float64
	Rank   int
}

// RankedCandidate is one entry of the final, merged recommendation list.
type RankedCandidate struct {
	Details Candidate `json:"details"`
	CardID  string    `json:"card_id"`
	Reason  string    `json:"reason"`
	Score   float64   `json:"score"`
}

// ModelScore is a precomputed relevance score for a user/card pair.
type ModelScore struct {
	UserID string
	CardID string
	Score  float64
	Rank   int
}

// SavedRecommendation is a persisted recommendation row.
type SavedRecommendation struct {
	CreatedAt time.Time
	UserID    string
	CardID    string
	Reason    string
	Score     float64
}

// RankedCandidates is a slice of RankedCandidate that supports sorting.
type RankedCandidates []RankedCandidate

// Len implements sort.Interface.
func (r RankedCandidates) Len() int {
	return len(r)
}

// Less implements sort.Interface - higher scores come first.
func (r RankedCandidates) Less(i, j int) bool {
	if r[i].Score != r[j].Score {
		return r[i].Score > r[j].Score
	}
	// Equal scores fall back to card ID so output is reproducible.
	return r[i].CardID < r[j].CardID
}

// Swap implements sort.Interface.
func (r RankedCandidates) Swap(i, j int) {
	r[i], r[j] = r[j], r[i]
}

// Sort sorts the candidates by score in descending order.
func (r RankedCandidates) Sort() {
	sort.Sort(r)
}

// TopN returns the N highest-scoring candidates.
func (r RankedCandidates) TopN(n int) RankedCandidates {
	if n <= 0 {
		return RankedCandidates{}
	}

	r.Sort()

	if n > len(r) {
		n = len(r)
	}

	result := make(RankedCandidates, n)
	copy(result, r[:n])
	return result
}

// Validate ensures no card appears twice and every entry has an ID.
func (r RankedCandidates) Validate() error {
	seen := make(map[string]bool)

	for i, candidate := range r {
		if candidate.CardID == "" {
			return fmt.Errorf("candidate at index %d has no card ID", i)
		}
		if seen[candidate.CardID] {
			return fmt.Errorf("duplicate card %q in candidates", candidate.CardID)
		}
		seen[candidate.CardID] = true
	}

	return nil
}
