package provider

import (
	"context"
	"log/slog"
	"math"

	"github.com/Veraticus/cardwise/internal/model"
)

const (
	// DefaultTopK is how many semantic matches are requested by default.
	DefaultTopK = 10

	// positionStep is the score lost per position when similarities are unusable.
	positionStep = 0.05
)

// Match is a single similarity search hit.
type Match struct {
	Card       model.Candidate
	Similarity float64
}

// Retriever finds the cards most similar to a query, best match first.
type Retriever interface {
	Available() bool
	Search(ctx context.Context, query string, k int) ([]Match, error)
}

// SemanticSearchProvider turns retriever matches into scored candidates.
type SemanticSearchProvider struct {
	retriever Retriever
	logger    *slog.Logger
	topK      int
}

// NewSemanticSearchProvider wraps a retriever. A nil retriever is allowed and
// makes every Fetch return nothing.
func NewSemanticSearchProvider(retriever Retriever, topK int, logger *slog.Logger) *SemanticSearchProvider {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SemanticSearchProvider{retriever: retriever, topK: topK, logger: logger}
}

// Fetch searches with the contextualized query. Scores are the retriever's
// similarities when they all fall in [0, 1], otherwise position-based.
func (p *SemanticSearchProvider) Fetch(ctx context.Context, query string) []model.ScoredCandidate {
	if p.retriever == nil || !p.retriever.Available() {
		return nil
	}

	matches, err := p.retriever.Search(ctx, query, p.topK)
	if err != nil {
		p.logger.Warn("semantic search failed", "error", err)
		return nil
	}
	if len(matches) > p.topK {
		matches = matches[:p.topK]
	}

	comparable := similaritiesComparable(matches)

	candidates := make([]model.ScoredCandidate, 0, len(matches))
	for i, m := range matches {
		score := m.Similarity
		if !comparable {
			score = PositionScore(i)
		}
		candidates = append(candidates, model.ScoredCandidate{
			CardID: m.Card.CardID,
			Score:  score,
			Rank:   i + 1,
			Card:   m.Card,
		})
	}

	return candidates
}

// PositionScore is the fallback score for the i-th result (0-based).
func PositionScore(i int) float64 {
	score := 1.0 - float64(i)*positionStep
	if score < 0 {
		return 0
	}
	return score
}

func similaritiesComparable(matches []Match) bool {
	for _, m := range matches {
		if m.Similarity < 0 || m.Similarity > 1 || math.IsNaN(m.Similarity) {
			return false
		}
	}
	return true
}
