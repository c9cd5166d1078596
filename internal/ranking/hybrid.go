// Package ranking merges model-ranked and semantic candidates into one ordered list.
package ranking

import (
	"github.com/Veraticus/cardwise/internal/model"
)

const (
	// ModelWeight scales the precomputed model score.
	ModelWeight = 0.6
	// SemanticWeight scales the semantic similarity score.
	SemanticWeight = 0.4
	// DefaultLimit is used when Merge is called with a non-positive limit.
	DefaultLimit = 5
)

// Merged is a ranked candidate together with the provider(s) it came from.
type Merged struct {
	model.RankedCandidate
	Origin model.Origin
}

// Merge combines both candidate lists, weights their scores and returns at most
// limit entries by descending combined score. Ties are ordered by card ID.
func Merge(modelCands, semanticCands []model.ScoredCandidate, limit int) []model.RankedCandidate {
	merged := MergeWithOrigin(modelCands, semanticCands, limit)
	out := make([]model.RankedCandidate, len(merged))
	for i, m := range merged {
		out[i] = m.RankedCandidate
	}
	return out
}

// MergeWithOrigin is Merge but keeps the origin of every entry.
func MergeWithOrigin(modelCands, semanticCands []model.ScoredCandidate, limit int) []Merged {
	if limit <= 0 {
		limit = DefaultLimit
	}

	byModel := index(modelCands)
	bySemantic := index(semanticCands)

	merged := make([]Merged, 0, len(byModel)+len(bySemantic))
	for id, m := range byModel {
		if s, ok := bySemantic[id]; ok {
			merged = append(merged, Merged{
				RankedCandidate: model.RankedCandidate{
					CardID:  id,
					Score:   ModelWeight*m.Score + SemanticWeight*s.Score,
					Reason:  s.Reason,
					Details: m.Card,
				},
				Origin: model.OriginBoth,
			})
			continue
		}
		merged = append(merged, Merged{
			RankedCandidate: model.RankedCandidate{
				CardID:  id,
				Score:   ModelWeight * m.Score,
				Details: m.Card,
			},
			Origin: model.OriginModelOnly,
		})
	}
	for id, s := range bySemantic {
		if _, ok := byModel[id]; ok {
			continue
		}
		merged = append(merged, Merged{
			RankedCandidate: model.RankedCandidate{
				CardID:  id,
				Score:   SemanticWeight * s.Score,
				Reason:  s.Reason,
				Details: s.Card,
			},
			Origin: model.OriginSemanticOnly,
		})
	}

	ordered := make(model.RankedCandidates, len(merged))
	positions := make(map[string]int, len(merged))
	for i, m := range merged {
		ordered[i] = m.RankedCandidate
		positions[m.CardID] = i
	}
	top := ordered.TopN(limit)

	result := make([]Merged, len(top))
	for i, rc := range top {
		result[i] = Merged{RankedCandidate: rc, Origin: merged[positions[rc.CardID]].Origin}
	}
	return result
}

// index maps candidates by card ID; a later duplicate replaces an earlier one.
func index(cands []model.ScoredCandidate) map[string]model.ScoredCandidate {
	byID := make(map[string]model.ScoredCandidate, len(cands))
	for _, c := range cands {
		byID[c.CardID] = c
	}
	return byID
}
