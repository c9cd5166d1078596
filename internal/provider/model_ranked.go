package provider

import (
	"context"
	"log/slog"

	"github.com/Veraticus/cardwise/internal/model"
)

// DefaultModelLimit caps how many precomputed rankings are read per user.
const DefaultModelLimit = 20

// ScoreStore is the storage subset the model-ranked provider reads from.
type ScoreStore interface {
	GetModelScores(ctx context.Context, userID string, limit int) ([]model.ModelScore, error)
	GetCards(ctx context.Context, cardIDs []string) (map[string]model.Candidate, error)
}

// ModelRankedProvider serves precomputed per-user relevance scores.
type ModelRankedProvider struct {
	store  ScoreStore
	logger *slog.Logger
	limit  int
}

// NewModelRankedProvider creates a provider that returns up to limit entries
// per user. A non-positive limit uses DefaultModelLimit.
func NewModelRankedProvider(store ScoreStore, limit int, logger *slog.Logger) *ModelRankedProvider {
	if limit <= 0 {
		limit = DefaultModelLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelRankedProvider{store: store, limit: limit, logger: logger}
}

// Fetch returns the user's ranked cards in rank order. Rankings that reference
// cards missing from the catalog are skipped.
func (p *ModelRankedProvider) Fetch(ctx context.Context, userID string) []model.ScoredCandidate {
	if p.store == nil || userID == "" {
		return nil
	}

	scores, err := p.store.GetModelScores(ctx, userID, p.limit)
	if err != nil {
		p.logger.Warn("model ranking unavailable", "user_id", userID, "error", err)
		return nil
	}
	if len(scores) == 0 {
		return nil
	}

	ids := make([]string, 0, len(scores))
	for _, s := range scores {
		ids = append(ids, s.CardID)
	}

	cards, err := p.store.GetCards(ctx, ids)
	if err != nil {
		p.logger.Warn("failed to load ranked cards", "user_id", userID, "error", err)
		return nil
	}

	candidates := make([]model.ScoredCandidate, 0, len(scores))
	for _, s := range scores {
		card, ok := cards[s.CardID]
		if !ok {
			p.logger.Debug("skipping ranking for unknown card", "card_id", s.CardID)
			continue
		}
		candidates = append(candidates, model.ScoredCandidate{
			CardID: s.CardID,
			Score:  s.Score,
			Rank:   s.Rank,
			Card:   card,
		})
		if len(candidates) == p.limit {
			break
		}
	}

	return candidates
}
