// Package recommend runs the hybrid recommendation pipeline for one request.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/cardwise/internal/benefit"
	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/explain"
	"github.com/Veraticus/cardwise/internal/insight"
	"github.com/Veraticus/cardwise/internal/llm"
	"github.com/Veraticus/cardwise/internal/metrics"
	"github.com/Veraticus/cardwise/internal/model"
	"github.com/Veraticus/cardwise/internal/provider"
	"github.com/Veraticus/cardwise/internal/ranking"
)

// DefaultProviderTimeout bounds the concurrent provider fetch.
const DefaultProviderTimeout = 10 * time.Second

// Store is the persistence subset the service reads and writes.
type Store interface {
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	GetSpending(ctx context.Context, userID string) (map[string]float64, error)
	SaveRecommendations(ctx context.Context, userID string, recs []model.RankedCandidate) error
}

// Summarizer turns a finished recommendation into prose.
type Summarizer interface {
	Summarize(ctx context.Context, in llm.SummaryInput) string
}

// Request is one recommendation question.
type Request struct {
	UserID  string `json:"user_id"`
	Query   string `json:"query" validate:"required"`
	Limit   int    `json:"limit,omitempty" validate:"gte=0"`
	Save    bool   `json:"save,omitempty"`
	Summary bool   `json:"summary,omitempty"`
}

// Recommendation is a merged candidate prepared for display.
type Recommendation struct {
	model.RankedCandidate
	Origin   model.Origin          `json:"origin"`
	Benefits []model.ParsedBenefit `json:"parsed_benefits"`
	Rank     int                   `json:"rank"`
}

// Result is the outcome of one recommendation run.
type Result struct {
	Profile         *model.UserProfile     `json:"profile,omitempty"`
	Insight         *model.SpendingInsight `json:"insight,omitempty"`
	RunID           string                 `json:"run_id"`
	UserID          string                 `json:"user_id"`
	Query           string                 `json:"query"`
	ContextualQuery string                 `json:"contextual_query"`
	Summary         string                 `json:"summary,omitempty"`
	Recommendations []Recommendation       `json:"recommendations"`
	Saved           bool                   `json:"saved"`
}

// Ranked returns the merged list without display decorations.
func (r *Result) Ranked() []model.RankedCandidate {
	out := make([]model.RankedCandidate, len(r.Recommendations))
	for i, rec := range r.Recommendations {
		out[i] = rec.RankedCandidate
	}
	return out
}

// Options configures a Service.
type Options struct {
	Logger          *slog.Logger
	Summarizer      Summarizer
	Limit           int
	ProviderTimeout time.Duration
}

// Service wires the providers, the explanation generator and the ranker together.
type Service struct {
	store      Store
	models     provider.Provider
	semantic   provider.Provider
	summarizer Summarizer
	logger     *slog.Logger
	limit      int
	timeout    time.Duration
}

// NewService creates a recommendation service. Either provider may be nil,
// in which case it contributes no candidates.
func NewService(store Store, models, semantic provider.Provider, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Limit <= 0 {
		opts.Limit = ranking.DefaultLimit
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}
	return &Service{
		store:      store,
		models:     models,
		semantic:   semantic,
		summarizer: opts.Summarizer,
		logger:     opts.Logger,
		limit:      opts.Limit,
		timeout:    opts.ProviderTimeout,
	}
}

// Recommend answers req. A missing user or missing spending data is not an
// error: the run continues without that context. An empty result is
// returned as a Result with no recommendations.
func (s *Service) Recommend(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	defer func() {
		var origins []model.Origin
		if result != nil {
			for _, rec := range result.Recommendations {
				origins = append(origins, rec.Origin)
			}
		}
		metrics.ObserveRecommendation(start, origins, err)
	}()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, common.NewUserError("please enter a question", common.ErrEmptyQuery)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.limit
	}

	result = &Result{
		RunID:  uuid.NewString(),
		UserID: req.UserID,
		Query:  query,
	}
	logger := s.logger.With("run_id", result.RunID, "user_id", req.UserID)

	result.Profile = s.loadProfile(ctx, logger, req.UserID)
	result.Insight = s.loadInsight(ctx, logger, req.UserID)

	if result.Profile != nil && result.Profile.SpendingSummary == "" && result.Insight != nil {
		profile := *result.Profile
		profile.SpendingSummary = insight.Summarize(*result.Insight)
		result.Profile = &profile
	}

	result.ContextualQuery = provider.ContextualizeQuery(query, result.Profile, result.Insight)

	modelCands, semanticCands, err := s.fetch(ctx, req.UserID, result.ContextualQuery)
	if err != nil {
		return nil, err
	}
	logger.Debug("providers returned",
		"model_candidates", len(modelCands),
		"semantic_candidates", len(semanticCands))

	for i := range semanticCands {
		semanticCands[i].Reason = explain.Explain(semanticCands[i].Card, query, result.Profile, result.Insight)
	}

	merged := ranking.MergeWithOrigin(modelCands, semanticCands, limit)
	result.Recommendations = make([]Recommendation, len(merged))
	for i, m := range merged {
		result.Recommendations[i] = Recommendation{
			RankedCandidate: m.RankedCandidate,
			Origin:          m.Origin,
			Benefits:        benefit.Parse(m.Details.RawBenefits),
			Rank:            i + 1,
		}
	}

	if len(merged) == 0 {
		logger.Info("no matching cards", "query", query)
		return result, nil
	}

	if req.Save && req.UserID != "" {
		if err := s.store.SaveRecommendations(ctx, req.UserID, result.Ranked()); err != nil {
			logger.Warn("failed to save recommendations", "error", err)
		} else {
			result.Saved = true
		}
	}

	if req.Summary && s.summarizer != nil {
		result.Summary = s.summarizer.Summarize(ctx, llm.SummaryInput{
			Profile:         result.Profile,
			Insight:         result.Insight,
			Query:           query,
			Recommendations: result.Ranked(),
		})
	}

	logger.Info("recommendation complete",
		"results", len(result.Recommendations),
		"duration", time.Since(start))

	return result, nil
}

func (s *Service) loadProfile(ctx context.Context, logger *slog.Logger, userID string) *model.UserProfile {
	if userID == "" {
		return nil
	}
	profile, err := s.store.GetUserProfile(ctx, userID)
	if errors.Is(err, common.ErrUserNotFound) {
		logger.Info("user not found, continuing without profile")
		return nil
	}
	if err != nil {
		logger.Warn("failed to load user profile", "error", err)
		return nil
	}
	return profile
}

func (s *Service) loadInsight(ctx context.Context, logger *slog.Logger, userID string) *model.SpendingInsight {
	if userID == "" {
		return nil
	}
	amounts, err := s.store.GetSpending(ctx, userID)
	if err != nil {
		logger.Warn("failed to load spending", "error", err)
		return nil
	}
	if len(amounts) == 0 {
		return nil
	}
	in := insight.Extract(amounts, insight.Total(amounts))
	return &in
}

// fetch queries both providers concurrently under the provider timeout.
func (s *Service) fetch(ctx context.Context, userID, contextualQuery string) (modelCands, semanticCands []model.ScoredCandidate, err error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(fetchCtx)
	if s.models != nil && userID != "" {
		g.Go(func() error {
			modelCands = s.models.Fetch(gctx, userID)
			metrics.ObserveProvider("model", len(modelCands))
			return nil
		})
	}
	if s.semantic != nil {
		g.Go(func() error {
			semanticCands = s.semantic.Fetch(gctx, contextualQuery)
			metrics.ObserveProvider("semantic", len(semanticCands))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	// The caller going away is the only failure; a provider timeout just
	// means fewer candidates.
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return modelCands, semanticCands, nil
}
