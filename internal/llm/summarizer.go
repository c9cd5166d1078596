package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Veraticus/cardwise/internal/benefit"
	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/model"
	"github.com/Veraticus/cardwise/internal/service"
)

// FallbackSummary is returned when the language model cannot be reached.
const FallbackSummary = "Sorry, something went wrong while writing the summary. Please ask again."

const summarySystemPrompt = `You are a credit card recommendation expert. Answer the user's question
accurately and kindly, using only the card information provided. For every card you recommend,
include its name, issuer and main benefits grouped by category, and highlight the benefits that
match the user's spending pattern. Recommend the best fitting card first and explain why.`

const summaryPromptTemplate = `The user asked:
%s

User profile and recommended cards:
%s

Answer format:
1. A short summary of the user's spending pattern
2. For each recommended card: name, issuer, why it fits this user, main benefits by category
3. An overall recommendation

Write the answer as a friendly, natural reply.`

// SummaryInput is everything the summary prompt is built from.
type SummaryInput struct {
	Profile         *model.UserProfile
	Insight         *model.SpendingInsight
	Query           string
	Recommendations []model.RankedCandidate
}

// summaryContext is the JSON document embedded in the prompt.
type summaryContext struct {
	Profile summaryProfile `json:"user_profile"`
	Cards   []summaryCard  `json:"recommended_cards"`
}

type summaryProfile struct {
	TopCategories map[string]float64 `json:"top_categories,omitempty"`
	AgeBand       string             `json:"age_band,omitempty"`
	Gender        string             `json:"gender,omitempty"`
	IncomeLevel   string             `json:"income_level,omitempty"`
	Occupation    string             `json:"occupation,omitempty"`
	Spending      string             `json:"spending_summary,omitempty"`
	TotalSpend    float64            `json:"total_spend,omitempty"`
}

type summaryCard struct {
	Name             string   `json:"name"`
	Issuer           string   `json:"issuer"`
	Type             string   `json:"type,omitempty"`
	Reason           string   `json:"reason,omitempty"`
	DetailedBenefits string   `json:"detailed_benefits,omitempty"`
	ImageURL         string   `json:"image_url,omitempty"`
	Benefits         []string `json:"benefits"`
	Number           int      `json:"number"`
	Score            float64  `json:"score"`
}

// Summarizer turns ranked recommendations into a conversational answer.
type Summarizer struct {
	client  Client
	cache   *responseCache
	limiter *rate.Limiter
	logger  *slog.Logger
	retry   service.RetryOptions
}

// NewSummarizer wraps client with caching, rate limiting and retries.
func NewSummarizer(client Client, cfg Config, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = time.Second
	}
	return &Summarizer{
		client:  client,
		cache:   newResponseCache(cfg.CacheTTL),
		limiter: common.NewRateLimiter(cfg.RateLimit),
		logger:  logger,
		retry: service.RetryOptions{
			MaxAttempts:  cfg.MaxRetries,
			InitialDelay: retryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Summarize returns the model's answer, or FallbackSummary when generation fails.
func (s *Summarizer) Summarize(ctx context.Context, in SummaryInput) string {
	text, err := s.Generate(ctx, in)
	if err != nil {
		common.LogError(err, "summary generation failed", common.Fields{"query": in.Query})
		return FallbackSummary
	}
	return text
}

// Generate builds the prompt and asks the model, returning any error.
func (s *Summarizer) Generate(ctx context.Context, in SummaryInput) (string, error) {
	if s.client == nil {
		return "", common.ErrLLMUnavailable
	}

	prompt, err := BuildSummaryPrompt(in)
	if err != nil {
		return "", err
	}

	key := cacheKey(summarySystemPrompt, prompt)
	if cached, ok := s.cache.get(key); ok {
		s.logger.Debug("summary cache hit", "query", in.Query)
		return cached, nil
	}

	var text string
	err = common.WithRetry(ctx, func() error {
		if waitErr := s.limiter.Wait(ctx); waitErr != nil {
			return common.Permanent(waitErr)
		}
		var completeErr error
		text, completeErr = s.client.Complete(ctx, summarySystemPrompt, prompt)
		return completeErr
	}, s.retry)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	s.cache.set(key, text)
	return text, nil
}

// Close stops the cache janitor.
func (s *Summarizer) Close() {
	s.cache.Close()
}

// BuildSummaryPrompt renders the user prompt with the recommendation context as JSON.
func BuildSummaryPrompt(in SummaryInput) (string, error) {
	doc := summaryContext{Cards: make([]summaryCard, 0, len(in.Recommendations))}

	if !in.Profile.IsZero() {
		doc.Profile = summaryProfile{
			AgeBand:     in.Profile.AgeBand,
			Gender:      in.Profile.Gender,
			IncomeLevel: in.Profile.IncomeLevel,
			Occupation:  in.Profile.Occupation,
			Spending:    in.Profile.SpendingSummary,
		}
	}
	if in.Insight != nil && len(in.Insight.Top) > 0 {
		doc.Profile.TopCategories = make(map[string]float64, len(in.Insight.Top))
		for _, top := range in.Insight.Top {
			doc.Profile.TopCategories[top.Category] = top.Percentage
		}
		doc.Profile.TotalSpend = in.Insight.TotalSpend
	}

	for i, rec := range in.Recommendations {
		doc.Cards = append(doc.Cards, summaryCard{
			Number:           i + 1,
			Name:             rec.Details.Name,
			Issuer:           rec.Details.Issuer,
			Type:             rec.Details.Type,
			Score:            rec.Score,
			Reason:           rec.Reason,
			Benefits:         benefit.Format(benefit.Parse(rec.Details.RawBenefits)),
			DetailedBenefits: rec.Details.DetailedBenefits,
			ImageURL:         rec.Details.ImageURL,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode summary context: %w", err)
	}

	return fmt.Sprintf(summaryPromptTemplate, strings.TrimSpace(in.Query), string(data)), nil
}
