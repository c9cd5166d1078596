package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/viper"

	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/config"
	"github.com/Veraticus/cardwise/internal/embed"
	"github.com/Veraticus/cardwise/internal/llm"
	"github.com/Veraticus/cardwise/internal/provider"
	"github.com/Veraticus/cardwise/internal/recommend"
	"github.com/Veraticus/cardwise/internal/storage"
)

// loadConfig resolves the configuration from viper.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newEmbedder returns the configured embedding client, or nil when semantic
// search is disabled.
func newEmbedder(cfg config.EmbeddingConfig) embed.Embedder {
	switch cfg.Provider {
	case "ollama":
		return embed.NewOllamaEmbedder(cfg.Endpoint, cfg.Model, cfg.RateLimit, cfg.Timeout)
	case "openai":
		return embed.NewOpenAIEmbedder(cfg.APIKey, cfg.Model, cfg.Endpoint, cfg.RateLimit, cfg.Timeout)
	default:
		return nil
	}
}

// newSummarizer builds the LLM summarizer. It returns nil when no API key is
// configured so the summary step is skipped instead of failing.
func newSummarizer(cfg config.LLMConfig) (*llm.Summarizer, error) {
	if cfg.APIKey == "" {
		slog.Warn("No LLM API key configured, summaries are disabled", "provider", cfg.Provider)
		return nil, nil
	}

	llmCfg := llm.Config{
		Provider:    cfg.Provider,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxRetries:  cfg.MaxRetries,
		RetryDelay:  cfg.RetryDelay,
		CacheTTL:    cfg.CacheTTL,
		RateLimit:   cfg.RateLimit,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	client, err := llm.NewClient(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm.NewSummarizer(client, llmCfg, slog.Default()), nil
}

// app bundles what the recommendation commands need.
type app struct {
	cfg        *config.Config
	store      *storage.SQLiteStorage
	service    *recommend.Service
	summarizer *llm.Summarizer
}

func (a *app) Close() {
	if a.summarizer != nil {
		a.summarizer.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

// buildApp wires storage, both candidate providers and the optional
// summarizer into a recommendation service.
func buildApp(ctx context.Context, withSummary bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, store: store}

	retriever := embed.NewRetriever(newEmbedder(cfg.Embedding), slog.Default())
	missing, err := retriever.Load(ctx, store)
	switch {
	case errors.Is(err, common.ErrEmbeddingUnavailable):
		slog.Info("Semantic search disabled", "provider", cfg.Embedding.Provider)
	case err != nil:
		slog.Warn("Failed to load card index, semantic search disabled", "error", err)
	case retriever.Size() == 0:
		slog.Warn("Card index is empty, run 'cardwise index' to enable semantic search")
	case missing > 0:
		slog.Warn("Some cards are not indexed, run 'cardwise index' to refresh", "missing", missing)
	}

	opts := recommend.Options{
		Logger:          slog.Default(),
		Limit:           cfg.Recommend.Limit,
		ProviderTimeout: cfg.Recommend.ProviderTimeout,
	}
	if withSummary {
		summarizer, err := newSummarizer(cfg.LLM)
		if err != nil {
			a.Close()
			return nil, err
		}
		if summarizer != nil {
			a.summarizer = summarizer
			opts.Summarizer = summarizer
		}
	}

	a.service = recommend.NewService(
		store,
		provider.NewModelRankedProvider(store, cfg.Recommend.ModelLimit, slog.Default()),
		provider.NewSemanticSearchProvider(retriever, cfg.Recommend.TopK, slog.Default()),
		opts,
	)
	return a, nil
}

// expandFiles resolves glob patterns into existing files, skipping duplicates.
func expandFiles(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				matches = []string{pattern}
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
