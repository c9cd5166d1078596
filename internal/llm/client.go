package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Complete sends a system instruction and a user prompt and returns the reply text.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Config holds the configuration for LLM clients.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}
