package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/cardwise/internal/common"
)

// Config is the resolved application configuration.
type Config struct {
	Database  DatabaseConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Recommend RecommendConfig
	Server    ServerConfig
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// EmbeddingConfig selects the embedding backend used for semantic search.
type EmbeddingConfig struct {
	Provider  string
	Endpoint  string
	Model     string
	APIKey    string
	RateLimit int
	Timeout   time.Duration
}

// LLMConfig configures the optional recommendation summary.
type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	RateLimit   int
}

// RecommendConfig tunes the recommendation pipeline.
type RecommendConfig struct {
	Limit           int
	TopK            int
	ModelLimit      int
	ProviderTimeout time.Duration
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(DefaultDir(), "cardwise.db"))

	v.SetDefault("embedding.provider", "ollama")
	v.SetDefault("embedding.endpoint", "http://localhost:11434")
	v.SetDefault("embedding.model", "nomic-embed-text")
	v.SetDefault("embedding.rate_limit", 600)
	v.SetDefault("embedding.timeout", 30*time.Second)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 800)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("llm.cache_ttl", 24*time.Hour)
	v.SetDefault("llm.rate_limit", 60)

	v.SetDefault("recommend.limit", 5)
	v.SetDefault("recommend.top_k", 10)
	v.SetDefault("recommend.model_limit", 20)
	v.SetDefault("recommend.provider_timeout", 10*time.Second)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load reads configuration from v. Values from the config file or CARDWISE_
// environment variables win; API keys fall back to the provider's usual
// environment variable.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Embedding: EmbeddingConfig{
			Provider:  v.GetString("embedding.provider"),
			Endpoint:  v.GetString("embedding.endpoint"),
			Model:     v.GetString("embedding.model"),
			APIKey:    v.GetString("embedding.api_key"),
			RateLimit: v.GetInt("embedding.rate_limit"),
			Timeout:   v.GetDuration("embedding.timeout"),
		},
		LLM: LLMConfig{
			Provider:    v.GetString("llm.provider"),
			Model:       v.GetString("llm.model"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			MaxRetries:  v.GetInt("llm.max_retries"),
			RetryDelay:  v.GetDuration("llm.retry_delay"),
			CacheTTL:    v.GetDuration("llm.cache_ttl"),
			RateLimit:   v.GetInt("llm.rate_limit"),
		},
		Recommend: RecommendConfig{
			Limit:           v.GetInt("recommend.limit"),
			TopK:            v.GetInt("recommend.top_k"),
			ModelLimit:      v.GetInt("recommend.model_limit"),
			ProviderTimeout: v.GetDuration("recommend.provider_timeout"),
		},
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
	}

	if cfg.Embedding.Provider == "openai" && cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = firstNonEmpty(v.GetString("llm.openai_api_key"), os.Getenv("OPENAI_API_KEY"))
	case "anthropic":
		cfg.LLM.APIKey = firstNonEmpty(v.GetString("llm.anthropic_api_key"), os.Getenv("ANTHROPIC_API_KEY"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", common.ErrMissingConfig)
	}
	switch c.Embedding.Provider {
	case "ollama", "openai", "none":
	default:
		return fmt.Errorf("%w: unsupported embedding provider %q", common.ErrInvalidConfig, c.Embedding.Provider)
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("%w: unsupported llm provider %q", common.ErrInvalidConfig, c.LLM.Provider)
	}
	if c.Recommend.Limit <= 0 || c.Recommend.TopK <= 0 || c.Recommend.ModelLimit <= 0 {
		return fmt.Errorf("%w: recommend limits must be positive", common.ErrInvalidConfig)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
