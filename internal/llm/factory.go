package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/cardwise/internal/common"
)

// NewClient creates a raw LLM client based on the provided configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		client, err := newOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "anthropic":
		client, err := newAnthropicClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
}
