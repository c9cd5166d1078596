package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const anthropicDefaultURL = "https://api.anthropic.com/v1"

// anthropicClient implements the Client interface for Anthropic's Messages API.
type anthropicClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// newAnthropicClient creates a new Anthropic API client.
func newAnthropicClient(cfg Config) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 800
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = anthropicDefaultURL
	}

	return &anthropicClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  newHTTPClient(),
	}, nil
}

// Complete sends a message request to Anthropic.
func (c *anthropicClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	requestBody := map[string]any{
		"model":  c.model,
		"system": system,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}

	var response anthropicResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/messages", headers, requestBody, &response); err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic: no text content returned")
	}

	return strings.TrimSpace(text.String()), nil
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}
