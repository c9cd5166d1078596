package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const openAIDefaultURL = "https://api.openai.com/v1"

// openAIClient implements the Client interface for OpenAI API.
type openAIClient struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
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
		baseURL = openAIDefaultURL
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  newHTTPClient(),
	}, nil
}

// Complete sends a chat completion request to OpenAI.
func (c *openAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	var response openAIResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.apiKey}, requestBody, &response)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openai: no completion choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
}
