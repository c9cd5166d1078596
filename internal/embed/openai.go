package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/service"
)

const openAIEmbeddingsURL = "https://api.openai.com/v1"

// OpenAIEmbedder generates embeddings via the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client   *http.Client
	limiter  *rate.Limiter
	apiKey   string
	model    string
	endpoint string
	retry    service.RetryOptions
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewOpenAIEmbedder creates an embedder for the OpenAI API. An empty endpoint
// uses the public API.
func NewOpenAIEmbedder(apiKey, model, endpoint string, requestsPerMinute int, timeout time.Duration) *OpenAIEmbedder {
	if model == "" {
		model = "text-embedding-3-small"
	}
	if endpoint == "" {
		endpoint = openAIEmbeddingsURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIEmbedder{
		apiKey:   apiKey,
		model:    model,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		limiter:  common.NewRateLimiter(requestsPerMinute),
		retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2,
		},
	}
}

// Model returns the configured model name.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Available returns true if an API key is configured.
func (e *OpenAIEmbedder) Available() bool {
	return e.apiKey != ""
}

// Embed generates a vector embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request; result[i] corresponds to texts[i].
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	jsonBody, err := json.Marshal(openAIEmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embed: failed to marshal request: %w", err)
	}

	var resp openAIEmbedResponse
	err = common.WithRetry(ctx, func() error {
		return e.do(ctx, jsonBody, &resp)
	}, e.retry)
	if err != nil {
		return nil, err
	}

	results := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("embed: openai returned out-of-range index %d", item.Index)
		}
		results[item.Index] = item.Embedding
	}
	for i, r := range results {
		if len(r) == 0 {
			return nil, fmt.Errorf("embed: missing embedding for index %d", i)
		}
	}

	return results, nil
}

func (e *OpenAIEmbedder) do(ctx context.Context, body []byte, out *openAIEmbedResponse) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return common.Permanent(fmt.Errorf("embed: rate limiter wait failed: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return common.Permanent(fmt.Errorf("embed: failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return common.Permanent(fmt.Errorf("embed: request cancelled: %w", ctx.Err()))
		}
		return fmt.Errorf("embed: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("embed: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("embed: openai returned status %d: %s", resp.StatusCode, string(respBody))
	default:
		return common.Permanent(fmt.Errorf("embed: openai returned status %d: %s", resp.StatusCode, string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return common.Permanent(fmt.Errorf("embed: failed to parse response: %w", err))
	}
	return nil
}
