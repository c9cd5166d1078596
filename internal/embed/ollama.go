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
)

// OllamaEmbedder generates embeddings via a local Ollama server.
type OllamaEmbedder struct {
	client   *http.Client
	limiter  *rate.Limiter
	endpoint string // e.g., "http://localhost:11434"
	model    string // e.g., "nomic-embed-text"
}

// ollamaTagsResponse represents the response from GET /api/tags.
type ollamaTagsResponse struct {
	Models []ollamaModel `json:"models"`
}

type ollamaModel struct {
	Name string `json:"name"`
}

// ollamaEmbedRequest represents the request body for POST /api/embed.
type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ollamaEmbedResponse represents the response from POST /api/embed.
type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllamaEmbedder creates an embedder for the given endpoint and model,
// limited to requestsPerMinute calls (unlimited when zero).
func NewOllamaEmbedder(endpoint, model string, requestsPerMinute int, timeout time.Duration) *OllamaEmbedder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaEmbedder{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		model:    model,
		client:   &http.Client{Timeout: timeout},
		limiter:  common.NewRateLimiter(requestsPerMinute),
	}
}

// Model returns the configured model name.
func (e *OllamaEmbedder) Model() string {
	return e.model
}

// Available returns true if the Ollama server is reachable and has the model.
func (e *OllamaEmbedder) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tagsResp ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tagsResp); err != nil {
		return false
	}

	// "nomic-embed-text" also matches "nomic-embed-text:latest"
	for _, m := range tagsResp.Models {
		if m.Name == e.model || m.Name == e.model+":latest" {
			return true
		}
	}

	return false
}

// Embed generates a vector embedding for the given text using Ollama.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embed: rate limiter wait failed: %w", err)
	}

	jsonBody, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("embed: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("embed: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("embed: request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("embed: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("embed: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var embedResp ollamaEmbedResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("embed: failed to parse response: %w", err)
	}

	if len(embedResp.Embeddings) == 0 || len(embedResp.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embed: no embeddings returned")
	}

	return embedResp.Embeddings[0], nil
}
