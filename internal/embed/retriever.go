package embed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/model"
	"github.com/Veraticus/cardwise/internal/provider"
)

// VectorStore is the storage subset needed to persist and reload card vectors.
type VectorStore interface {
	GetAllCards(ctx context.Context) ([]model.Candidate, error)
	SaveEmbeddings(ctx context.Context, modelName string, vectors map[string][]float32) error
	GetEmbeddings(ctx context.Context, modelName string) (map[string][]float32, error)
}

var _ provider.Retriever = (*Retriever)(nil)

// Retriever answers semantic queries by embedding them and searching the index.
type Retriever struct {
	embedder Embedder
	index    *Index
	logger   *slog.Logger
}

// NewRetriever creates a retriever over an empty index.
func NewRetriever(embedder Embedder, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embedder: embedder, index: NewIndex(), logger: logger}
}

// Available reports whether there is something to search and a way to embed queries.
func (r *Retriever) Available() bool {
	return r.embedder != nil && r.index.Size() > 0
}

// Size returns the number of indexed cards.
func (r *Retriever) Size() int {
	return r.index.Size()
}

// Search embeds the query and returns the k nearest cards.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]provider.Match, error) {
	if r.embedder == nil {
		return nil, common.ErrEmbeddingUnavailable
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits := r.index.Search(vec, k)
	matches := make([]provider.Match, len(hits))
	for i, h := range hits {
		matches[i] = provider.Match{Card: h.Card, Similarity: h.Similarity}
	}
	return matches, nil
}

// Load fills the index from vectors previously stored for the embedder's model.
// Cards without a stored vector are left out and counted in the returned value.
func (r *Retriever) Load(ctx context.Context, store VectorStore) (missing int, err error) {
	if r.embedder == nil {
		return 0, common.ErrEmbeddingUnavailable
	}

	cards, err := store.GetAllCards(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load cards: %w", err)
	}
	vectors, err := store.GetEmbeddings(ctx, r.embedder.Model())
	if err != nil {
		return 0, fmt.Errorf("failed to load embeddings: %w", err)
	}

	entries := make([]Entry, 0, len(cards))
	for _, card := range cards {
		vec, ok := vectors[card.CardID]
		if !ok {
			missing++
			continue
		}
		entries = append(entries, Entry{Card: card, Vector: vec})
	}

	r.index.Replace(entries)
	r.logger.Debug("semantic index loaded", "model", r.embedder.Model(), "cards", len(entries), "missing", missing)
	return missing, nil
}

// Build embeds every catalog card, stores the vectors and replaces the index.
// onProgress, if set, is called once per embedded card.
func (r *Retriever) Build(ctx context.Context, store VectorStore, onProgress func()) (int, error) {
	if r.embedder == nil || !r.embedder.Available() {
		return 0, common.ErrEmbeddingUnavailable
	}

	cards, err := store.GetAllCards(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load cards: %w", err)
	}

	vectors := make(map[string][]float32, len(cards))
	entries := make([]Entry, 0, len(cards))
	for _, card := range cards {
		vec, err := r.embedder.Embed(ctx, CardDocument(card))
		if err != nil {
			return 0, fmt.Errorf("failed to embed card %s: %w", card.CardID, err)
		}
		vectors[card.CardID] = vec
		entries = append(entries, Entry{Card: card, Vector: vec})
		if onProgress != nil {
			onProgress()
		}
	}

	if err := store.SaveEmbeddings(ctx, r.embedder.Model(), vectors); err != nil {
		return 0, fmt.Errorf("failed to save embeddings: %w", err)
	}

	r.index.Replace(entries)
	return len(entries), nil
}
