package embed

import (
	"sort"
	"sync"

	"github.com/Veraticus/cardwise/internal/model"
)

// Entry is a card and its embedding.
type Entry struct {
	Vector []float32
	Card   model.Candidate
}

// Hit is a search result with its cosine similarity to the query.
type Hit struct {
	Card       model.Candidate
	Similarity float64
}

// Index is a brute-force in-memory cosine similarity index over cards.
type Index struct {
	entries []Entry
	mu      sync.RWMutex
}

// NewIndex constructs an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Replace swaps the stored entries atomically.
func (idx *Index) Replace(entries []Entry) {
	copied := make([]Entry, len(entries))
	for i, e := range entries {
		copied[i] = Entry{Card: e.Card, Vector: append([]float32(nil), e.Vector...)}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = copied
}

// Size returns the number of indexed cards.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Search returns the k cards most similar to vec, best first.
// Equal similarities are ordered by card ID.
func (idx *Index) Search(vec []float32, k int) []Hit {
	idx.mu.RLock()
	entries := idx.entries
	idx.mu.RUnlock()

	if len(entries) == 0 || len(vec) == 0 || k <= 0 {
		return nil
	}

	hits := make([]Hit, 0, len(entries))
	for _, e := range entries {
		hits = append(hits, Hit{Card: e.Card, Similarity: CosineSimilarity(vec, e.Vector)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Card.CardID < hits[j].Card.CardID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
