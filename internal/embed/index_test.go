package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cardwise/internal/model"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestIndex_Search(t *testing.T) {
	idx := NewIndex()
	assert.Empty(t, idx.Search([]float32{1, 0}, 3))

	idx.Replace([]Entry{
		{Card: model.Candidate{CardID: "east"}, Vector: []float32{1, 0}},
		{Card: model.Candidate{CardID: "north"}, Vector: []float32{0, 1}},
		{Card: model.Candidate{CardID: "northeast"}, Vector: []float32{1, 1}},
		{Card: model.Candidate{CardID: "also-east"}, Vector: []float32{2, 0}},
	})
	require.Equal(t, 4, idx.Size())

	hits := idx.Search([]float32{1, 0}, 3)
	require.Len(t, hits, 3)
	assert.Equal(t, "also-east", hits[0].Card.CardID)
	assert.Equal(t, "east", hits[1].Card.CardID)
	assert.Equal(t, "northeast", hits[2].Card.CardID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)

	assert.Empty(t, idx.Search([]float32{1, 0}, 0))
	assert.Empty(t, idx.Search(nil, 3))
}

func TestIndex_ReplaceCopiesVectors(t *testing.T) {
	vec := []float32{1, 0}
	idx := NewIndex()
	idx.Replace([]Entry{{Card: model.Candidate{CardID: "a"}, Vector: vec}})

	vec[0] = -1

	hits := idx.Search([]float32{1, 0}, 1)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}
