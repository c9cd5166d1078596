package storage

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cardwise/internal/model"
)

func TestModelScores(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveModelScores(ctx, []model.ModelScore{
		{UserID: "u1", CardID: "c3", Score: 0.4, Rank: 3},
		{UserID: "u1", CardID: "c1", Score: 0.9, Rank: 1},
		{UserID: "u1", CardID: "c2", Score: 0.7, Rank: 2},
		{UserID: "u2", CardID: "c1", Score: 0.1, Rank: 1},
	}))

	scores, err := store.GetModelScores(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "c1", scores[0].CardID)
	assert.Equal(t, "c2", scores[1].CardID)

	all, err := store.GetModelScores(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Re-saving a pair updates it.
	require.NoError(t, store.SaveModelScores(ctx, []model.ModelScore{
		{UserID: "u1", CardID: "c3", Score: 0.95, Rank: 0},
	}))
	scores, err = store.GetModelScores(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, "c3", scores[0].CardID)
	assert.InDelta(t, 0.95, scores[0].Score, 1e-9)

	none, err := store.GetModelScores(ctx, "nobody", 20)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveModelScores_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveModelScores(ctx, nil), ErrEmptySlice)
	assert.ErrorIs(t, store.SaveModelScores(ctx, []model.ModelScore{{CardID: "c1"}}), ErrInvalidScore)
	assert.ErrorIs(t, store.SaveModelScores(ctx, []model.ModelScore{
		{UserID: "u", CardID: "c", Score: math.NaN()},
	}), ErrInvalidScore)
}
