package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cardwise/internal/model"
)

func TestRecommendations_ReplacePerUser(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecommendations(ctx, "u1", []model.RankedCandidate{
		{CardID: "c1", Score: 0.5, Reason: "first"},
		{CardID: "c2", Score: 0.8, Reason: "second"},
	}))
	require.NoError(t, store.SaveRecommendations(ctx, "u2", []model.RankedCandidate{
		{CardID: "c9", Score: 0.1},
	}))

	got, err := store.GetRecommendations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].CardID)
	assert.Equal(t, "second", got[0].Reason)
	assert.False(t, got[0].CreatedAt.IsZero())

	require.NoError(t, store.SaveRecommendations(ctx, "u1", []model.RankedCandidate{
		{CardID: "c3", Score: 0.3},
	}))
	got, err = store.GetRecommendations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c3", got[0].CardID)

	other, err := store.GetRecommendations(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSaveRecommendations_EmptyClears(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecommendations(ctx, "u1", []model.RankedCandidate{{CardID: "c1", Score: 1}}))
	require.NoError(t, store.SaveRecommendations(ctx, "u1", nil))

	got, err := store.GetRecommendations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
