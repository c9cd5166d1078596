package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/model"
)

func TestSaveAndGetUser(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	profile := &model.UserProfile{
		UserID:          "u1",
		AgeBand:         "30s",
		Gender:          "female",
		IncomeLevel:     "high",
		Occupation:      "engineer",
		SpendingSummary: "dining(60.0%) are the main spending areas",
	}
	require.NoError(t, store.SaveUser(ctx, profile))

	got, err := store.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	profile.Occupation = "manager"
	require.NoError(t, store.SaveUser(ctx, profile))
	got, err = store.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "manager", got.Occupation)
}

func TestGetUserProfile_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetUserProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestSaveUser_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveUser(ctx, nil), ErrNilParameter)
	assert.ErrorIs(t, store.SaveUser(ctx, &model.UserProfile{}), ErrEmptyString)
}

func TestSpending(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	empty, err := store.GetSpending(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.AddSpending(ctx, "u1", map[string]float64{"dining": 100, "fuel": 20}))
	require.NoError(t, store.AddSpending(ctx, "u1", map[string]float64{"dining": 50, "": 999}))
	require.NoError(t, store.AddSpending(ctx, "u2", map[string]float64{"dining": 7}))

	got, err := store.GetSpending(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"dining": 150, "fuel": 20}, got)
}
