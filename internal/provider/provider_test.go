package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Veraticus/cardwise/internal/insight"
	"github.com/Veraticus/cardwise/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockScoreStore struct {
	mock.Mock
}

func (m *mockScoreStore) GetModelScores(ctx context.Context, userID string, limit int) ([]model.ModelScore, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ModelScore), args.Error(1)
}

func (m *mockScoreStore) GetCards(ctx context.Context, cardIDs []string) (map[string]model.Candidate, error) {
	args := m.Called(ctx, cardIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.Candidate), args.Error(1)
}

type stubRetriever struct {
	err       error
	matches   []Match
	available bool
	gotQuery  string
	gotK      int
}

func (s *stubRetriever) Available() bool { return s.available }

func (s *stubRetriever) Search(_ context.Context, query string, k int) ([]Match, error) {
	s.gotQuery = query
	s.gotK = k
	return s.matches, s.err
}

func TestModelRankedProvider_Fetch(t *testing.T) {
	ctx := context.Background()
	store := new(mockScoreStore)
	store.On("GetModelScores", ctx, "u1", DefaultModelLimit).Return([]model.ModelScore{
		{UserID: "u1", CardID: "c1", Score: 0.9, Rank: 1},
		{UserID: "u1", CardID: "gone", Score: 0.8, Rank: 2},
		{UserID: "u1", CardID: "c2", Score: 0.7, Rank: 3},
	}, nil)
	store.On("GetCards", ctx, []string{"c1", "gone", "c2"}).Return(map[string]model.Candidate{
		"c1": {CardID: "c1", Name: "One"},
		"c2": {CardID: "c2", Name: "Two"},
	}, nil)

	got := NewModelRankedProvider(store, 0, nil).Fetch(ctx, "u1")

	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].CardID)
	assert.Equal(t, "One", got[0].Card.Name)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "c2", got[1].CardID)
	assert.Equal(t, 3, got[1].Rank)
	assert.Empty(t, got[1].Reason)
	store.AssertExpectations(t)
}

func TestModelRankedProvider_Degrades(t *testing.T) {
	ctx := context.Background()

	t.Run("scores error", func(t *testing.T) {
		store := new(mockScoreStore)
		store.On("GetModelScores", ctx, "u1", 5).Return(nil, errors.New("db down"))

		assert.Empty(t, NewModelRankedProvider(store, 5, nil).Fetch(ctx, "u1"))
		store.AssertNotCalled(t, "GetCards", mock.Anything, mock.Anything)
	})

	t.Run("cards error", func(t *testing.T) {
		store := new(mockScoreStore)
		store.On("GetModelScores", ctx, "u1", 5).Return([]model.ModelScore{{CardID: "c1", Score: 1, Rank: 1}}, nil)
		store.On("GetCards", ctx, []string{"c1"}).Return(nil, errors.New("db down"))

		assert.Empty(t, NewModelRankedProvider(store, 5, nil).Fetch(ctx, "u1"))
	})

	t.Run("no rankings", func(t *testing.T) {
		store := new(mockScoreStore)
		store.On("GetModelScores", ctx, "u2", 5).Return([]model.ModelScore{}, nil)

		assert.Empty(t, NewModelRankedProvider(store, 5, nil).Fetch(ctx, "u2"))
	})

	t.Run("nil store", func(t *testing.T) {
		assert.Empty(t, NewModelRankedProvider(nil, 5, nil).Fetch(ctx, "u1"))
	})
}

func TestSemanticSearchProvider_Fetch(t *testing.T) {
	ctx := context.Background()
	retriever := &stubRetriever{
		available: true,
		matches: []Match{
			{Card: model.Candidate{CardID: "a"}, Similarity: 0.92},
			{Card: model.Candidate{CardID: "b"}, Similarity: 0.81},
		},
	}

	got := NewSemanticSearchProvider(retriever, 0, nil).Fetch(ctx, "travel perks")

	assert.Equal(t, "travel perks", retriever.gotQuery)
	assert.Equal(t, DefaultTopK, retriever.gotK)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.92, got[0].Score, 1e-9)
	assert.Equal(t, 1, got[0].Rank)
	assert.InDelta(t, 0.81, got[1].Score, 1e-9)
	assert.Equal(t, 2, got[1].Rank)
}

func TestSemanticSearchProvider_PositionScoresWhenIncomparable(t *testing.T) {
	var matches []Match
	for i := 0; i < 3; i++ {
		matches = append(matches, Match{Card: model.Candidate{CardID: fmt.Sprintf("c%d", i)}, Similarity: 0.5})
	}
	matches[1].Similarity = 7.5

	got := NewSemanticSearchProvider(&stubRetriever{available: true, matches: matches}, 10, nil).Fetch(context.Background(), "q")

	require.Len(t, got, 3)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.InDelta(t, 0.95, got[1].Score, 1e-9)
	assert.InDelta(t, 0.90, got[2].Score, 1e-9)
}

func TestSemanticSearchProvider_CapsAtTopK(t *testing.T) {
	var matches []Match
	for i := 0; i < 8; i++ {
		matches = append(matches, Match{Card: model.Candidate{CardID: fmt.Sprintf("c%d", i)}, Similarity: 0.5})
	}

	got := NewSemanticSearchProvider(&stubRetriever{available: true, matches: matches}, 3, nil).Fetch(context.Background(), "q")

	assert.Len(t, got, 3)
}

func TestSemanticSearchProvider_Degrades(t *testing.T) {
	tests := []struct {
		name      string
		retriever Retriever
	}{
		{name: "nil retriever", retriever: nil},
		{name: "unavailable", retriever: &stubRetriever{available: false, matches: []Match{{Similarity: 1}}}},
		{name: "search error", retriever: &stubRetriever{available: true, err: errors.New("timeout")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSemanticSearchProvider(tt.retriever, 10, nil)
			assert.Empty(t, p.Fetch(context.Background(), "q"))
		})
	}
}

func TestPositionScore(t *testing.T) {
	assert.InDelta(t, 1.0, PositionScore(0), 1e-9)
	assert.InDelta(t, 0.5, PositionScore(10), 1e-9)
	assert.InDelta(t, 0.0, PositionScore(20), 1e-9)
	assert.InDelta(t, 0.0, PositionScore(25), 1e-9)
}

func TestContextualizeQuery(t *testing.T) {
	profile := &model.UserProfile{
		UserID:          "u1",
		AgeBand:         "30s",
		Gender:          "female",
		Occupation:      "engineer",
		SpendingSummary: "dining(60.0%), shopping(40.0%) are the main spending areas",
	}
	in := insight.Extract(map[string]float64{"dining": 600, "shopping": 400}, 1000)

	tests := []struct {
		name    string
		profile *model.UserProfile
		insight *model.SpendingInsight
		want    string
	}{
		{
			name: "query only",
			want: "cashback",
		},
		{
			name:    "profile and insight",
			profile: profile,
			insight: &in,
			want: "user is 30s female, engineer, dining(60.0%), shopping(40.0%) are the main spending areas. " +
				"cashback top spending categories: dining(60.0%), shopping(40.0%)",
		},
		{
			name:    "insight without top categories",
			insight: &model.SpendingInsight{},
			want:    "cashback",
		},
		{
			name:    "empty profile adds no prefix",
			profile: &model.UserProfile{},
			want:    "cashback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContextualizeQuery("cashback", tt.profile, tt.insight))
		})
	}
}
