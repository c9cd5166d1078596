package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/llm"
	"github.com/Veraticus/cardwise/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*model.UserProfile)
	return profile, args.Error(1)
}

func (m *mockStore) GetSpending(ctx context.Context, userID string) (map[string]float64, error) {
	args := m.Called(ctx, userID)
	amounts, _ := args.Get(0).(map[string]float64)
	return amounts, args.Error(1)
}

func (m *mockStore) SaveRecommendations(ctx context.Context, userID string, recs []model.RankedCandidate) error {
	args := m.Called(ctx, userID, recs)
	return args.Error(0)
}

// stubProvider returns fixed candidates and records the key it was asked for.
type stubProvider struct {
	delay      time.Duration
	candidates []model.ScoredCandidate
	keys       []string
	mu         sync.Mutex
}

func (p *stubProvider) Fetch(ctx context.Context, key string) []model.ScoredCandidate {
	p.mu.Lock()
	p.keys = append(p.keys, key)
	p.mu.Unlock()

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil
		}
	}
	out := make([]model.ScoredCandidate, len(p.candidates))
	copy(out, p.candidates)
	return out
}

type stubSummarizer struct {
	got llm.SummaryInput
}

func (s *stubSummarizer) Summarize(_ context.Context, in llm.SummaryInput) string {
	s.got = in
	return "Try Dining Plus."
}

var (
	diningPlus = model.Candidate{CardID: "c1", Name: "Dining Plus", RawBenefits: "dining: 5% back; shopping: 2%"}
	fuelSaver  = model.Candidate{CardID: "c2", Name: "Fuel Saver", RawBenefits: "fuel: 3%"}
	mallCard   = model.Candidate{CardID: "c3", Name: "Mall Card", RawBenefits: "shopping: 10%"}
)

func testProfile() *model.UserProfile {
	return &model.UserProfile{
		UserID:          "u1",
		AgeBand:         "30s",
		Gender:          "female",
		Occupation:      "engineer",
		SpendingSummary: "dining(60.0%) are the main spending areas",
	}
}

func testProviders() (*stubProvider, *stubProvider) {
	models := &stubProvider{candidates: []model.ScoredCandidate{
		{CardID: "c1", Card: diningPlus, Score: 0.9, Rank: 1},
		{CardID: "c2", Card: fuelSaver, Score: 0.5, Rank: 2},
	}}
	semantic := &stubProvider{candidates: []model.ScoredCandidate{
		{CardID: "c1", Card: diningPlus, Score: 0.8, Rank: 1},
		{CardID: "c3", Card: mallCard, Score: 0.6, Rank: 2},
	}}
	return models, semantic
}

func TestRecommend(t *testing.T) {
	store := &mockStore{}
	store.On("GetUserProfile", mock.Anything, "u1").Return(testProfile(), nil)
	store.On("GetSpending", mock.Anything, "u1").Return(map[string]float64{"dining": 600, "shopping": 400}, nil)

	models, semantic := testProviders()
	svc := NewService(store, models, semantic, Options{})

	result, err := svc.Recommend(context.Background(), Request{UserID: "u1", Query: " cafe rewards "})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "cafe rewards", result.Query)
	assert.Equal(t,
		"user is 30s female, engineer, dining(60.0%) are the main spending areas. cafe rewards top spending categories: dining(60.0%), shopping(40.0%)",
		result.ContextualQuery)
	assert.Equal(t, []string{result.ContextualQuery}, semantic.keys)
	assert.Equal(t, []string{"u1"}, models.keys)

	require.Len(t, result.Recommendations, 3)

	first := result.Recommendations[0]
	assert.Equal(t, "c1", first.CardID)
	assert.Equal(t, model.OriginBoth, first.Origin)
	assert.Equal(t, 1, first.Rank)
	assert.InDelta(t, 0.86, first.Score, 1e-9)
	assert.Equal(t, "Dining Plus provides benefits relevant to 'cafe rewards'. In particular, the dining benefit matches your spending pattern. You spend 60.0% of your total on dining, so this benefit is especially useful.", first.Reason)
	assert.Equal(t, []model.ParsedBenefit{
		{Category: "dining", Description: "5% back"},
		{Category: "shopping", Description: "2%"},
	}, first.Benefits)

	second := result.Recommendations[1]
	assert.Equal(t, "c2", second.CardID)
	assert.Equal(t, model.OriginModelOnly, second.Origin)
	assert.Empty(t, second.Reason)

	third := result.Recommendations[2]
	assert.Equal(t, "c3", third.CardID)
	assert.Equal(t, model.OriginSemanticOnly, third.Origin)
	assert.Equal(t, "Mall Card provides benefits relevant to 'cafe rewards'. In particular, the shopping benefit matches your spending pattern.", third.Reason)

	assert.False(t, result.Saved)
	assert.Empty(t, result.Summary)
	store.AssertNotCalled(t, "SaveRecommendations", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommend_Limit(t *testing.T) {
	store := &mockStore{}
	store.On("GetUserProfile", mock.Anything, "u1").Return(testProfile(), nil)
	store.On("GetSpending", mock.Anything, "u1").Return(map[string]float64{}, nil)

	models, semantic := testProviders()

	result, err := NewService(store, models, semantic, Options{Limit: 1}).
		Recommend(context.Background(), Request{UserID: "u1", Query: "q"})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)

	result, err = NewService(store, models, semantic, Options{Limit: 1}).
		Recommend(context.Background(), Request{UserID: "u1", Query: "q", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Recommendations, 2)
	assert.Nil(t, result.Insight)
}

func TestRecommend_UnknownUser(t *testing.T) {
	store := &mockStore{}
	store.On("GetUserProfile", mock.Anything, "ghost").Return(nil, common.ErrUserNotFound)
	store.On("GetSpending", mock.Anything, "ghost").Return(map[string]float64{}, nil)

	_, semantic := testProviders()
	models := &stubProvider{}

	result, err := NewService(store, models, semantic, Options{}).
		Recommend(context.Background(), Request{UserID: "ghost", Query: "cashback"})
	require.NoError(t, err)

	assert.Nil(t, result.Profile)
	assert.Equal(t, "cashback", result.ContextualQuery)
	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, "Dining Plus provides benefits relevant to 'cashback'.", result.Recommendations[0].Reason)
}

func TestRecommend_StoreFailuresDegrade(t *testing.T) {
	store := &mockStore{}
	store.On("GetUserProfile", mock.Anything, "u1").Return(nil, errors.New("database locked"))
	store.On("GetSpending", mock.Anything, "u1").Return(nil, errors.New("database locked"))

	models, semantic := testProviders()
	result, err := NewService(store, models, semantic, Options{}).
		Recommend(context.Background(), Request{UserID: "u1", Query: "q"})
	require.NoError(t, err)
	assert.Nil(t, result.Profile)
	assert.Nil(t, result.Insight)
	assert.Len(t, result.Recommendations, 3)
}

func TestRecommend_FillsMissingSpendingSummary(t *testing.T) {
	profile := testProfile()
	profile.SpendingSummary = ""

	store := &mockStore{}
	store.On("GetUserProfile", mock.Anything, "u1").Return(profile, nil)
	store.On("GetSpending", mock.Anything, "u1").Return(map[string]float64{"dining": 75, "travel": 25}, nil)

	result, err := NewService(store, &stubProvider{}, &stubProvider{}, Options{}).
		Recommend(context.Background(), Request{UserID: "u1", Query: "q"})
	require.NoError(t, err)

	assert.Equal(t, "dining(75.0%), travel(25.0%) are the main spending areas", result.Profile.SpendingSummary)
	assert.Empty(t, profile.SpendingSummary, "stored profile must not be modified")
}

func TestRecommend_EmptyQuery(t *testing.T) {
	svc := NewService(&mockStore{}, nil, nil, Options{})

	_, err := svc.Recommend(context.Background(), Request{UserID: "u1", Query: "   "})
	require.ErrorIs(t, err, common.ErrEmptyQuery)

	msg, ok := common.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "please enter a question", msg)
}

func TestRecommend_NoCandidates(t *testing.T) {
	store := &mockStore{}
	store.On("GetUserProfile", mock.Anything, "u1").Return(testProfile(), nil)
	store.On("GetSpending", mock.Anything, "u1").Return(nil, nil)

	result, err := NewService(store, nil, nil, Options{}).
		Recommend(context.Background(), Request{UserID: "u1", Query: "q", Save: true, Summary: true})
	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
	assert.False(t, result.Saved)
	store.AssertNotCalled(t, "SaveRecommendations", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommend_SaveAndSummary(t *testing.T) {
	store := &mockStore{}
	store.On("GetUserProfile", mock.Anything, "u1").Return(testProfile(), nil)
	store.On("GetSpending", mock.Anything, "u1").Return(map[string]float64{"dining": 1}, nil)
	store.On("SaveRecommendations", mock.Anything, "u1", mock.MatchedBy(func(recs []model.RankedCandidate) bool {
		return len(recs) == 3 && recs[0].CardID == "c1"
	})).Return(nil)

	summarizer := &stubSummarizer{}
	models, semantic := testProviders()
	svc := NewService(store, models, semantic, Options{Summarizer: summarizer})

	result, err := svc.Recommend(context.Background(), Request{UserID: "u1", Query: "q", Save: true, Summary: true})
	require.NoError(t, err)

	assert.True(t, result.Saved)
	assert.Equal(t, "Try Dining Plus.", result.Summary)
	assert.Equal(t, "q", summarizer.got.Query)
	assert.Len(t, summarizer.got.Recommendations, 3)
	store.AssertExpectations(t)
}

func TestRecommend_SaveFailureIsNotFatal(t *testing.T) {
	store := &mockStore{}
	store.On("GetUserProfile", mock.Anything, "u1").Return(testProfile(), nil)
	store.On("GetSpending", mock.Anything, "u1").Return(nil, nil)
	store.On("SaveRecommendations", mock.Anything, "u1", mock.Anything).Return(errors.New("read-only database"))

	models, semantic := testProviders()
	result, err := NewService(store, models, semantic, Options{}).
		Recommend(context.Background(), Request{UserID: "u1", Query: "q", Save: true})
	require.NoError(t, err)
	assert.False(t, result.Saved)
	assert.Len(t, result.Recommendations, 3)
}

func TestRecommend_ProviderTimeout(t *testing.T) {
	store := &mockStore{}
	store.On("GetUserProfile", mock.Anything, "u1").Return(testProfile(), nil)
	store.On("GetSpending", mock.Anything, "u1").Return(nil, nil)

	models, semantic := testProviders()
	semantic.delay = time.Second

	svc := NewService(store, models, semantic, Options{ProviderTimeout: 20 * time.Millisecond})
	result, err := svc.Recommend(context.Background(), Request{UserID: "u1", Query: "q"})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 2)
	for _, rec := range result.Recommendations {
		assert.Equal(t, model.OriginModelOnly, rec.Origin)
	}
}

func TestRecommend_CallerCancelled(t *testing.T) {
	store := &mockStore{}
	store.On("GetUserProfile", mock.Anything, "u1").Return(testProfile(), nil)
	store.On("GetSpending", mock.Anything, "u1").Return(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	models, semantic := testProviders()
	_, err := NewService(store, models, semantic, Options{}).Recommend(ctx, Request{UserID: "u1", Query: "q"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecommend_AnonymousSkipsModelProvider(t *testing.T) {
	models, semantic := testProviders()

	result, err := NewService(&mockStore{}, models, semantic, Options{}).
		Recommend(context.Background(), Request{Query: "q"})
	require.NoError(t, err)

	assert.Empty(t, models.keys)
	assert.Len(t, result.Recommendations, 2)
}
