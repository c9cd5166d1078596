package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/metrics"
	"github.com/Veraticus/cardwise/internal/model"
	"github.com/Veraticus/cardwise/internal/recommend"
)

type fakeRecommender struct {
	err    error
	result *recommend.Result
	got    recommend.Request
}

func (f *fakeRecommender) Recommend(_ context.Context, req recommend.Request) (*recommend.Result, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStore struct {
	cards map[string]model.Candidate
	saved map[string][]model.SavedRecommendation
	err   error
}

func (f *fakeStore) GetCard(_ context.Context, id string) (*model.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	card, ok := f.cards[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrCardNotFound, id)
	}
	return &card, nil
}

func (f *fakeStore) GetRecommendations(_ context.Context, userID string) ([]model.SavedRecommendation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.saved[userID], nil
}

func newTestServer(rec Recommender, store Store) http.Handler {
	return NewServer(rec, store, Config{MaxLimit: 10}, nil).Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newTestServer(&fakeRecommender{}, &fakeStore{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
}

func TestRecommendHandler(t *testing.T) {
	recommender := &fakeRecommender{result: &recommend.Result{
		RunID: "run-1",
		Query: "cafe",
		Recommendations: []recommend.Recommendation{{
			RankedCandidate: model.RankedCandidate{
				CardID:  "c1",
				Score:   0.86,
				Reason:  "Dining Plus provides benefits relevant to 'cafe'.",
				Details: model.Candidate{CardID: "c1", Name: "Dining Plus"},
			},
			Origin:   model.OriginBoth,
			Benefits: []model.ParsedBenefit{{Category: "dining", Description: "5%"}},
			Rank:     1,
		}},
	}}
	h := newTestServer(recommender, &fakeStore{})

	rec, body := do(t, h, http.MethodPost, "/api/v1/recommend", `{"user_id":"u1","query":"cafe","limit":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, recommend.Request{UserID: "u1", Query: "cafe", Limit: 3}, recommender.got)

	data := body["data"].(map[string]any)
	assert.Equal(t, "run-1", data["run_id"])
	recs := data["recommendations"].([]any)
	require.Len(t, recs, 1)
	first := recs[0].(map[string]any)
	assert.Equal(t, "c1", first["card_id"])
	assert.Equal(t, "both", first["origin"])
	assert.InDelta(t, 0.86, first["score"], 1e-9)
}

func TestRecommendHandler_EmptyResultIsArray(t *testing.T) {
	h := newTestServer(&fakeRecommender{result: &recommend.Result{RunID: "r"}}, &fakeStore{})

	rec, body := do(t, h, http.MethodPost, "/api/v1/recommend", `{"query":"anything"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, []any{}, data["recommendations"])
}

func TestRecommendHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "malformed json", body: `{"query":`, code: "INVALID_BODY"},
		{name: "unknown field", body: `{"query":"q","bogus":1}`, code: "INVALID_BODY"},
		{name: "empty query", body: `{"query":"  "}`, code: "EMPTY_QUERY"},
		{name: "missing query", body: `{"user_id":"u1","limit":3}`, code: "EMPTY_QUERY"},
		{name: "missing query and bad limit", body: `{"limit":-4}`, code: "EMPTY_QUERY"},
		{name: "limit too large", body: `{"query":"q","limit":11}`, code: "INVALID_LIMIT"},
		{name: "negative limit", body: `{"query":"q","limit":-1}`, code: "INVALID_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recommender := &fakeRecommender{}
			rec, body := do(t, newTestServer(recommender, &fakeStore{}), http.MethodPost, "/api/v1/recommend", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, tt.code, body["error"].(map[string]any)["code"])
			assert.Empty(t, recommender.got.Query, "service must not be called")
		})
	}
}

func TestRecommendHandler_LimitAtCeilingAndTrimmedQuery(t *testing.T) {
	recommender := &fakeRecommender{result: &recommend.Result{RunID: "r"}}
	h := newTestServer(recommender, &fakeStore{})

	rec, _ := do(t, h, http.MethodPost, "/api/v1/recommend", `{"query":"  travel  ","limit":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, recommend.Request{Query: "travel", Limit: 10}, recommender.got)
}

func TestValidateRequest(t *testing.T) {
	s := NewServer(&fakeRecommender{}, &fakeStore{}, Config{MaxLimit: 5}, nil)

	tests := []struct {
		name    string
		req     recommend.Request
		wantErr bool
	}{
		{name: "valid", req: recommend.Request{Query: "dining", Limit: 5}},
		{name: "default limit", req: recommend.Request{Query: "dining"}},
		{name: "empty query", req: recommend.Request{Limit: 1}, wantErr: true},
		{name: "negative limit", req: recommend.Request{Query: "dining", Limit: -1}, wantErr: true},
		{name: "above ceiling", req: recommend.Request{Query: "dining", Limit: 6}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validateRequest(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRecommendHandler_ServiceError(t *testing.T) {
	h := newTestServer(&fakeRecommender{err: errors.New("boom")}, &fakeStore{})

	rec, body := do(t, h, http.MethodPost, "/api/v1/recommend", `{"query":"q"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", body["error"].(map[string]any)["message"])
}

func TestGetCard(t *testing.T) {
	store := &fakeStore{cards: map[string]model.Candidate{
		"c1": {CardID: "c1", Name: "Dining Plus", Issuer: "Acme", RawBenefits: "dining: 5%"},
	}}
	h := newTestServer(&fakeRecommender{}, store)

	rec, body := do(t, h, http.MethodGet, "/api/v1/cards/c1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Dining Plus", data["name"])
	assert.Equal(t, "dining: 5%", data["benefits"])

	rec, body = do(t, h, http.MethodGet, "/api/v1/cards/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CARD_NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestSavedRecommendations(t *testing.T) {
	store := &fakeStore{saved: map[string][]model.SavedRecommendation{
		"u1": {
			{UserID: "u1", CardID: "c1", Score: 0.9, Reason: "r", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		},
	}}
	h := newTestServer(&fakeRecommender{}, store)

	rec, body := do(t, h, http.MethodGet, "/api/v1/users/u1/recommendations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.InDelta(t, 1, data["count"], 0)
	items := data["items"].([]any)
	assert.Equal(t, "c1", items[0].(map[string]any)["card_id"])

	rec, body = do(t, h, http.MethodGet, "/api/v1/users/nobody/recommendations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["data"].(map[string]any)["items"])
}

func TestSavedRecommendations_StoreError(t *testing.T) {
	h := newTestServer(&fakeRecommender{}, &fakeStore{err: errors.New("disk I/O error")})

	rec, _ := do(t, h, http.MethodGet, "/api/v1/users/u1/recommendations", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Init()
	metrics.ObserveProvider("model", 1)

	rec, _ := do(t, newTestServer(&fakeRecommender{}, &fakeStore{}), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cardwise_provider_candidates_total")
}

func TestListenAndServe_Shutdown(t *testing.T) {
	srv := NewServer(&fakeRecommender{}, &fakeStore{}, Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
