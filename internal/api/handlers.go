package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/recommend"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRecommend handles POST /api/v1/recommend.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommend.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON recommendation request", nil)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if err := s.validateRequest(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := s.recommender.Recommend(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if len(result.Recommendations) == 0 {
		result.Recommendations = []recommend.Recommendation{}
	}

	respondJSON(w, http.StatusOK, result)
}

// validateRequest checks the struct tags, then the configured limit ceiling.
func (s *Server) validateRequest(req recommend.Request) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}
	return s.validate.Var(req.Limit, fmt.Sprintf("lte=%d", s.cfg.MaxLimit))
}

// handleGetCard handles GET /api/v1/cards/{id}.
func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.store.GetCard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

// handleSavedRecommendations handles GET /api/v1/users/{id}/recommendations.
func (s *Server) handleSavedRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.GetRecommendations(r.Context(), chi.URLParam(r, "id"))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		respondServiceError(w, err)
		return
	}

	type savedItem struct {
		CreatedAt time.Time `json:"created_at"`
		CardID    string    `json:"card_id"`
		Reason    string    `json:"reason"`
		Score     float64   `json:"score"`
	}
	items := make([]savedItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, savedItem{CreatedAt: rec.CreatedAt, CardID: rec.CardID, Reason: rec.Reason, Score: rec.Score})
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}
