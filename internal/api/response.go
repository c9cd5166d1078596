package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Veraticus/cardwise/internal/common"
)

// Response is the envelope for every JSON reply.
type Response struct {
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, &Response{Status: "success", Data: data, Timestamp: time.Now()})
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		slog.Error("api error", "code", code, "error", err)
	}
	writeEnvelope(w, status, &Response{
		Status:    "error",
		Timestamp: time.Now(),
		Error:     &APIError{Code: code, Message: message},
	})
}

// respondServiceError maps domain errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrEmptyQuery):
		respondError(w, http.StatusBadRequest, "EMPTY_QUERY", userMessage(err, "query is required"), nil)
	case errors.Is(err, common.ErrCardNotFound):
		respondError(w, http.StatusNotFound, "CARD_NOT_FOUND", userMessage(err, "card not found"), nil)
	case errors.Is(err, common.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "USER_NOT_FOUND", userMessage(err, "user not found"), nil)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", err)
	}
}

// respondValidationError reports the first failed request field. Errors from
// validate.Var carry no field name and come from the limit ceiling.
func respondValidationError(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be a JSON recommendation request", err)
		return
	}

	if fieldErrs[0].Field() == "Query" {
		respondError(w, http.StatusBadRequest, "EMPTY_QUERY", "query is required", nil)
		return
	}
	respondError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit is out of range", nil)
}

func userMessage(err error, fallback string) string {
	if msg, ok := common.UserMessage(err); ok {
		return msg
	}
	return fallback
}

func writeEnvelope(w http.ResponseWriter, status int, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}
