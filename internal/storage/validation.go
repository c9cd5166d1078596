package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/cardwise/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidCard        = errors.New("invalid card")
	ErrInvalidScore       = errors.New("invalid model score")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidEmbedding   = errors.New("invalid embedding")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateCards(cards []model.Candidate) error {
	if len(cards) == 0 {
		return fmt.Errorf("%w: cards", ErrEmptySlice)
	}
	for i, card := range cards {
		if strings.TrimSpace(card.CardID) == "" {
			return fmt.Errorf("card at index %d: %w: missing ID", i, ErrInvalidCard)
		}
		if strings.TrimSpace(card.Name) == "" {
			return fmt.Errorf("card %s: %w: missing name", card.CardID, ErrInvalidCard)
		}
	}
	return nil
}

func validateProfile(profile *model.UserProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	return validateString(profile.UserID, "userID")
}

func validateModelScores(scores []model.ModelScore) error {
	if len(scores) == 0 {
		return fmt.Errorf("%w: scores", ErrEmptySlice)
	}
	for i, score := range scores {
		if score.UserID == "" || score.CardID == "" {
			return fmt.Errorf("score at index %d: %w: missing user or card ID", i, ErrInvalidScore)
		}
		if math.IsNaN(score.Score) || math.IsInf(score.Score, 0) {
			return fmt.Errorf("score at index %d: %w: score is not finite", i, ErrInvalidScore)
		}
	}
	return nil
}

func validateSpendTransactions(transactions []model.SpendTransaction) error {
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}
	for i, txn := range transactions {
		switch {
		case txn.ID == "":
			return fmt.Errorf("transaction at index %d: %w: missing ID", i, ErrInvalidTransaction)
		case txn.UserID == "":
			return fmt.Errorf("transaction at index %d: %w: missing user ID", i, ErrInvalidTransaction)
		case txn.Date.IsZero():
			return fmt.Errorf("transaction at index %d: %w: missing date", i, ErrInvalidTransaction)
		case txn.Name == "":
			return fmt.Errorf("transaction at index %d: %w: missing name", i, ErrInvalidTransaction)
		}
	}
	return nil
}
