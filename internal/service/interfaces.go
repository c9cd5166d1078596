// Package service defines the interfaces shared by the application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/cardwise/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Card catalog
	SaveCards(ctx context.Context, cards []model.Candidate) error
	GetCard(ctx context.Context, cardID string) (*model.Candidate, error)
	GetCards(ctx context.Context, cardIDs []string) (map[string]model.Candidate, error)
	GetAllCards(ctx context.Context) ([]model.Candidate, error)

	// User operations
	SaveUser(ctx context.Context, profile *model.UserProfile) error
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	AddSpending(ctx context.Context, userID string, amounts map[string]float64) error
	GetSpending(ctx context.Context, userID string) (map[string]float64, error)

	// Precomputed model ranking
	SaveModelScores(ctx context.Context, scores []model.ModelScore) error
	GetModelScores(ctx context.Context, userID string, limit int) ([]model.ModelScore, error)

	// Card embeddings, keyed by embedding model name
	SaveEmbeddings(ctx context.Context, modelName string, vectors map[string][]float32) error
	GetEmbeddings(ctx context.Context, modelName string) (map[string][]float32, error)

	// Imported statement lines
	SaveSpendTransactions(ctx context.Context, transactions []model.SpendTransaction) (int, error)

	// Recommendation history
	SaveRecommendations(ctx context.Context, userID string, recs []model.RankedCandidate) error
	GetRecommendations(ctx context.Context, userID string) ([]model.SavedRecommendation, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
