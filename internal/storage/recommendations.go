package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/cardwise/internal/model"
)

// SaveRecommendations replaces the user's saved recommendations with recs.
func (s *SQLiteStorage) SaveRecommendations(ctx context.Context, userID string, recs []model.RankedCandidate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_recommendations WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to clear recommendations: %w", err)
		}

		for _, rec := range recs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO user_recommendations (user_id, card_id, score, reason, created_at)
				VALUES (?, ?, ?, ?, ?)
			`, userID, rec.CardID, rec.Score, rec.Reason, now); err != nil {
				return fmt.Errorf("failed to save recommendation %s: %w", rec.CardID, err)
			}
		}
		return nil
	})
}

// GetRecommendations returns the user's saved recommendations in score order.
func (s *SQLiteStorage) GetRecommendations(ctx context.Context, userID string) ([]model.SavedRecommendation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, card_id, score, reason, created_at
		FROM user_recommendations
		WHERE user_id = ?
		ORDER BY score DESC, card_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []model.SavedRecommendation
	for rows.Next() {
		var rec model.SavedRecommendation
		if err := rows.Scan(&rec.UserID, &rec.CardID, &rec.Score, &rec.Reason, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}
