package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/cardwise/internal/model"
)

// SaveModelScores stores precomputed rankings, replacing existing user/card pairs.
func (s *SQLiteStorage) SaveModelScores(ctx context.Context, scores []model.ModelScore) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateModelScores(scores); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO model_recommendations (user_id, card_id, score, ranking)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(user_id, card_id) DO UPDATE SET
				score = excluded.score,
				ranking = excluded.ranking
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, score := range scores {
			if _, err := stmt.ExecContext(ctx, score.UserID, score.CardID, score.Score, score.Rank); err != nil {
				return fmt.Errorf("failed to save score for %s/%s: %w", score.UserID, score.CardID, err)
			}
		}
		return nil
	})
}

// GetModelScores returns up to limit rankings for the user, best rank first.
func (s *SQLiteStorage) GetModelScores(ctx context.Context, userID string, limit int) ([]model.ModelScore, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, card_id, score, ranking
		FROM model_recommendations
		WHERE user_id = ?
		ORDER BY ranking ASC, card_id ASC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query model scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scores []model.ModelScore
	for rows.Next() {
		var score model.ModelScore
		if err := rows.Scan(&score.UserID, &score.CardID, &score.Score, &score.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan model score: %w", err)
		}
		scores = append(scores, score)
	}

	return scores, rows.Err()
}
