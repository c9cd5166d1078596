package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/model"
)

// SaveUser inserts or replaces a user profile.
func (s *SQLiteStorage) SaveUser(ctx context.Context, profile *model.UserProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProfile(profile); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, age_band, gender, income_level, occupation, spending_summary, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			age_band = excluded.age_band,
			gender = excluded.gender,
			income_level = excluded.income_level,
			occupation = excluded.occupation,
			spending_summary = excluded.spending_summary,
			updated_at = excluded.updated_at
	`, profile.UserID, profile.AgeBand, profile.Gender, profile.IncomeLevel,
		profile.Occupation, profile.SpendingSummary)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUserProfile retrieves a user profile. A missing user yields common.ErrUserNotFound.
func (s *SQLiteStorage) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var profile model.UserProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, age_band, gender, income_level, occupation, spending_summary
		FROM users
		WHERE user_id = ?
	`, userID).Scan(
		&profile.UserID,
		&profile.AgeBand,
		&profile.Gender,
		&profile.IncomeLevel,
		&profile.Occupation,
		&profile.SpendingSummary,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &profile, nil
}

// AddSpending adds amounts to the user's running per-category totals.
func (s *SQLiteStorage) AddSpending(ctx context.Context, userID string, amounts map[string]float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if len(amounts) == 0 {
		return nil
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for category, amount := range amounts {
			if category == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO user_spending (user_id, category, amount)
				VALUES (?, ?, ?)
				ON CONFLICT(user_id, category) DO UPDATE SET
					amount = user_spending.amount + excluded.amount
			`, userID, category, amount); err != nil {
				return fmt.Errorf("failed to add spending for %s: %w", category, err)
			}
		}
		return nil
	})
}

// GetSpending returns the user's spend per category. Users without spending
// get an empty map.
func (s *SQLiteStorage) GetSpending(ctx context.Context, userID string) (map[string]float64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, amount FROM user_spending WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query spending: %w", err)
	}
	defer func() { _ = rows.Close() }()

	amounts := make(map[string]float64)
	for rows.Next() {
		var category string
		var amount float64
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan spending: %w", err)
		}
		amounts[category] = amount
	}

	return amounts, rows.Err()
}
