package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/cardwise/internal/common"
	"github.com/Veraticus/cardwise/internal/model"
)

const cardColumns = `card_id, name, issuer, benefits, type, detailed_benefits, image_url`

// SaveCards inserts or updates catalog cards.
func (s *SQLiteStorage) SaveCards(ctx context.Context, cards []model.Candidate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCards(cards); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO cards (`+cardColumns+`, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(card_id) DO UPDATE SET
				name = excluded.name,
				issuer = excluded.issuer,
				benefits = excluded.benefits,
				type = excluded.type,
				detailed_benefits = excluded.detailed_benefits,
				image_url = excluded.image_url,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, card := range cards {
			if _, err := stmt.ExecContext(ctx,
				card.CardID, card.Name, card.Issuer, card.RawBenefits,
				card.Type, card.DetailedBenefits, card.ImageURL,
			); err != nil {
				return fmt.Errorf("failed to save card %s: %w", card.CardID, err)
			}
		}
		return nil
	})
}

// GetCard retrieves a single card by ID.
func (s *SQLiteStorage) GetCard(ctx context.Context, cardID string) (*model.Candidate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(cardID, "cardID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE card_id = ?`, cardID)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", common.ErrCardNotFound, cardID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

// GetCards retrieves the cards with the given IDs, keyed by ID.
// Unknown IDs are simply absent from the result.
func (s *SQLiteStorage) GetCards(ctx context.Context, cardIDs []string) (map[string]model.Candidate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	cards := make(map[string]model.Candidate, len(cardIDs))
	if len(cardIDs) == 0 {
		return cards, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cardIDs)), ",")
	args := make([]any, len(cardIDs))
	for i, id := range cardIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE card_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards[card.CardID] = card
	}

	return cards, rows.Err()
}

// GetAllCards returns the whole catalog ordered by card ID.
func (s *SQLiteStorage) GetAllCards(ctx context.Context) ([]model.Candidate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY card_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []model.Candidate
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (model.Candidate, error) {
	var card model.Candidate
	err := row.Scan(
		&card.CardID,
		&card.Name,
		&card.Issuer,
		&card.RawBenefits,
		&card.Type,
		&card.DetailedBenefits,
		&card.ImageURL,
	)
	return card, err
}
