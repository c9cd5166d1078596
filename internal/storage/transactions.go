package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/cardwise/internal/model"
)

// SaveSpendTransactions stores imported statement lines and reports how many
// were new. Lines whose hash is already stored are skipped.
func (s *SQLiteStorage) SaveSpendTransactions(ctx context.Context, transactions []model.SpendTransaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateSpendTransactions(transactions); err != nil {
		return 0, err
	}

	inserted := 0
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO spend_transactions (
				id, hash, user_id, date, name, amount, category, account_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, txn := range transactions {
			hash := txn.Hash
			if hash == "" {
				hash = txn.GenerateHash()
			}
			res, err := stmt.ExecContext(ctx,
				txn.ID, hash, txn.UserID, txn.Date, txn.Name,
				txn.Amount, txn.Category, txn.AccountID,
			)
			if err != nil {
				return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
