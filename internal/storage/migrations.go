package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Card catalog, users and model rankings",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS cards (
					card_id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					issuer TEXT NOT NULL DEFAULT '',
					benefits TEXT NOT NULL DEFAULT '',
					type TEXT NOT NULL DEFAULT '',
					detailed_benefits TEXT NOT NULL DEFAULT '',
					image_url TEXT NOT NULL DEFAULT '',
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS users (
					user_id TEXT PRIMARY KEY,
					age_band TEXT NOT NULL DEFAULT '',
					gender TEXT NOT NULL DEFAULT '',
					income_level TEXT NOT NULL DEFAULT '',
					occupation TEXT NOT NULL DEFAULT '',
					spending_summary TEXT NOT NULL DEFAULT '',
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS user_spending (
					user_id TEXT NOT NULL,
					category TEXT NOT NULL,
					amount REAL NOT NULL DEFAULT 0,
					PRIMARY KEY (user_id, category)
				)`,

				`CREATE TABLE IF NOT EXISTS model_recommendations (
					user_id TEXT NOT NULL,
					card_id TEXT NOT NULL,
					score REAL NOT NULL,
					ranking INTEGER NOT NULL,
					PRIMARY KEY (user_id, card_id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_model_recommendations_rank ON model_recommendations(user_id, ranking)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Card embeddings and imported statement transactions",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS card_embeddings (
					card_id TEXT NOT NULL,
					model TEXT NOT NULL,
					dims INTEGER NOT NULL,
					vector BLOB NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (card_id, model)
				)`,

				`CREATE TABLE IF NOT EXISTS spend_transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					user_id TEXT NOT NULL,
					date DATETIME NOT NULL,
					name TEXT NOT NULL,
					amount REAL NOT NULL,
					category TEXT NOT NULL DEFAULT '',
					account_id TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_spend_transactions_user ON spend_transactions(user_id, date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Saved recommendation history",
		Up: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS user_recommendations (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id TEXT NOT NULL,
					card_id TEXT NOT NULL,
					score REAL NOT NULL,
					reason TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL
				)
			`); err != nil {
				return fmt.Errorf("failed to create user_recommendations: %w", err)
			}
			if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_user_recommendations_user ON user_recommendations(user_id)`); err != nil {
				return fmt.Errorf("failed to create user_recommendations index: %w", err)
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
