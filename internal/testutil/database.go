// Package testutil provides test databases seeded with cards, users and
// precomputed scores.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/cardwise/internal/model"
	"github.com/Veraticus/cardwise/internal/storage"
)

// TestDB is a migrated in-memory database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database and seeds it with the
// given fixtures. The database is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.FixtureCatalog, testutil.FixtureDiner)
func SetupTestDB(t *testing.T, fixtures ...Fixture) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store, t: t}
	for _, f := range fixtures {
		db.Seed(f)
	}
	return db
}

// Seed writes a fixture into the database or fails the test.
func (db *TestDB) Seed(f Fixture) {
	db.t.Helper()
	ctx := context.Background()

	if len(f.Cards) > 0 {
		if err := db.Storage.SaveCards(ctx, f.Cards); err != nil {
			db.t.Fatalf("failed to seed cards for %s: %v", f.Name, err)
		}
	}
	for i := range f.Users {
		if err := db.Storage.SaveUser(ctx, &f.Users[i]); err != nil {
			db.t.Fatalf("failed to seed user %s for %s: %v", f.Users[i].UserID, f.Name, err)
		}
	}
	for userID, amounts := range f.Spending {
		if err := db.Storage.AddSpending(ctx, userID, amounts); err != nil {
			db.t.Fatalf("failed to seed spending for %s: %v", f.Name, err)
		}
	}
	if len(f.Scores) > 0 {
		if err := db.Storage.SaveModelScores(ctx, f.Scores); err != nil {
			db.t.Fatalf("failed to seed scores for %s: %v", f.Name, err)
		}
	}
}

// MustGetCard returns a stored card or fails the test.
func (db *TestDB) MustGetCard(cardID string) model.Candidate {
	db.t.Helper()
	card, err := db.Storage.GetCard(context.Background(), cardID)
	if err != nil {
		db.t.Fatalf("card %s not found: %v", cardID, err)
	}
	return *card
}
