package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
)

// SaveEmbeddings stores card vectors produced by the named embedding model.
func (s *SQLiteStorage) SaveEmbeddings(ctx context.Context, modelName string, vectors map[string][]float32) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(modelName, "modelName"); err != nil {
		return err
	}
	if len(vectors) == 0 {
		return nil
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO card_embeddings (card_id, model, dims, vector, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(card_id, model) DO UPDATE SET
				dims = excluded.dims,
				vector = excluded.vector,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for cardID, vec := range vectors {
			if len(vec) == 0 {
				return fmt.Errorf("%w: empty vector for card %s", ErrInvalidEmbedding, cardID)
			}
			if _, err := stmt.ExecContext(ctx, cardID, modelName, len(vec), encodeVector(vec)); err != nil {
				return fmt.Errorf("failed to save embedding for %s: %w", cardID, err)
			}
		}
		return nil
	})
}

// GetEmbeddings loads every card vector stored for the named model.
func (s *SQLiteStorage) GetEmbeddings(ctx context.Context, modelName string) (map[string][]float32, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(modelName, "modelName"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT card_id, dims, vector FROM card_embeddings WHERE model = ?
	`, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	vectors := make(map[string][]float32)
	for rows.Next() {
		var cardID string
		var dims int
		var blob []byte
		if err := rows.Scan(&cardID, &dims, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		vec, err := decodeVector(blob, dims)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", cardID, err)
		}
		vectors[cardID] = vec
	}

	return vectors, rows.Err()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte, dims int) ([]float32, error) {
	if len(blob) != dims*4 {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidEmbedding, dims*4, len(blob))
	}
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
