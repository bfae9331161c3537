// ABOUTME: Embedding storage operations for SQLite
// ABOUTME: One vector per event stored as a BLOB, replaced atomically on regeneration
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/harper/lifeline/internal/models"
)

// EmbeddingStore handles embedding persistence
type EmbeddingStore struct {
	db *DB
}

// NewEmbeddingStore creates a new EmbeddingStore
func NewEmbeddingStore(db *DB) *EmbeddingStore {
	return &EmbeddingStore{db: db}
}

// Upsert stores the embedding for an event, replacing any prior row in a
// single statement. The embedding_id of an existing row is kept.
func (s *EmbeddingStore) Upsert(ctx context.Context, emb *models.EventEmbedding) (*models.EventEmbedding, error) {
	if err := emb.Validate(); err != nil {
		return nil, err
	}

	id := emb.EmbeddingID
	if id == "" {
		id = "emb_" + uuid.New().String()
	}
	createdAt := emb.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var storedID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO event_embeddings (embedding_id, event_id, vector, provider, model, dimension, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			vector = excluded.vector,
			provider = excluded.provider,
			model = excluded.model,
			dimension = excluded.dimension,
			created_at = excluded.created_at
		RETURNING embedding_id
	`, id, emb.EventID, vectorToBlob(emb.Vector), emb.Provider, emb.Model, emb.Dimension, formatTime(createdAt)).Scan(&storedID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert embedding for %s: %w", emb.EventID, err)
	}

	saved := *emb
	saved.EmbeddingID = storedID
	saved.CreatedAt = createdAt.UTC()
	return &saved, nil
}

// Get retrieves the embedding for an event, or ErrNotFound
func (s *EmbeddingStore) Get(ctx context.Context, eventID string) (*models.EventEmbedding, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT embedding_id, event_id, vector, provider, model, dimension, created_at
		FROM event_embeddings
		WHERE event_id = ?
	`, eventID)

	emb, err := scanEmbedding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no embedding for event %s", models.ErrNotFound, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding: %w", err)
	}
	return emb, nil
}

// ListBySpace returns every embedding produced by the given provider and model
func (s *EmbeddingStore) ListBySpace(ctx context.Context, provider, model string) ([]models.EventEmbedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT embedding_id, event_id, vector, provider, model, dimension, created_at
		FROM event_embeddings
		WHERE provider = ? AND model = ?
		ORDER BY event_id ASC
	`, provider, model)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var embeddings []models.EventEmbedding
	for rows.Next() {
		emb, err := scanEmbedding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		embeddings = append(embeddings, *emb)
	}
	return embeddings, rows.Err()
}

// Delete removes the embedding for an event
func (s *EmbeddingStore) Delete(ctx context.Context, eventID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM event_embeddings WHERE event_id = ?", eventID)
	if err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	return nil
}

// DeleteAll removes every embedding (used when switching providers or models)
func (s *EmbeddingStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM event_embeddings")
	if err != nil {
		return 0, fmt.Errorf("failed to clear embeddings: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of stored embeddings
func (s *EmbeddingStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event_embeddings").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmbedding(row rowScanner) (*models.EventEmbedding, error) {
	var (
		emb       models.EventEmbedding
		blob      []byte
		createdAt string
	)
	if err := row.Scan(&emb.EmbeddingID, &emb.EventID, &blob, &emb.Provider, &emb.Model, &emb.Dimension, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	emb.CreatedAt = t
	emb.Vector = blobToVector(blob)
	return &emb, nil
}

// vectorToBlob converts a float64 slice to binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}
