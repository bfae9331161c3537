// ABOUTME: Cross-reference storage operations for SQLite
// ABOUTME: Canonicalizes pair order on write and read; upserts per (pair, type)
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/lifeline/internal/models"
)

// CrossReferenceStore handles cross-reference persistence
type CrossReferenceStore struct {
	db *DB
}

// NewCrossReferenceStore creates a new CrossReferenceStore
func NewCrossReferenceStore(db *DB) *CrossReferenceStore {
	return &CrossReferenceStore{db: db}
}

// Upsert records a typed relationship between two events in canonical order.
// An existing row for the same pair and type is replaced.
func (s *CrossReferenceStore) Upsert(ctx context.Context, eventA, eventB string, relType models.RelationshipType, confidence float64, reasoning string) (*models.CrossReference, error) {
	first, second, err := models.CanonicalPair(eventA, eventB)
	if err != nil {
		return nil, err
	}
	if !relType.IsValid() {
		return nil, fmt.Errorf("%w: unknown relationship type %q", models.ErrValidation, relType)
	}
	if confidence < 0 || confidence > 1 || confidence != confidence {
		return nil, fmt.Errorf("%w: confidence %f outside [0,1]", models.ErrValidation, confidence)
	}

	ref := &models.CrossReference{
		ReferenceID:      "xref_" + uuid.New().String(),
		EventID1:         first,
		EventID2:         second,
		RelationshipType: relType,
		ConfidenceScore:  confidence,
		Reasoning:        reasoning,
		CreatedAt:        time.Now().UTC(),
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO cross_references (reference_id, event_id_1, event_id_2, relationship_type, confidence_score, analysis_details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id_1, event_id_2, relationship_type) DO UPDATE SET
			confidence_score = excluded.confidence_score,
			analysis_details = excluded.analysis_details,
			created_at = excluded.created_at
		RETURNING reference_id
	`, ref.ReferenceID, ref.EventID1, ref.EventID2, string(ref.RelationshipType), ref.ConfidenceScore, ref.Reasoning, formatTime(ref.CreatedAt)).Scan(&ref.ReferenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cross reference: %w", err)
	}

	return ref, nil
}

// GetForEvent returns every reference touching eventID, exposing the other endpoint
func (s *CrossReferenceStore) GetForEvent(ctx context.Context, eventID string) ([]models.RelatedReference, error) {
	refs, err := s.query(ctx, `
		SELECT reference_id, event_id_1, event_id_2, relationship_type, confidence_score, analysis_details, created_at
		FROM cross_references
		WHERE event_id_1 = ? OR event_id_2 = ?
		ORDER BY confidence_score DESC, reference_id ASC
	`, eventID, eventID)
	if err != nil {
		return nil, err
	}

	related := make([]models.RelatedReference, 0, len(refs))
	for _, ref := range refs {
		related = append(related, models.RelatedReference{
			ReferenceID:      ref.ReferenceID,
			RelatedEventID:   ref.Related(eventID),
			RelationshipType: ref.RelationshipType,
			Confidence:       ref.ConfidenceScore,
			Reasoning:        ref.Reasoning,
			CreatedAt:        ref.CreatedAt,
		})
	}
	return related, nil
}

// ListAll returns every stored reference
func (s *CrossReferenceStore) ListAll(ctx context.Context) ([]models.CrossReference, error) {
	return s.query(ctx, `
		SELECT reference_id, event_id_1, event_id_2, relationship_type, confidence_score, analysis_details, created_at
		FROM cross_references
		ORDER BY event_id_1, event_id_2, relationship_type
	`)
}

// DeleteForEvent removes every reference touching eventID
func (s *CrossReferenceStore) DeleteForEvent(ctx context.Context, eventID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM cross_references WHERE event_id_1 = ? OR event_id_2 = ?", eventID, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cross references: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the number of stored references
func (s *CrossReferenceStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cross_references").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cross references: %w", err)
	}
	return n, nil
}

func (s *CrossReferenceStore) query(ctx context.Context, query string, args ...interface{}) ([]models.CrossReference, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cross references: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []models.CrossReference
	for rows.Next() {
		var (
			ref       models.CrossReference
			relType   string
			createdAt string
		)
		if err := rows.Scan(&ref.ReferenceID, &ref.EventID1, &ref.EventID2, &relType, &ref.ConfidenceScore, &ref.Reasoning, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cross reference: %w", err)
		}
		ref.RelationshipType = models.RelationshipType(relType)
		if ref.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
