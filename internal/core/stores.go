// ABOUTME: Storage seams the engine depends on
// ABOUTME: Implemented by the SQLite stores; tests may substitute fakes
package core

import (
	"context"

	"github.com/harper/lifeline/internal/models"
)

// EventSource reads events from the event store
type EventSource interface {
	Get(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
}

// EraSource reads eras from the event store
type EraSource interface {
	List(ctx context.Context) ([]models.Era, error)
}

// EmbeddingRepository persists one embedding per event
type EmbeddingRepository interface {
	Upsert(ctx context.Context, emb *models.EventEmbedding) (*models.EventEmbedding, error)
	Get(ctx context.Context, eventID string) (*models.EventEmbedding, error)
	ListBySpace(ctx context.Context, provider, model string) ([]models.EventEmbedding, error)
	Delete(ctx context.Context, eventID string) error
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}

// CrossReferenceRepository persists canonical typed relationships
type CrossReferenceRepository interface {
	Upsert(ctx context.Context, eventA, eventB string, relType models.RelationshipType, confidence float64, reasoning string) (*models.CrossReference, error)
	GetForEvent(ctx context.Context, eventID string) ([]models.RelatedReference, error)
	DeleteForEvent(ctx context.Context, eventID string) (int64, error)
	Count(ctx context.Context) (int, error)
}
