// ABOUTME: Repository decorators that clear the read cache on every write
// ABOUTME: Reads pass straight through to the wrapped store
package core

import (
	"context"

	"github.com/harper/lifeline/internal/models"
)

type invalidatingEmbeddings struct {
	EmbeddingRepository
	cache *ReadCache
}

func (r invalidatingEmbeddings) Upsert(ctx context.Context, emb *models.EventEmbedding) (*models.EventEmbedding, error) {
	defer r.cache.Invalidate()
	return r.EmbeddingRepository.Upsert(ctx, emb)
}

func (r invalidatingEmbeddings) Delete(ctx context.Context, eventID string) error {
	defer r.cache.Invalidate()
	return r.EmbeddingRepository.Delete(ctx, eventID)
}

func (r invalidatingEmbeddings) DeleteAll(ctx context.Context) (int64, error) {
	defer r.cache.Invalidate()
	return r.EmbeddingRepository.DeleteAll(ctx)
}

type invalidatingCrossReferences struct {
	CrossReferenceRepository
	cache *ReadCache
}

func (r invalidatingCrossReferences) Upsert(ctx context.Context, eventA, eventB string, relType models.RelationshipType, confidence float64, reasoning string) (*models.CrossReference, error) {
	defer r.cache.Invalidate()
	return r.CrossReferenceRepository.Upsert(ctx, eventA, eventB, relType, confidence, reasoning)
}

func (r invalidatingCrossReferences) DeleteForEvent(ctx context.Context, eventID string) (int64, error) {
	defer r.cache.Invalidate()
	return r.CrossReferenceRepository.DeleteForEvent(ctx, eventID)
}
