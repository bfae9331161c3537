// ABOUTME: SimilaritySearch answers findSimilar queries over stored embeddings
// ABOUTME: Resolves index hits to events, breaks ties by recency, and caches results
package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/harper/lifeline/internal/models"
)

// SimilaritySearch ranks events by cosine similarity to a source
type SimilaritySearch struct {
	embeddings EmbeddingRepository
	events     EventSource
	index      VectorIndex
	cache      *ReadCache
}

// NewSimilaritySearch creates a search over embeddings using index.
// cache may be nil.
func NewSimilaritySearch(embeddings EmbeddingRepository, events EventSource, index VectorIndex, cache *ReadCache) *SimilaritySearch {
	if cache == nil {
		cache = NewReadCache(0)
	}
	return &SimilaritySearch{
		embeddings: embeddings,
		events:     events,
		index:      index,
		cache:      cache,
	}
}

// FindSimilar returns up to limit events whose embedding similarity to
// eventID's is at least threshold, most similar first.
// An empty embedding store yields an empty list.
func (s *SimilaritySearch) FindSimilar(ctx context.Context, eventID string, threshold float64, limit int) ([]models.SimilarEvent, error) {
	if err := validateQuery(threshold, limit); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("similar:%s:%g:%d", eventID, threshold, limit)
	cached, generation, ok := s.cache.Get(key)
	if ok {
		return copySimilar(cached.([]models.SimilarEvent)), nil
	}

	source, err := s.embeddings.Get(ctx, eventID)
	if errors.Is(err, models.ErrNotFound) {
		count, countErr := s.embeddings.Count(ctx)
		if countErr == nil && count == 0 {
			return []models.SimilarEvent{}, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	provider, model := embeddingSpace(source)
	results, err := s.search(ctx, VectorQuery{
		Vector:    source.Vector,
		Provider:  provider,
		Model:     model,
		ExcludeID: eventID,
		Threshold: threshold,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	s.cache.Put(key, results, generation)
	return copySimilar(results), nil
}

// FindSimilarToVector ranks stored events against an ad-hoc vector in the
// given provider+model space
func (s *SimilaritySearch) FindSimilarToVector(ctx context.Context, vector []float64, provider, model string, threshold float64, limit int) ([]models.SimilarEvent, error) {
	if err := validateQuery(threshold, limit); err != nil {
		return nil, err
	}
	return s.search(ctx, VectorQuery{
		Vector:    vector,
		Provider:  provider,
		Model:     model,
		Threshold: threshold,
		Limit:     limit,
	})
}

func (s *SimilaritySearch) search(ctx context.Context, query VectorQuery) ([]models.SimilarEvent, error) {
	neighbors, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	results, orphans, err := s.resolve(ctx, neighbors)
	if err != nil {
		return nil, err
	}

	// Orphaned embeddings took slots in the cut, so rescan without a limit
	if orphans > 0 && len(neighbors) >= query.Limit {
		unbounded := query
		unbounded.Limit = 0
		if neighbors, err = s.index.Search(ctx, unbounded); err != nil {
			return nil, fmt.Errorf("vector search failed: %w", err)
		}
		if results, _, err = s.resolve(ctx, neighbors); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		if !results[i].StartDate.Equal(results[j].StartDate) {
			return results[i].StartDate.After(results[j].StartDate)
		}
		return results[i].EventID < results[j].EventID
	})
	if len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results, nil
}

// resolve loads the event behind each neighbor and counts neighbors whose
// embedding outlived its event
func (s *SimilaritySearch) resolve(ctx context.Context, neighbors []Neighbor) ([]models.SimilarEvent, int, error) {
	results := make([]models.SimilarEvent, 0, len(neighbors))
	orphans := 0
	for _, n := range neighbors {
		event, err := s.events.Get(ctx, n.EventID)
		if errors.Is(err, models.ErrNotFound) {
			orphans++
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		results = append(results, models.SimilarEvent{
			EventID:    event.ID,
			Title:      event.Title,
			StartDate:  event.StartDate,
			Similarity: n.Similarity,
		})
	}
	return results, orphans, nil
}

func validateQuery(threshold float64, limit int) error {
	if threshold < 0 || threshold > 1 || threshold != threshold {
		return fmt.Errorf("%w: threshold must be between 0 and 1, got %v", models.ErrValidation, threshold)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", models.ErrValidation, limit)
	}
	return nil
}

func copySimilar(in []models.SimilarEvent) []models.SimilarEvent {
	out := make([]models.SimilarEvent, len(in))
	copy(out, in)
	return out
}
