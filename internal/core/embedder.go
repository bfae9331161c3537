// ABOUTME: EmbeddingService generates and persists one vector per event
// ABOUTME: Regeneration is serialized per event id so records never mix providers
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/harper/lifeline/internal/embedding"
	"github.com/harper/lifeline/internal/models"
)

// EmbeddingService owns the active provider and the embedding store
type EmbeddingService struct {
	provider embedding.Provider
	store    EmbeddingRepository
	locks    *keyedMutex
}

// NewEmbeddingService creates a service embedding with provider into store
func NewEmbeddingService(provider embedding.Provider, store EmbeddingRepository) *EmbeddingService {
	return &EmbeddingService{
		provider: provider,
		store:    store,
		locks:    newKeyedMutex(),
	}
}

// Provider returns the active provider
func (s *EmbeddingService) Provider() embedding.Provider {
	return s.provider
}

// Generate embeds the joined text fields and replaces the event's stored vector
func (s *EmbeddingService) Generate(ctx context.Context, eventID string, fields models.TextFields) (*models.GenerateResult, error) {
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", models.ErrValidation)
	}
	text := fields.Join()
	if text == "" {
		return nil, fmt.Errorf("%w: event %s has no text to embed", models.ErrValidation, eventID)
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	vector, err := s.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed event %s: %w", eventID, err)
	}

	saved, err := s.store.Upsert(ctx, &models.EventEmbedding{
		EventID:   eventID,
		Vector:    vector,
		Provider:  s.provider.Name(),
		Model:     s.provider.Model(),
		Dimension: len(vector),
	})
	if err != nil {
		return nil, err
	}

	return &models.GenerateResult{EmbeddingID: saved.EmbeddingID, Dimension: saved.Dimension}, nil
}

// EmbedText embeds ad-hoc text with the active provider without storing it
func (s *EmbeddingService) EmbedText(ctx context.Context, text string) ([]float64, error) {
	if (models.TextFields{Title: text}).Join() == "" {
		return nil, fmt.Errorf("%w: text is empty", models.ErrValidation)
	}
	return s.embed(ctx, text)
}

func (s *EmbeddingService) embed(ctx context.Context, text string) ([]float64, error) {
	vector, err := s.provider.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, models.ErrDimensionMismatch) {
			return nil, err
		}
		return nil, models.ProviderFailure(s.provider.Name(), err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: %s returned an empty vector", models.ErrParse, s.provider.Name())
	}
	if want := s.provider.Dimension(); want > 0 && len(vector) != want {
		return nil, fmt.Errorf("%w: %s returned %d values, expected %d", models.ErrDimensionMismatch, s.provider.Name(), len(vector), want)
	}
	return vector, nil
}

// Get returns the stored embedding for an event, or ErrNotFound
func (s *EmbeddingService) Get(ctx context.Context, eventID string) (*models.EventEmbedding, error) {
	return s.store.Get(ctx, eventID)
}

// Remove deletes the event's embedding
func (s *EmbeddingService) Remove(ctx context.Context, eventID string) error {
	unlock := s.locks.Lock(eventID)
	defer unlock()
	return s.store.Delete(ctx, eventID)
}

// ClearAll deletes every embedding, for switching providers or models
func (s *EmbeddingService) ClearAll(ctx context.Context) (int64, error) {
	removed, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("[Embedder] Cleared %d embeddings", removed)
	return removed, nil
}

// BatchOptions controls bulk operations
type BatchOptions struct {
	Workers  int
	Progress ProgressFunc
}

// RegenerateReport summarizes a bulk regeneration
type RegenerateReport struct {
	Total      int         `json:"total"`
	Embedded   int         `json:"embedded"`
	Skipped    int         `json:"skipped"`
	Errors     []ItemError `json:"errors,omitempty"`
	Incomplete bool        `json:"incomplete,omitempty"`
}

// RegenerateAll re-embeds every event with a bounded worker pool.
// Events without text are skipped and lose any stale embedding.
// On cancellation it stops starting new provider calls and returns ctx.Err()
// together with the partial report.
func (s *EmbeddingService) RegenerateAll(ctx context.Context, events []models.Event, opts BatchOptions) (*RegenerateReport, error) {
	byID := make(map[string]*models.Event, len(events))
	ids := make([]string, 0, len(events))
	for i := range events {
		byID[events[i].ID] = &events[i]
		ids = append(ids, events[i].ID)
	}

	var skipped atomic.Int64
	result := runBatch(ctx, "Embedder", ids, opts.Workers, opts.Progress, func(ctx context.Context, id string) error {
		event := byID[id]
		_, err := s.Generate(ctx, id, event.TextFields())
		if errors.Is(err, models.ErrValidation) {
			if err := s.Remove(ctx, id); err != nil {
				return err
			}
			skipped.Add(1)
			return nil
		}
		return err
	})

	report := &RegenerateReport{
		Total:   len(events),
		Skipped: int(skipped.Load()),
		Errors:  result.errors,
	}
	report.Embedded = result.attempted - report.Skipped - len(result.errors)
	if ctx.Err() != nil {
		report.Incomplete = true
		return report, ctx.Err()
	}
	return report, nil
}
