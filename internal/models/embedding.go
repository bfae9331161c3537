// ABOUTME: Embedding models for vector storage and semantic search
// ABOUTME: Defines EventEmbedding and SimilarEvent structures
package models

import (
	"fmt"
	"time"
)

// EventEmbedding is the single live vector stored for an event
type EventEmbedding struct {
	EmbeddingID string    `json:"embedding_id"`
	EventID     string    `json:"event_id"`
	Vector      []float64 `json:"vector"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Dimension   int       `json:"dimension"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks that the stored dimension agrees with the vector
func (e *EventEmbedding) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: embedding event_id is required", ErrValidation)
	}
	if len(e.Vector) == 0 {
		return fmt.Errorf("%w: embedding vector is empty", ErrValidation)
	}
	if e.Dimension != len(e.Vector) {
		return fmt.Errorf("%w: dimension %d does not match vector length %d", ErrDimensionMismatch, e.Dimension, len(e.Vector))
	}
	return nil
}

// SameSpace reports whether two embeddings came from the same provider and model
func (e *EventEmbedding) SameSpace(other *EventEmbedding) bool {
	return e.Provider == other.Provider && e.Model == other.Model
}

// GenerateResult is returned after an embedding is (re)generated
type GenerateResult struct {
	EmbeddingID string `json:"embedding_id"`
	Dimension   int    `json:"dimension"`
}

// SimilarEvent is one nearest-neighbor hit
type SimilarEvent struct {
	EventID    string    `json:"event_id"`
	Title      string    `json:"title"`
	StartDate  time.Time `json:"start_date"`
	Similarity float64   `json:"similarity"`
}
