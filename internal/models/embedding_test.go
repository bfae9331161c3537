// ABOUTME: Tests for EventEmbedding validation and provider-space checks
// ABOUTME: Verifies dimension consistency required before persistence
package models

import (
	"errors"
	"testing"
)

func TestEventEmbedding_Validate(t *testing.T) {
	tests := []struct {
		name      string
		embedding EventEmbedding
		wantErr   error
	}{
		{
			name:      "valid dimension match",
			embedding: EventEmbedding{EventID: "evt_1", Vector: []float64{0.1, 0.2, 0.3}, Dimension: 3},
		},
		{
			name:      "missing event id",
			embedding: EventEmbedding{Vector: []float64{0.1}, Dimension: 1},
			wantErr:   ErrValidation,
		},
		{
			name:      "empty vector",
			embedding: EventEmbedding{EventID: "evt_2", Vector: nil, Dimension: 0},
			wantErr:   ErrValidation,
		},
		{
			name:      "dimension mismatch",
			embedding: EventEmbedding{EventID: "evt_3", Vector: []float64{0.1, 0.2}, Dimension: 4},
			wantErr:   ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.embedding.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventEmbedding_SameSpace(t *testing.T) {
	a := &EventEmbedding{Provider: "local", Model: "hashing-v1"}
	b := &EventEmbedding{Provider: "local", Model: "hashing-v1"}
	c := &EventEmbedding{Provider: "openai", Model: "text-embedding-3-small"}

	if !a.SameSpace(b) {
		t.Error("SameSpace() = false for identical provider and model")
	}
	if a.SameSpace(c) {
		t.Error("SameSpace() = true across providers")
	}
}

func TestProviderFailure(t *testing.T) {
	if ProviderFailure("op", nil) != nil {
		t.Error("ProviderFailure(nil) should be nil")
	}

	err := ProviderFailure("embed", errors.New("connection refused"))
	if !errors.Is(err, ErrProvider) {
		t.Errorf("expected ErrProvider, got %v", err)
	}
	if errors.Is(err, ErrProviderTimeout) {
		t.Error("plain failure should not be a timeout")
	}

	parse := ProviderFailure("embed", ErrParse)
	if !errors.Is(parse, ErrParse) || errors.Is(parse, ErrProvider) {
		t.Errorf("parse errors should pass through, got %v", parse)
	}
}
