// ABOUTME: Tests for the local hashing provider
// ABOUTME: Verifies determinism, normalization, and the zero vector for empty text
package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEmbedDeterministic(t *testing.T) {
	p := NewLocal()
	ctx := context.Background()

	a, err := p.Embed(ctx, "Trip to Paris with Sam")
	require.NoError(t, err)
	b, err := p.Embed(ctx, "trip to paris, with SAM!")
	require.NoError(t, err)

	assert.Len(t, a, LocalDimension)
	assert.Equal(t, a, b, "case and punctuation should not change the vector")
}

func TestLocalEmbedNormalized(t *testing.T) {
	vector, err := NewLocal().Embed(context.Background(), "Started first job at the bakery")
	require.NoError(t, err)

	var norm float64
	for _, v := range vector {
		assert.GreaterOrEqual(t, v, 0.0)
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
}

func TestLocalEmbedEmptyText(t *testing.T) {
	vector, err := NewLocal().Embed(context.Background(), "  ...  ")
	require.NoError(t, err)
	require.Len(t, vector, LocalDimension)
	for _, v := range vector {
		assert.Zero(t, v)
	}
}

func TestLocalEmbedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocal().Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalIdentity(t *testing.T) {
	p := NewLocal()
	assert.Equal(t, "local", p.Name())
	assert.Equal(t, "hashing-v1", p.Model())
	assert.Equal(t, 256, p.Dimension())
}
