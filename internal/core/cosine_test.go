// ABOUTME: Tests for cosine similarity
// ABOUTME: Identity, symmetry, and zero-vector behavior
package core

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func randomVector(r *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = r.Float64()*2 - 1
	}
	return v
}

func TestCosineIdentity(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		v := randomVector(r, 32)
		assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
	}
}

func TestCosineSymmetric(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 50; i++ {
		a, b := randomVector(r, 16), randomVector(r, 16)
		assert.Equal(t, Cosine(a, b), Cosine(b, a))
	}
}

func TestCosineZeroVector(t *testing.T) {
	zero := make([]float64, 8)
	v := []float64{1, 2, 3, 4, 5, 6, 7, 8}

	for _, got := range []float64{Cosine(zero, v), Cosine(v, zero), Cosine(zero, zero)} {
		assert.False(t, math.IsNaN(got))
		assert.Zero(t, got)
	}
}

func TestCosineKnownValues(t *testing.T) {
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-2, 0}), 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), Cosine([]float64{1, 1}, []float64{1, 0}), 1e-12)
	assert.Zero(t, Cosine([]float64{1, 0}, []float64{1, 0, 0}))
	assert.Zero(t, Cosine(nil, nil))
}
