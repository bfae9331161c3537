// ABOUTME: Cosine similarity between embedding vectors
// ABOUTME: Zero vectors and length mismatches score 0 rather than NaN
package core

import "math"

// Cosine returns dot(a,b)/(|a|·|b|), or 0 when either vector is all-zero
// or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	sim := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push identical vectors just past 1
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}
