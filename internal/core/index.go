// ABOUTME: VectorIndex seam for nearest-neighbor lookups
// ABOUTME: BruteForceIndex scans every embedding in the query's provider+model space
package core

import (
	"context"
	"sort"

	"github.com/harper/lifeline/internal/models"
)

// similarityEpsilon absorbs float rounding when comparing against a threshold
const similarityEpsilon = 1e-9

// Neighbor is a raw index hit
type Neighbor struct {
	EventID    string
	Similarity float64
}

// VectorQuery describes a nearest-neighbor lookup
type VectorQuery struct {
	Vector    []float64
	Provider  string
	Model     string
	ExcludeID string
	Threshold float64
	// Limit <= 0 returns every neighbor above Threshold
	Limit int
}

// VectorIndex finds stored embeddings close to a query vector.
// Results are sorted by similarity descending and cut after Limit, except
// that entries tied with the last kept similarity are all returned so the
// caller can break ties.
type VectorIndex interface {
	Search(ctx context.Context, query VectorQuery) ([]Neighbor, error)
}

// BruteForceIndex compares the query against every embedding in its space
type BruteForceIndex struct {
	store EmbeddingRepository
}

// NewBruteForceIndex creates an index over store
func NewBruteForceIndex(store EmbeddingRepository) *BruteForceIndex {
	return &BruteForceIndex{store: store}
}

// Search implements VectorIndex. Vectors whose length differs from the
// query are skipped.
func (b *BruteForceIndex) Search(ctx context.Context, query VectorQuery) ([]Neighbor, error) {
	candidates, err := b.store.ListBySpace(ctx, query.Provider, query.Model)
	if err != nil {
		return nil, err
	}

	neighbors := make([]Neighbor, 0, len(candidates))
	for _, c := range candidates {
		if c.EventID == query.ExcludeID || len(c.Vector) != len(query.Vector) {
			continue
		}
		sim := Cosine(query.Vector, c.Vector)
		if sim+similarityEpsilon < query.Threshold {
			continue
		}
		neighbors = append(neighbors, Neighbor{EventID: c.EventID, Similarity: sim})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})
	return truncateWithTies(neighbors, query.Limit), nil
}

func truncateWithTies(neighbors []Neighbor, limit int) []Neighbor {
	if limit <= 0 || len(neighbors) <= limit {
		return neighbors
	}
	cut := limit
	last := neighbors[limit-1].Similarity
	for cut < len(neighbors) && neighbors[cut].Similarity == last {
		cut++
	}
	return neighbors[:cut]
}

var _ VectorIndex = (*BruteForceIndex)(nil)

// embeddingSpace identifies comparable vectors
func embeddingSpace(emb *models.EventEmbedding) (string, string) {
	return emb.Provider, emb.Model
}
