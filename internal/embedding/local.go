// ABOUTME: Deterministic network-free embedding provider
// ABOUTME: Hashes word tokens and bigrams into a fixed number of buckets
package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const (
	// LocalModel is the model name recorded for local embeddings
	LocalModel = "hashing-v1"
	// LocalDimension is the fixed vector length of the local provider
	LocalDimension = 256

	bigramWeight = 0.5
)

// Local is the offline fallback provider. Vectors are non-negative and
// L2-normalized, so cosine similarity between them lies in [0, 1].
type Local struct{}

// NewLocal creates the local hashing provider
func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Name() string   { return ProviderLocal }
func (l *Local) Model() string  { return LocalModel }
func (l *Local) Dimension() int { return LocalDimension }

// Embed never fails; text without word tokens yields the zero vector
func (l *Local) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector := make([]float64, LocalDimension)
	tokens := tokenize(text)
	for i, tok := range tokens {
		vector[bucket(tok)] += 1
		if i > 0 {
			vector[bucket(tokens[i-1]+" "+tok)] += bigramWeight
		}
	}

	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	if norm == 0 {
		return vector, nil
	}
	norm = math.Sqrt(norm)
	for i := range vector {
		vector[i] /= norm
	}
	return vector, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % LocalDimension)
}
