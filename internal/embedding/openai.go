// ABOUTME: Hosted OpenAI embedding provider
// ABOUTME: Delegates to the llm OpenAI client, which owns retries and timeouts
package embedding

import (
	"context"
	"fmt"

	"github.com/harper/lifeline/internal/models"
)

// openAIDimensions lists the output size of known OpenAI embedding models
var openAIDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// EmbeddingClient is the subset of the OpenAI client used for embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
	EmbeddingModel() string
}

// OpenAI embeds text through the OpenAI embeddings API
type OpenAI struct {
	client EmbeddingClient
}

// NewOpenAI creates an OpenAI provider around an embedding client
func NewOpenAI(client EmbeddingClient) *OpenAI {
	return &OpenAI{client: client}
}

func (o *OpenAI) Name() string  { return ProviderOpenAI }
func (o *OpenAI) Model() string { return o.client.EmbeddingModel() }

// Dimension returns the documented size of the model, or 0 when unknown
func (o *OpenAI) Dimension() int {
	return openAIDimensions[o.client.EmbeddingModel()]
}

// Embed generates an embedding, checking its length against the model's size
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	vector, err := o.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, models.ProviderFailure("openai embed", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: openai returned an empty embedding", models.ErrParse)
	}
	if want := o.Dimension(); want > 0 && len(vector) != want {
		return nil, fmt.Errorf("%w: openai returned %d values, model %s has %d", models.ErrDimensionMismatch, len(vector), o.Model(), want)
	}
	return vector, nil
}
