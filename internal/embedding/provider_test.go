// ABOUTME: Tests for provider selection and the hosted providers
// ABOUTME: Uses httptest for Ollama and a fake client for OpenAI
package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/lifeline/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantName string
		wantErr  error
	}{
		{name: "default is local", settings: Settings{}, wantName: ProviderLocal},
		{name: "local", settings: Settings{Provider: "local"}, wantName: ProviderLocal},
		{name: "openai", settings: Settings{Provider: "openai", OpenAIKey: "sk-test"}, wantName: ProviderOpenAI},
		{name: "openai without key", settings: Settings{Provider: "openai"}, wantErr: models.ErrConfiguration},
		{name: "ollama", settings: Settings{Provider: "ollama"}, wantName: ProviderOllama},
		{name: "unknown", settings: Settings{Provider: "word2vec"}, wantErr: models.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestNewOpenAIModel(t *testing.T) {
	p, err := New(Settings{Provider: "openai", OpenAIKey: "sk-test", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", p.Model())
	assert.Equal(t, 3072, p.Dimension())
}

type fakeEmbeddingClient struct {
	vector []float64
	err    error
	model  string
}

func (f *fakeEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	return f.vector, f.err
}

func (f *fakeEmbeddingClient) EmbeddingModel() string { return f.model }

func TestOpenAIEmbed(t *testing.T) {
	ctx := context.Background()

	ok := NewOpenAI(&fakeEmbeddingClient{vector: make([]float64, 1536), model: "text-embedding-3-small"})
	vector, err := ok.Embed(ctx, "hello")
	require.NoError(t, err)
	assert.Len(t, vector, 1536)

	short := NewOpenAI(&fakeEmbeddingClient{vector: []float64{1, 2}, model: "text-embedding-3-small"})
	_, err = short.Embed(ctx, "hello")
	assert.ErrorIs(t, err, models.ErrDimensionMismatch)

	empty := NewOpenAI(&fakeEmbeddingClient{model: "text-embedding-3-small"})
	_, err = empty.Embed(ctx, "hello")
	assert.ErrorIs(t, err, models.ErrParse)

	failing := NewOpenAI(&fakeEmbeddingClient{err: errors.New("connection reset"), model: "text-embedding-3-small"})
	_, err = failing.Embed(ctx, "hello")
	assert.ErrorIs(t, err, models.ErrProvider)
}

func newTestOllama(url string) *Ollama {
	return NewOllama(&OllamaConfig{
		BaseURL:    url,
		Model:      "test-embed",
		Timeout:    time.Second,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	})
}

func TestOllamaEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-embed", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float32{0.5, 0.25, 0.125}})
	}))
	defer server.Close()

	p := newTestOllama(server.URL)
	assert.Equal(t, 0, p.Dimension())

	vector, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25, 0.125}, vector)
	assert.Equal(t, 3, p.Dimension())
}

func TestOllamaRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "loading model", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float32{1}})
	}))
	defer server.Close()

	_, err := newTestOllama(server.URL).Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOllamaMalformedResponse(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := newTestOllama(server.URL).Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, models.ErrParse)
	assert.Equal(t, int32(1), calls.Load(), "parse errors should not be retried")
}

func TestOllamaClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestOllama(server.URL).Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, models.ErrProvider)
}

func TestOllamaTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	p := NewOllama(&OllamaConfig{
		BaseURL:    server.URL,
		Timeout:    20 * time.Millisecond,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	_, err := p.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, models.ErrProviderTimeout)
	assert.ErrorIs(t, err, models.ErrProvider)
}
