// ABOUTME: Ollama embedding provider for self-hosted models
// ABOUTME: Calls /api/embeddings over HTTP with retry and per-attempt timeouts
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/harper/lifeline/internal/models"
	"github.com/harper/lifeline/internal/util"
)

const (
	// DefaultOllamaURL is the default Ollama server address
	DefaultOllamaURL = "http://localhost:11434"
	// DefaultOllamaModel is the default Ollama embedding model
	DefaultOllamaModel = "nomic-embed-text"
)

// OllamaConfig holds configuration for the Ollama provider
type OllamaConfig struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	HTTPClient *http.Client
}

// Ollama embeds text with a local Ollama server
type Ollama struct {
	baseURL   string
	model     string
	client    *http.Client
	policy    util.RetryPolicy
	dimension atomic.Int64
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllama creates an Ollama provider, filling defaults for empty fields
func NewOllama(config *OllamaConfig) *Ollama {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	model := config.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	o := &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  client,
		policy: util.RetryPolicy{
			MaxRetries:     config.MaxRetries,
			BaseDelay:      config.RetryDelay,
			AttemptTimeout: config.Timeout,
		},
	}
	if model == DefaultOllamaModel {
		o.dimension.Store(768)
	}
	return o
}

func (o *Ollama) Name() string  { return ProviderOllama }
func (o *Ollama) Model() string { return o.model }

// Dimension returns the vector size, learned from the first response for unknown models
func (o *Ollama) Dimension() int { return int(o.dimension.Load()) }

// Embed generates an embedding for text
func (o *Ollama) Embed(ctx context.Context, text string) ([]float64, error) {
	jsonBody, err := json.Marshal(ollamaRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, err
	}

	var vector []float64
	err = util.Retry(ctx, o.policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/embeddings", bytes.NewReader(jsonBody))
		if err != nil {
			return util.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := o.client.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return util.Permanent(fmt.Errorf("%w: ollama error (status %d): %s", models.ErrProvider, resp.StatusCode, string(body)))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
		}

		var ollamaResp ollamaResponse
		if err := json.Unmarshal(body, &ollamaResp); err != nil {
			return util.Permanent(fmt.Errorf("%w: ollama response: %w", models.ErrParse, err))
		}
		if len(ollamaResp.Embedding) == 0 {
			return util.Permanent(fmt.Errorf("%w: ollama returned an empty embedding", models.ErrParse))
		}

		vector = make([]float64, len(ollamaResp.Embedding))
		for i, v := range ollamaResp.Embedding {
			vector[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, models.ProviderFailure("ollama embed", err)
	}

	if o.dimension.CompareAndSwap(0, int64(len(vector))) {
		return vector, nil
	}
	if want := o.Dimension(); len(vector) != want {
		return nil, fmt.Errorf("%w: ollama returned %d values, expected %d", models.ErrDimensionMismatch, len(vector), want)
	}
	return vector, nil
}
