// ABOUTME: Embedding provider capability interface and provider selection
// ABOUTME: One provider is chosen at construction; nothing outside this package branches on it
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/harper/lifeline/internal/llm"
	"github.com/harper/lifeline/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// Provider names
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Provider turns text into a fixed-length vector.
// Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	Model() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Settings selects and configures a provider
type Settings struct {
	Provider   string
	Model      string
	OpenAIKey  string
	OllamaURL  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// New constructs the provider named in settings
func New(settings Settings) (Provider, error) {
	switch settings.Provider {
	case "", ProviderLocal:
		return NewLocal(), nil

	case ProviderOpenAI:
		if settings.OpenAIKey == "" {
			return nil, fmt.Errorf("%w: openai provider requires OPENAI_API_KEY", models.ErrConfiguration)
		}
		cfg := llm.DefaultConfig(settings.OpenAIKey)
		if settings.Model != "" {
			cfg.EmbeddingModel = openai.EmbeddingModel(settings.Model)
		}
		cfg.MaxRetries = settings.MaxRetries
		cfg.RetryDelay = settings.RetryDelay
		if settings.Timeout > 0 {
			cfg.Timeout = settings.Timeout
		}
		client, err := llm.NewOpenAIClientWithConfig(cfg)
		if err != nil {
			return nil, err
		}
		return NewOpenAI(client), nil

	case ProviderOllama:
		return NewOllama(&OllamaConfig{
			BaseURL:    settings.OllamaURL,
			Model:      settings.Model,
			Timeout:    settings.Timeout,
			MaxRetries: settings.MaxRetries,
			RetryDelay: settings.RetryDelay,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", models.ErrConfiguration, settings.Provider)
	}
}
