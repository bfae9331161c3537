// ABOUTME: Engine wires storage, providers, and analyses into one facade
// ABOUTME: Built from an explicit config so several engines can coexist
package core

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/harper/lifeline/internal/config"
	"github.com/harper/lifeline/internal/embedding"
	"github.com/harper/lifeline/internal/llm"
	"github.com/harper/lifeline/internal/models"
	"github.com/harper/lifeline/internal/storage/sqlite"
)

// Options holds the engine's analysis settings
type Options struct {
	SimilarityThreshold float64
	MinConfidence       float64
	LLMConfidenceFloor  float64
	AdjacentDays        int
	Workers             int
	MinCategorySupport  int
	ClusterWindowDays   int
	ClusterMinEvents    int
	EraWindowDays       int
	TagNeighbors        int
	CacheSize           int
}

// DefaultOptions mirrors the config defaults
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig extracts engine options from cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SimilarityThreshold: cfg.SimilarityThreshold,
		MinConfidence:       cfg.MinConfidence,
		LLMConfidenceFloor:  cfg.LLMConfidenceFloor,
		AdjacentDays:        cfg.AdjacentDays,
		Workers:             cfg.Workers,
		MinCategorySupport:  cfg.MinCategorySupport,
		ClusterWindowDays:   cfg.ClusterWindowDays,
		ClusterMinEvents:    cfg.ClusterMinEvents,
		EraWindowDays:       cfg.EraWindowDays,
		TagNeighbors:        cfg.TagNeighbors,
		CacheSize:           cfg.CacheSize,
	}
}

// Components are the collaborators an engine is assembled from
type Components struct {
	Events          EventSource
	Eras            EraSource
	Embeddings      EmbeddingRepository
	CrossReferences CrossReferenceRepository
	Provider        embedding.Provider
	Classifier      Classifier
	// Index defaults to a brute-force scan of Embeddings
	Index VectorIndex
}

// Engine is the cross-reference and pattern engine
type Engine struct {
	opts     Options
	cache    *ReadCache
	events   EventSource
	xrefs    CrossReferenceRepository
	embedder *EmbeddingService
	search   *SimilaritySearch
	analyzer *Analyzer
	patterns *PatternDetector
	tags     *TagSuggester
}

// New builds an engine over store using the providers named in cfg
func New(cfg *config.Config, store *sqlite.Storage) (*Engine, error) {
	provider, err := embedding.New(embedding.Settings{
		Provider:   cfg.EmbeddingProvider,
		Model:      cfg.EmbeddingModel,
		OpenAIKey:  cfg.OpenAIKey,
		OllamaURL:  cfg.OllamaURL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	})
	if err != nil {
		return nil, err
	}

	classifier, err := NewClassifier(cfg)
	if err != nil {
		return nil, err
	}

	return NewEngine(Components{
		Events:          store.Events(),
		Eras:            store.Eras(),
		Embeddings:      store.Embeddings(),
		CrossReferences: store.CrossReferences(),
		Provider:        provider,
		Classifier:      classifier,
	}, OptionsFromConfig(cfg)), nil
}

// NewClassifier returns the classifier named in cfg. LLM classifiers fall
// back to the heuristic when they fail or answer below the confidence floor.
func NewClassifier(cfg *config.Config) (Classifier, error) {
	heuristic := NewHeuristicClassifier(cfg.AdjacentDays)

	var client llm.Completer
	switch cfg.Classifier {
	case "", config.ClassifierHeuristic:
		return heuristic, nil
	case config.ClassifierOpenAI:
		openaiClient, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
			APIKey:     cfg.OpenAIKey,
			ChatModel:  cfg.ChatModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		client = openaiClient
	case config.ClassifierAnthropic:
		claudeClient, err := llm.NewClaudeClient(&llm.ClaudeConfig{
			APIKey:     cfg.AnthropicKey,
			Model:      cfg.AnthropicModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		client = claudeClient
	default:
		return nil, fmt.Errorf("%w: unknown classifier %q", models.ErrConfiguration, cfg.Classifier)
	}

	return NewFallbackClassifier(NewLLMClassifier(client), heuristic, cfg.LLMConfidenceFloor), nil
}

// NewEngine assembles an engine from explicit components
func NewEngine(c Components, opts Options) *Engine {
	cache := NewReadCache(opts.CacheSize)
	embeddings := invalidatingEmbeddings{EmbeddingRepository: c.Embeddings, cache: cache}
	xrefs := invalidatingCrossReferences{CrossReferenceRepository: c.CrossReferences, cache: cache}

	index := c.Index
	if index == nil {
		index = NewBruteForceIndex(embeddings)
	}
	classifier := c.Classifier
	if classifier == nil {
		classifier = NewHeuristicClassifier(opts.AdjacentDays)
	}

	embedder := NewEmbeddingService(c.Provider, embeddings)
	search := NewSimilaritySearch(embeddings, c.Events, index, cache)

	return &Engine{
		opts:     opts,
		cache:    cache,
		events:   c.Events,
		xrefs:    xrefs,
		embedder: embedder,
		search:   search,
		analyzer: NewAnalyzer(search, c.Events, xrefs, classifier, AnalyzerConfig{
			MinConfidence: opts.MinConfidence,
			AdjacentDays:  opts.AdjacentDays,
			Workers:       opts.Workers,
		}),
		patterns: NewPatternDetector(c.Events, c.Eras, embeddings, c.Provider.Name(), c.Provider.Model(), PatternConfig{
			MinCategorySupport: opts.MinCategorySupport,
			ClusterWindowDays:  opts.ClusterWindowDays,
			ClusterMinEvents:   opts.ClusterMinEvents,
			EraWindowDays:      opts.EraWindowDays,
		}),
		tags: NewTagSuggester(search, c.Events, embedder, opts.TagNeighbors),
	}
}

// Options returns the engine's settings
func (e *Engine) Options() Options { return e.opts }

// Embedder returns the embedding service
func (e *Engine) Embedder() *EmbeddingService { return e.embedder }

// Patterns returns the pattern detector
func (e *Engine) Patterns() *PatternDetector { return e.patterns }

// CacheStats reports read cache effectiveness
func (e *Engine) CacheStats() CacheStats { return e.cache.Stats() }

// GenerateEmbedding embeds a stored event's text
func (e *Engine) GenerateEmbedding(ctx context.Context, eventID string) (*models.GenerateResult, error) {
	event, err := e.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return e.embedder.Generate(ctx, eventID, event.TextFields())
}

// RegenerateAll re-embeds every stored event
func (e *Engine) RegenerateAll(ctx context.Context, opts BatchOptions) (*RegenerateReport, error) {
	events, err := e.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if opts.Workers <= 0 {
		opts.Workers = e.opts.Workers
	}
	return e.embedder.RegenerateAll(ctx, events, opts)
}

// ClearEmbeddings removes every stored embedding
func (e *Engine) ClearEmbeddings(ctx context.Context) (int64, error) {
	return e.embedder.ClearAll(ctx)
}

// FindSimilar returns events semantically close to eventID
func (e *Engine) FindSimilar(ctx context.Context, eventID string, threshold float64, limit int) ([]models.SimilarEvent, error) {
	return e.search.FindSimilar(ctx, eventID, threshold, limit)
}

// GetCrossReferences returns every stored relationship touching eventID
func (e *Engine) GetCrossReferences(ctx context.Context, eventID string) ([]models.RelatedReference, error) {
	key := "xref:" + eventID
	cached, generation, ok := e.cache.Get(key)
	if ok {
		refs := cached.([]models.RelatedReference)
		out := make([]models.RelatedReference, len(refs))
		copy(out, refs)
		return out, nil
	}

	refs, err := e.xrefs.GetForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	e.cache.Put(key, refs, generation)
	out := make([]models.RelatedReference, len(refs))
	copy(out, refs)
	return out, nil
}

// AnalyzeEvent detects and stores relationships for one event
func (e *Engine) AnalyzeEvent(ctx context.Context, eventID string, threshold float64) (*AnalyzeResult, error) {
	return e.analyzer.AnalyzeEvent(ctx, eventID, threshold)
}

// AnalyzeFullTimeline analyzes every event in stable order
func (e *Engine) AnalyzeFullTimeline(ctx context.Context, threshold float64, opts TimelineOptions) (*TimelineReport, error) {
	return e.analyzer.AnalyzeFullTimeline(ctx, threshold, opts)
}

// DetectPatterns runs every batch pattern analysis
func (e *Engine) DetectPatterns(ctx context.Context) (*models.PatternReport, error) {
	return e.patterns.DetectPatterns(ctx)
}

// SuggestTags proposes tags for a stored event
func (e *Engine) SuggestTags(ctx context.Context, eventID string, maxSuggestions int) ([]models.TagSuggestion, error) {
	return e.tags.SuggestTags(ctx, eventID, maxSuggestions)
}

// SuggestTagsForText proposes tags for draft text
func (e *Engine) SuggestTagsForText(ctx context.Context, text string, maxSuggestions int) ([]models.TagSuggestion, error) {
	return e.tags.SuggestTagsForText(ctx, text, maxSuggestions)
}

// OnEventChanged re-embeds an edited event, or drops its embedding when
// the edit removed all text
func (e *Engine) OnEventChanged(ctx context.Context, event *models.Event) error {
	_, err := e.embedder.Generate(ctx, event.ID, event.TextFields())
	if errors.Is(err, models.ErrValidation) && event.ID != "" {
		log.Printf("[Embedder] %s has no text, removing embedding", event.ID)
		return e.embedder.Remove(ctx, event.ID)
	}
	return err
}

// OnEventDeleted removes the event's embedding and every reference touching it
func (e *Engine) OnEventDeleted(ctx context.Context, eventID string) error {
	if err := e.embedder.Remove(ctx, eventID); err != nil {
		return err
	}
	if _, err := e.xrefs.DeleteForEvent(ctx, eventID); err != nil {
		return err
	}
	return nil
}
