// ABOUTME: TagSuggester ranks tags carried by semantically similar events
// ABOUTME: Neighbor tags are weighted by similarity and normalized to the top weight
package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harper/lifeline/internal/models"
)

// TagSuggester proposes tags for events or draft text
type TagSuggester struct {
	search    *SimilaritySearch
	events    EventSource
	embedder  *EmbeddingService
	neighbors int
}

// NewTagSuggester creates a suggester that consults up to neighbors similar events
func NewTagSuggester(search *SimilaritySearch, events EventSource, embedder *EmbeddingService, neighbors int) *TagSuggester {
	if neighbors <= 0 {
		neighbors = 20
	}
	return &TagSuggester{
		search:    search,
		events:    events,
		embedder:  embedder,
		neighbors: neighbors,
	}
}

// SuggestTags returns up to maxSuggestions tags from eventID's neighbors, never one the event already has
func (t *TagSuggester) SuggestTags(ctx context.Context, eventID string, maxSuggestions int) ([]models.TagSuggestion, error) {
	if maxSuggestions <= 0 {
		return nil, fmt.Errorf("%w: max suggestions must be positive", models.ErrValidation)
	}
	source, err := t.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	similar, err := t.search.FindSimilar(ctx, eventID, 0, t.neighbors)
	if err != nil {
		return nil, err
	}
	return t.rank(ctx, similar, source.Tags, maxSuggestions)
}

// SuggestTagsForText embeds raw text and ranks tags from its neighbors
func (t *TagSuggester) SuggestTagsForText(ctx context.Context, text string, maxSuggestions int) ([]models.TagSuggestion, error) {
	if maxSuggestions <= 0 {
		return nil, fmt.Errorf("%w: max suggestions must be positive", models.ErrValidation)
	}
	vector, err := t.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	provider := t.embedder.Provider()
	similar, err := t.search.FindSimilarToVector(ctx, vector, provider.Name(), provider.Model(), 0, t.neighbors)
	if err != nil {
		return nil, err
	}
	return t.rank(ctx, similar, nil, maxSuggestions)
}

type tagWeight struct {
	name       string
	weight     float64
	supporting []string
}

func (t *TagSuggester) rank(ctx context.Context, similar []models.SimilarEvent, exclude []string, maxSuggestions int) ([]models.TagSuggestion, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, tag := range exclude {
		excluded[normalizeTag(tag)] = true
	}

	weights := make(map[string]*tagWeight)
	for _, s := range similar {
		if s.Similarity <= 0 {
			continue
		}
		neighbor, err := t.events.Get(ctx, s.EventID)
		if errors.Is(err, models.ErrNotFound) {
			// Deleted since the search ran
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load neighbor %s: %w", s.EventID, err)
		}
		seen := make(map[string]bool)
		for _, tag := range neighbor.Tags {
			key := normalizeTag(tag)
			if key == "" || excluded[key] || seen[key] {
				continue
			}
			seen[key] = true
			w, ok := weights[key]
			if !ok {
				w = &tagWeight{name: strings.TrimSpace(tag)}
				weights[key] = w
			}
			w.weight += s.Similarity
			w.supporting = append(w.supporting, neighbor.ID)
		}
	}

	var maxWeight float64
	ranked := make([]*tagWeight, 0, len(weights))
	for _, w := range weights {
		ranked = append(ranked, w)
		if w.weight > maxWeight {
			maxWeight = w.weight
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}

	suggestions := make([]models.TagSuggestion, 0, len(ranked))
	for _, w := range ranked {
		suggestions = append(suggestions, models.TagSuggestion{
			TagName:            w.name,
			Confidence:         models.ClampConfidence(w.weight / maxWeight),
			SupportingEventIDs: w.supporting,
		})
	}
	return suggestions, nil
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
