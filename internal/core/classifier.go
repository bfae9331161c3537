// ABOUTME: Relationship classifiers for candidate event pairs
// ABOUTME: Heuristic rules, an LLM-backed classifier, and a fallback combinator
package core

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/harper/lifeline/internal/llm"
	"github.com/harper/lifeline/internal/models"
)

// Classifier decides how two events relate
type Classifier interface {
	Classify(ctx context.Context, a, b *models.Event) (*models.Classification, error)
}

// Classification sources
const (
	SourceHeuristic = "heuristic"
)

// HeuristicClassifier scores pairs from shared metadata and dates.
// It never fails and needs no network.
type HeuristicClassifier struct {
	// AdjacentDays is the gap within which non-overlapping events still count as temporal
	AdjacentDays int
}

// NewHeuristicClassifier creates a heuristic classifier
func NewHeuristicClassifier(adjacentDays int) *HeuristicClassifier {
	return &HeuristicClassifier{AdjacentDays: adjacentDays}
}

// Classify applies the rules in precedence order: people, locations, dates, themes
func (h *HeuristicClassifier) Classify(ctx context.Context, a, b *models.Event) (*models.Classification, error) {
	if people := models.SharedValues(a.People, b.People); len(people) > 0 {
		return heuristic(models.RelationshipPerson,
			math.Min(0.95, 0.6+0.1*float64(len(people)-1)),
			"Both events involve "+strings.Join(people, ", ")), nil
	}

	if places := models.SharedValues(a.Locations, b.Locations); len(places) > 0 {
		return heuristic(models.RelationshipLocation,
			math.Min(0.9, 0.55+0.1*float64(len(places)-1)),
			"Both events took place in "+strings.Join(places, ", ")), nil
	}

	if gap, ok := dateGap(a, b); ok {
		if gap == 0 {
			return heuristic(models.RelationshipTemporal, 0.7, "The events overlap in time"), nil
		}
		if h.AdjacentDays > 0 && gap <= float64(h.AdjacentDays) {
			return heuristic(models.RelationshipTemporal,
				0.7-0.3*gap/float64(h.AdjacentDays),
				fmt.Sprintf("The events happened %.0f days apart", gap)), nil
		}
	}

	sameCategory := a.Category != "" && strings.EqualFold(strings.TrimSpace(a.Category), strings.TrimSpace(b.Category))
	tags := models.SharedValues(a.Tags, b.Tags)
	if sameCategory || len(tags) > 0 {
		confidence := 0.3 + 0.1*float64(len(tags))
		var evidence []string
		if sameCategory {
			confidence += 0.15
			evidence = append(evidence, "category "+a.Category)
		}
		if len(tags) > 0 {
			evidence = append(evidence, "tags "+strings.Join(tags, ", "))
		}
		return heuristic(models.RelationshipThematic, math.Min(0.85, confidence),
			"Both events share "+strings.Join(evidence, " and ")), nil
	}

	return heuristic(models.RelationshipOther, 0.2, "No shared people, places, dates or themes"), nil
}

func heuristic(t models.RelationshipType, confidence float64, reasoning string) *models.Classification {
	return &models.Classification{
		Type:       t,
		Confidence: models.ClampConfidence(confidence),
		Reasoning:  reasoning,
		Source:     SourceHeuristic,
	}
}

// dateGap returns the number of days between two events' date ranges,
// 0 when they overlap. ok is false when either start date is missing.
func dateGap(a, b *models.Event) (float64, bool) {
	if a.StartDate.IsZero() || b.StartDate.IsZero() {
		return 0, false
	}
	first, second := a, b
	if second.StartDate.Before(first.StartDate) {
		first, second = second, first
	}
	if !second.StartDate.After(first.End()) {
		return 0, true
	}
	return second.StartDate.Sub(first.End()).Hours() / 24, true
}

// temporalNeighbors reports whether two events overlap or lie within adjacentDays
func temporalNeighbors(a, b *models.Event, adjacentDays int) bool {
	gap, ok := dateGap(a, b)
	if !ok {
		return false
	}
	return gap <= float64(adjacentDays)
}

// LLMClassifier asks a chat model for a relationship verdict
type LLMClassifier struct {
	client llm.Completer
}

// NewLLMClassifier creates a classifier backed by client
func NewLLMClassifier(client llm.Completer) *LLMClassifier {
	return &LLMClassifier{client: client}
}

// Classify sends both events to the model and parses its JSON verdict
func (l *LLMClassifier) Classify(ctx context.Context, a, b *models.Event) (*models.Classification, error) {
	content, err := l.client.Complete(ctx, llm.RelationshipSystemPrompt, llm.RelationshipPrompt(a, b))
	if err != nil {
		return nil, models.ProviderFailure(l.client.Name(), err)
	}
	verdict, err := llm.ParseVerdict(content)
	if err != nil {
		return nil, err
	}
	verdict.Source = l.client.Name()
	return verdict, nil
}

// FallbackClassifier uses Primary and falls back when it fails or is unsure
type FallbackClassifier struct {
	Primary  Classifier
	Fallback Classifier
	// Floor is the minimum primary confidence accepted without falling back
	Floor float64
}

// NewFallbackClassifier combines a primary and a fallback classifier
func NewFallbackClassifier(primary, fallback Classifier, floor float64) *FallbackClassifier {
	return &FallbackClassifier{Primary: primary, Fallback: fallback, Floor: floor}
}

// Classify implements Classifier
func (f *FallbackClassifier) Classify(ctx context.Context, a, b *models.Event) (*models.Classification, error) {
	start := time.Now()
	verdict, err := f.Primary.Classify(ctx, a, b)
	switch {
	case err != nil:
		log.Printf("[Classifier] primary failed for (%s, %s) after %v, using fallback: %v", a.ID, b.ID, time.Since(start).Round(time.Millisecond), err)
	case verdict.Confidence < f.Floor:
		log.Printf("[Classifier] primary confidence %.2f below %.2f for (%s, %s), using fallback", verdict.Confidence, f.Floor, a.ID, b.ID)
	default:
		return verdict, nil
	}
	return f.Fallback.Classify(ctx, a, b)
}

var (
	_ Classifier = (*HeuristicClassifier)(nil)
	_ Classifier = (*LLMClassifier)(nil)
	_ Classifier = (*FallbackClassifier)(nil)
)
