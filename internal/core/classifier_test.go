// ABOUTME: Tests for heuristic, LLM, and fallback relationship classifiers
// ABOUTME: The LLM path is driven by a scripted Completer
package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harper/lifeline/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedCompleter struct {
	reply string
	err   error
	calls int
}

func (s *scriptedCompleter) Name() string { return "scripted:test" }

func (s *scriptedCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	return s.reply, s.err
}

type fixedClassifier struct {
	verdict *models.Classification
	err     error
	calls   int
}

func (f *fixedClassifier) Classify(ctx context.Context, a, b *models.Event) (*models.Classification, error) {
	f.calls++
	return f.verdict, f.err
}

func TestHeuristicClassifier(t *testing.T) {
	end := date("2020-03-10")
	tests := []struct {
		name       string
		a, b       models.Event
		want       models.RelationshipType
		confidence float64
	}{
		{
			name:       "one shared person",
			a:          models.Event{ID: "a", People: []string{"Alice", "Bob"}, StartDate: date("2010-01-01")},
			b:          models.Event{ID: "b", People: []string{"alice"}, StartDate: date("2015-01-01")},
			want:       models.RelationshipPerson,
			confidence: 0.6,
		},
		{
			name:       "many shared people cap",
			a:          models.Event{ID: "a", People: []string{"a", "b", "c", "d", "e", "f"}, StartDate: date("2010-01-01")},
			b:          models.Event{ID: "b", People: []string{"a", "b", "c", "d", "e", "f"}, StartDate: date("2015-01-01")},
			want:       models.RelationshipPerson,
			confidence: 0.95,
		},
		{
			name:       "shared location",
			a:          models.Event{ID: "a", Locations: []string{"Paris"}, StartDate: date("2010-01-01")},
			b:          models.Event{ID: "b", Locations: []string{"paris", "Lyon"}, StartDate: date("2015-01-01")},
			want:       models.RelationshipLocation,
			confidence: 0.55,
		},
		{
			name:       "overlapping dates",
			a:          models.Event{ID: "a", StartDate: date("2020-03-01"), EndDate: &end},
			b:          models.Event{ID: "b", StartDate: date("2020-03-05")},
			want:       models.RelationshipTemporal,
			confidence: 0.7,
		},
		{
			name:       "adjacent dates",
			a:          models.Event{ID: "a", StartDate: date("2020-05-15")},
			b:          models.Event{ID: "b", StartDate: date("2020-06-01")},
			want:       models.RelationshipTemporal,
			confidence: 0.53,
		},
		{
			name:       "same category far apart",
			a:          models.Event{ID: "a", Category: "Work", StartDate: date("2010-01-01")},
			b:          models.Event{ID: "b", Category: "work", StartDate: date("2015-01-01")},
			want:       models.RelationshipThematic,
			confidence: 0.45,
		},
		{
			name:       "same category and shared tags",
			a:          models.Event{ID: "a", Category: "work", Tags: []string{"career", "move"}, StartDate: date("2010-01-01")},
			b:          models.Event{ID: "b", Category: "work", Tags: []string{"Career", "move"}, StartDate: date("2015-01-01")},
			want:       models.RelationshipThematic,
			confidence: 0.65,
		},
		{
			name:       "nothing in common",
			a:          models.Event{ID: "a", Category: "travel", StartDate: date("2010-01-01")},
			b:          models.Event{ID: "b", Category: "work", StartDate: date("2015-01-01")},
			want:       models.RelationshipOther,
			confidence: 0.2,
		},
	}

	classifier := NewHeuristicClassifier(30)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := classifier.Classify(context.Background(), &tt.a, &tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, verdict.Type)
			assert.InDelta(t, tt.confidence, verdict.Confidence, 1e-9)
			assert.NotEmpty(t, verdict.Reasoning)
			assert.Equal(t, SourceHeuristic, verdict.Source)
		})
	}
}

func TestHeuristicClassifierIsSymmetric(t *testing.T) {
	classifier := NewHeuristicClassifier(30)
	a := models.Event{ID: "a", StartDate: date("2020-06-01")}
	b := models.Event{ID: "b", StartDate: date("2020-05-15")}

	ab, err := classifier.Classify(context.Background(), &a, &b)
	require.NoError(t, err)
	ba, err := classifier.Classify(context.Background(), &b, &a)
	require.NoError(t, err)

	assert.Equal(t, ab.Type, ba.Type)
	assert.InDelta(t, ab.Confidence, ba.Confidence, 1e-12)
}

func TestDateGap(t *testing.T) {
	end := date("2020-01-10")
	a := models.Event{StartDate: date("2020-01-01"), EndDate: &end}
	b := models.Event{StartDate: date("2020-01-20")}

	gap, ok := dateGap(&a, &b)
	require.True(t, ok)
	assert.InDelta(t, 10.0, gap, 1e-9)

	_, ok = dateGap(&a, &models.Event{})
	assert.False(t, ok)

	assert.True(t, temporalNeighbors(&a, &b, 10))
	assert.False(t, temporalNeighbors(&a, &b, 9))
}

func TestLLMClassifier(t *testing.T) {
	completer := &scriptedCompleter{reply: "```json\n{\"type\": \"Causal\", \"confidence\": 0.82, \"reasoning\": \"Graduating led to the job\"}\n```"}
	classifier := NewLLMClassifier(completer)
	events := scenarioEvents()

	verdict, err := classifier.Classify(context.Background(), &events[0], &events[1])
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipCausal, verdict.Type)
	assert.InDelta(t, 0.82, verdict.Confidence, 1e-9)
	assert.Equal(t, "Graduating led to the job", verdict.Reasoning)
	assert.Equal(t, "scripted:test", verdict.Source)
}

func TestLLMClassifierErrors(t *testing.T) {
	events := scenarioEvents()

	_, err := NewLLMClassifier(&scriptedCompleter{reply: "I think they are related"}).Classify(context.Background(), &events[0], &events[1])
	assert.ErrorIs(t, err, models.ErrParse)

	_, err = NewLLMClassifier(&scriptedCompleter{err: errors.New("connection reset")}).Classify(context.Background(), &events[0], &events[1])
	assert.ErrorIs(t, err, models.ErrProvider)

	_, err = NewLLMClassifier(&scriptedCompleter{err: context.DeadlineExceeded}).Classify(context.Background(), &events[0], &events[1])
	assert.ErrorIs(t, err, models.ErrProviderTimeout)
}

func TestFallbackClassifier(t *testing.T) {
	events := scenarioEvents()
	confident := &models.Classification{Type: models.RelationshipCausal, Confidence: 0.9, Source: "primary"}
	unsure := &models.Classification{Type: models.RelationshipCausal, Confidence: 0.2, Source: "primary"}
	backup := &models.Classification{Type: models.RelationshipTemporal, Confidence: 0.5, Source: "backup"}

	tests := []struct {
		name          string
		primary       *fixedClassifier
		wantSource    string
		wantFallbacks int
	}{
		{name: "confident primary", primary: &fixedClassifier{verdict: confident}, wantSource: "primary"},
		{name: "primary error", primary: &fixedClassifier{err: models.ErrProviderTimeout}, wantSource: "backup", wantFallbacks: 1},
		{name: "low confidence", primary: &fixedClassifier{verdict: unsure}, wantSource: "backup", wantFallbacks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := &fixedClassifier{verdict: backup}
			classifier := NewFallbackClassifier(tt.primary, fallback, 0.5)

			verdict, err := classifier.Classify(context.Background(), &events[0], &events[1])
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, verdict.Source)
			assert.Equal(t, 1, tt.primary.calls)
			assert.Equal(t, tt.wantFallbacks, fallback.calls)
		})
	}
}

func TestFallbackClassifierWithHeuristic(t *testing.T) {
	events := scenarioEvents()
	classifier := NewFallbackClassifier(
		NewLLMClassifier(&scriptedCompleter{err: errors.New("rate limited")}),
		NewHeuristicClassifier(30),
		0.5,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	verdict, err := classifier.Classify(ctx, &events[0], &events[1])
	require.NoError(t, err)
	assert.Equal(t, models.RelationshipTemporal, verdict.Type)
	assert.Equal(t, SourceHeuristic, verdict.Source)
}
