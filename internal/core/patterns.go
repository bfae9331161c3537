// ABOUTME: PatternDetector runs batch analyses over the whole timeline
// ABOUTME: Recurring categories, temporal clusters, and era transitions
package core

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/harper/lifeline/internal/models"
)

const day = 24 * time.Hour

// PatternConfig holds pattern thresholds
type PatternConfig struct {
	MinCategorySupport int
	ClusterWindowDays  int
	ClusterMinEvents   int
	EraWindowDays      int
}

// PatternDetector analyzes the event set as a whole
type PatternDetector struct {
	events     EventSource
	eras       EraSource
	embeddings EmbeddingRepository
	provider   string
	model      string
	cfg        PatternConfig
}

// NewPatternDetector creates a detector. Cluster cohesion compares
// embeddings in the provider+model space only.
func NewPatternDetector(events EventSource, eras EraSource, embeddings EmbeddingRepository, provider, model string, cfg PatternConfig) *PatternDetector {
	return &PatternDetector{
		events:     events,
		eras:       eras,
		embeddings: embeddings,
		provider:   provider,
		model:      model,
		cfg:        cfg,
	}
}

// DetectRecurringCategories reports categories seen at least minSupport times
func (p *PatternDetector) DetectRecurringCategories(ctx context.Context, minSupport int) ([]models.CategoryPattern, error) {
	if minSupport <= 0 {
		return nil, fmt.Errorf("%w: min support must be positive", models.ErrValidation)
	}
	events, err := p.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	timeline := indexEvents(events)
	if len(timeline.ordered) == 0 {
		return []models.CategoryPattern{}, nil
	}

	first := timeline.ordered[0].StartDate
	last := timeline.ordered[len(timeline.ordered)-1].StartDate
	midpoint := first.Add(last.Sub(first) / 2)

	// Categories group case-insensitively and report their first-seen spelling
	groups := make(map[string][]*models.Event)
	labels := make(map[string]string)
	var order []string
	for _, e := range timeline.ordered {
		key := categoryKey(e.Category)
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
			labels[key] = strings.TrimSpace(e.Category)
		}
		groups[key] = append(groups[key], e)
	}

	patterns := []models.CategoryPattern{}
	for _, key := range order {
		members := groups[key]
		if len(members) < minSupport {
			continue
		}

		pattern := models.CategoryPattern{
			Category:     labels[key],
			Occurrences:  len(members),
			FirstSeen:    members[0].StartDate,
			LastSeen:     members[len(members)-1].StartDate,
			Distribution: make(map[string]int),
		}
		var earlier, later int
		for _, e := range members {
			pattern.EventIDs = append(pattern.EventIDs, e.ID)
			pattern.Distribution[e.StartDate.Format("2006-01")]++
			if e.StartDate.Before(midpoint) {
				earlier++
			} else {
				later++
			}
		}
		pattern.Trend = trend(earlier, later, last.Equal(first))
		patterns = append(patterns, pattern)
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		if patterns[i].Occurrences != patterns[j].Occurrences {
			return patterns[i].Occurrences > patterns[j].Occurrences
		}
		return patterns[i].Category < patterns[j].Category
	})
	return patterns, nil
}

func categoryKey(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

func trend(earlier, later int, zeroSpan bool) models.Trend {
	switch {
	case zeroSpan || earlier == later:
		return models.TrendStable
	case later > earlier:
		return models.TrendIncreasing
	default:
		return models.TrendDecreasing
	}
}

// DetectTemporalClusters finds runs where at least minEvents start within
// windowDays of each other. Overlapping qualifying windows merge.
func (p *PatternDetector) DetectTemporalClusters(ctx context.Context, windowDays, minEvents int) ([]models.TemporalCluster, error) {
	if windowDays <= 0 || minEvents <= 0 {
		return nil, fmt.Errorf("%w: window and min events must be positive", models.ErrValidation)
	}
	events, err := p.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	ordered := indexEvents(events).ordered
	window := time.Duration(windowDays) * day

	type span struct{ lo, hi int }
	var spans []span
	hi := 0
	for lo := range ordered {
		if hi < lo {
			hi = lo
		}
		for hi+1 < len(ordered) && ordered[hi+1].StartDate.Sub(ordered[lo].StartDate) < window {
			hi++
		}
		if hi-lo+1 < minEvents {
			continue
		}
		if n := len(spans); n > 0 && lo <= spans[n-1].hi {
			spans[n-1].hi = hi
		} else {
			spans = append(spans, span{lo: lo, hi: hi})
		}
	}

	clusters := make([]models.TemporalCluster, 0, len(spans))
	if len(spans) == 0 {
		return clusters, nil
	}

	vectors, err := p.spaceVectors(ctx)
	if err != nil {
		log.Printf("[Patterns] cohesion unavailable: %v", err)
		vectors = nil
	}

	for _, s := range spans {
		members := ordered[s.lo : s.hi+1]
		cluster := models.TemporalCluster{
			Start: members[0].StartDate,
			End:   members[0].End(),
		}
		for _, e := range members {
			cluster.MemberEventIDs = append(cluster.MemberEventIDs, e.ID)
			if end := e.End(); end.After(cluster.End) {
				cluster.End = end
			}
		}
		cluster.Theme = theme(members)
		cluster.Cohesion = cohesion(members, vectors)
		clusters = append(clusters, cluster)
	}
	return clusters, nil
}

// theme returns the most frequent category or tag, ties broken lexicographically
func theme(members []*models.Event) string {
	counts := make(map[string]int)
	for _, e := range members {
		if c := categoryKey(e.Category); c != "" {
			counts[c]++
		}
		seen := make(map[string]bool)
		for _, tag := range e.Tags {
			t := strings.ToLower(strings.TrimSpace(tag))
			if t != "" && !seen[t] {
				seen[t] = true
				counts[t]++
			}
		}
	}
	return mode(counts)
}

func mode(counts map[string]int) string {
	best, bestCount := "", 0
	for k, n := range counts {
		if n > bestCount || (n == bestCount && k < best) {
			best, bestCount = k, n
		}
	}
	return best
}

// cohesion is the mean pairwise cosine similarity of embedded members
func cohesion(members []*models.Event, vectors map[string][]float64) float64 {
	var embedded [][]float64
	for _, e := range members {
		if v, ok := vectors[e.ID]; ok {
			embedded = append(embedded, v)
		}
	}
	if len(embedded) < 2 {
		return 0
	}
	var total float64
	var pairs int
	for i := range embedded {
		for j := i + 1; j < len(embedded); j++ {
			total += Cosine(embedded[i], embedded[j])
			pairs++
		}
	}
	return total / float64(pairs)
}

func (p *PatternDetector) spaceVectors(ctx context.Context) (map[string][]float64, error) {
	if p.embeddings == nil {
		return nil, nil
	}
	list, err := p.embeddings.ListBySpace(ctx, p.provider, p.model)
	if err != nil {
		return nil, err
	}
	vectors := make(map[string][]float64, len(list))
	for _, emb := range list {
		vectors[emb.EventID] = emb.Vector
	}
	return vectors, nil
}

// DetectEraTransitions reports era boundaries where the dominant category
// in the windowDays before differs from the windowDays after
func (p *PatternDetector) DetectEraTransitions(ctx context.Context, windowDays int) ([]models.EraTransition, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: era window must be positive", models.ErrValidation)
	}
	eras, err := p.eras.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list eras: %w", err)
	}
	events, err := p.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	sort.SliceStable(eras, func(i, j int) bool {
		if !eras[i].StartDate.Equal(eras[j].StartDate) {
			return eras[i].StartDate.Before(eras[j].StartDate)
		}
		return eras[i].ID < eras[j].ID
	})

	window := time.Duration(windowDays) * day
	transitions := []models.EraTransition{}
	for i, era := range eras {
		boundary := era.StartDate
		before := make(map[string]int)
		after := make(map[string]int)
		var beforeCount, afterCount int

		for _, e := range events {
			category := categoryKey(e.Category)
			switch {
			case !e.StartDate.Before(boundary.Add(-window)) && e.StartDate.Before(boundary):
				beforeCount++
				if category != "" {
					before[category]++
				}
			case !e.StartDate.Before(boundary) && e.StartDate.Before(boundary.Add(window)):
				afterCount++
				if category != "" {
					after[category]++
				}
			}
		}

		from, to := mode(before), mode(after)
		if from == "" || to == "" || from == to {
			continue
		}

		transition := models.EraTransition{
			BoundaryDate:  boundary,
			ToEra:         era.Name,
			CategoryShift: models.CategoryShift{From: from, To: to},
			BeforeCount:   beforeCount,
			AfterCount:    afterCount,
		}
		if i > 0 {
			transition.FromEra = eras[i-1].Name
		}
		transitions = append(transitions, transition)
	}
	return transitions, nil
}

// DetectPatterns runs every analysis with the configured thresholds.
// A failing analysis is reported in Errors and never hides the others.
func (p *PatternDetector) DetectPatterns(ctx context.Context) (*models.PatternReport, error) {
	report := &models.PatternReport{
		CategoryPatterns: []models.CategoryPattern{},
		TemporalClusters: []models.TemporalCluster{},
		EraTransitions:   []models.EraTransition{},
	}

	if categories, err := p.DetectRecurringCategories(ctx, p.cfg.MinCategorySupport); err != nil {
		report.Errors = append(report.Errors, "recurring categories: "+err.Error())
	} else {
		report.CategoryPatterns = categories
	}

	if clusters, err := p.DetectTemporalClusters(ctx, p.cfg.ClusterWindowDays, p.cfg.ClusterMinEvents); err != nil {
		report.Errors = append(report.Errors, "temporal clusters: "+err.Error())
	} else {
		report.TemporalClusters = clusters
	}

	if transitions, err := p.DetectEraTransitions(ctx, p.cfg.EraWindowDays); err != nil {
		report.Errors = append(report.Errors, "era transitions: "+err.Error())
	} else {
		report.EraTransitions = transitions
	}

	for _, msg := range report.Errors {
		log.Printf("[Patterns] %s", msg)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}
