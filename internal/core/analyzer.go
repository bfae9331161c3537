// ABOUTME: Analyzer classifies candidate pairs and persists cross references
// ABOUTME: Candidates are semantic neighbors plus temporal neighbors of an event
package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/harper/lifeline/internal/models"
)

// DefaultCandidateLimit bounds semantic candidates per analyzed event
const DefaultCandidateLimit = 50

// AnalyzerConfig holds analysis thresholds
type AnalyzerConfig struct {
	MinConfidence  float64
	AdjacentDays   int
	CandidateLimit int
	Workers        int
}

// Analyzer detects and stores relationships between events
type Analyzer struct {
	search     *SimilaritySearch
	events     EventSource
	xrefs      CrossReferenceRepository
	classifier Classifier
	cfg        AnalyzerConfig
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(search *SimilaritySearch, events EventSource, xrefs CrossReferenceRepository, classifier Classifier, cfg AnalyzerConfig) *Analyzer {
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = DefaultCandidateLimit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Analyzer{
		search:     search,
		events:     events,
		xrefs:      xrefs,
		classifier: classifier,
		cfg:        cfg,
	}
}

// AnalyzeResult reports the outcome of analyzing one event
type AnalyzeResult struct {
	EventID      string `json:"event_id"`
	Candidates   int    `json:"candidates"`
	CreatedCount int    `json:"created_count"`
}

// AnalyzeEvent classifies eventID against its candidates and upserts every
// verdict meeting the minimum confidence
func (a *Analyzer) AnalyzeEvent(ctx context.Context, eventID string, threshold float64) (*AnalyzeResult, error) {
	source, err := a.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	all, err := a.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return a.analyze(ctx, source, indexEvents(all), threshold, nil)
}

// analyze classifies source against its candidates. When pairs is non-nil,
// pairs already claimed by another event in the same run are skipped.
func (a *Analyzer) analyze(ctx context.Context, source *models.Event, timeline *eventIndex, threshold float64, pairs *pairSet) (*AnalyzeResult, error) {
	candidates, err := a.candidates(ctx, source, timeline, threshold)
	if err != nil {
		return nil, err
	}

	result := &AnalyzeResult{EventID: source.ID, Candidates: len(candidates)}
	for _, other := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if pairs != nil && !pairs.claim(source.ID, other.ID) {
			continue
		}

		verdict, err := a.classifier.Classify(ctx, source, other)
		if err != nil {
			return result, fmt.Errorf("failed to classify (%s, %s): %w", source.ID, other.ID, err)
		}
		if verdict.Confidence < a.cfg.MinConfidence {
			continue
		}
		if _, err := a.xrefs.Upsert(ctx, source.ID, other.ID, verdict.Type, verdict.Confidence, verdict.Reasoning); err != nil {
			return result, err
		}
		result.CreatedCount++
	}
	return result, nil
}

// candidates returns semantic neighbors at threshold followed by any
// temporal neighbors not already included
func (a *Analyzer) candidates(ctx context.Context, source *models.Event, timeline *eventIndex, threshold float64) ([]*models.Event, error) {
	seen := map[string]bool{source.ID: true}
	var out []*models.Event

	similar, err := a.search.FindSimilar(ctx, source.ID, threshold, a.cfg.CandidateLimit)
	switch {
	case errors.Is(err, models.ErrNotFound):
		log.Printf("[Analyzer] %s has no embedding, using temporal candidates only", source.ID)
	case err != nil:
		return nil, err
	}
	for _, s := range similar {
		if e := timeline.byID[s.EventID]; e != nil && !seen[e.ID] {
			seen[e.ID] = true
			out = append(out, e)
		}
	}

	for _, e := range timeline.neighbors(source, a.cfg.AdjacentDays) {
		if !seen[e.ID] {
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	return out, nil
}

// TimelineOptions controls a full-timeline run
type TimelineOptions struct {
	Workers int
	// ResumeAfter skips every event up to and including this id in analysis order
	ResumeAfter string
	Progress    ProgressFunc
}

// TimelineReport summarizes a full-timeline run
type TimelineReport struct {
	TotalEvents int `json:"total_events"`
	Processed   int `json:"processed"`
	// TotalReferences counts pairs written in this run; each pair is classified once
	TotalReferences int         `json:"total_references"`
	Errors          []ItemError `json:"errors,omitempty"`
	// ResumeAfter is the last event id of the completed prefix, for resuming a cancelled run
	ResumeAfter string        `json:"resume_after,omitempty"`
	Incomplete  bool          `json:"incomplete,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// AnalyzeFullTimeline analyzes every event in (start_date, id) order.
// One event's failure is recorded and the run continues. On cancellation no
// new provider calls start, committed references stay, and ctx.Err() is
// returned with the partial report.
func (a *Analyzer) AnalyzeFullTimeline(ctx context.Context, threshold float64, opts TimelineOptions) (*TimelineReport, error) {
	start := time.Now()
	all, err := a.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	timeline := indexEvents(all)

	ids := make([]string, 0, len(all))
	for _, e := range all {
		ids = append(ids, e.ID)
	}
	if opts.ResumeAfter != "" {
		pos := -1
		for i, id := range ids {
			if id == opts.ResumeAfter {
				pos = i
				break
			}
		}
		if pos < 0 {
			return nil, fmt.Errorf("%w: resume event %s", models.ErrNotFound, opts.ResumeAfter)
		}
		ids = ids[pos+1:]
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = a.cfg.Workers
	}

	var created atomicCounter
	pairs := newPairSet()
	result := runBatch(ctx, "Analyzer", ids, workers, opts.Progress, func(ctx context.Context, id string) error {
		res, err := a.analyze(ctx, timeline.byID[id], timeline, threshold, pairs)
		if res != nil {
			created.add(res.CreatedCount)
		}
		return err
	})

	report := &TimelineReport{
		TotalEvents:     len(all),
		Processed:       result.attempted,
		TotalReferences: created.load(),
		Errors:          result.errors,
		Duration:        time.Since(start),
	}
	if result.prefix > 0 {
		report.ResumeAfter = ids[result.prefix-1]
	} else {
		report.ResumeAfter = opts.ResumeAfter
	}

	log.Printf("[Analyzer] Processed %d/%d events, %d references, %d errors in %v",
		report.Processed, len(ids), report.TotalReferences, len(report.Errors), report.Duration.Round(time.Millisecond))

	if ctx.Err() != nil {
		report.Incomplete = true
		return report, ctx.Err()
	}
	return report, nil
}
