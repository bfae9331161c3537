// ABOUTME: Transient pattern-analysis and tag-suggestion results
// ABOUTME: Produced on demand and never persisted
package models

import "time"

// Trend describes how a category's frequency moves across the timeline
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// CategoryPattern reports a category that recurs across the timeline
type CategoryPattern struct {
	Category     string         `json:"category"`
	Occurrences  int            `json:"occurrences"`
	Trend        Trend          `json:"trend"`
	FirstSeen    time.Time      `json:"first_seen"`
	LastSeen     time.Time      `json:"last_seen"`
	Distribution map[string]int `json:"distribution"`
	EventIDs     []string       `json:"event_ids"`
}

// TemporalCluster is a dense run of events in time
type TemporalCluster struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	MemberEventIDs []string  `json:"member_event_ids"`
	Theme          string    `json:"theme"`
	Cohesion       float64   `json:"cohesion"`
}

// CategoryShift names the dominant category on either side of a boundary
type CategoryShift struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// EraTransition reports a change of dominant category at an era boundary
type EraTransition struct {
	BoundaryDate  time.Time     `json:"boundary_date"`
	FromEra       string        `json:"from_era,omitempty"`
	ToEra         string        `json:"to_era"`
	CategoryShift CategoryShift `json:"category_shift"`
	BeforeCount   int           `json:"before_count"`
	AfterCount    int           `json:"after_count"`
}

// PatternReport aggregates every batch analysis
type PatternReport struct {
	CategoryPatterns []CategoryPattern `json:"category_patterns"`
	TemporalClusters []TemporalCluster `json:"temporal_clusters"`
	EraTransitions   []EraTransition   `json:"era_transitions"`
	Errors           []string          `json:"errors,omitempty"`
}

// TagSuggestion is a ranked candidate tag for an event
type TagSuggestion struct {
	TagName            string   `json:"tag_name"`
	Confidence         float64  `json:"confidence"`
	SupportingEventIDs []string `json:"supporting_event_ids"`
}
