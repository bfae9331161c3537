// ABOUTME: Event and Era models mirrored from the external event store
// ABOUTME: Read-only inputs to the cross-reference and pattern engine
package models

import (
	"strings"
	"time"
)

// Event is a single life event as recorded by the event store
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Transcript  string     `json:"transcript,omitempty"`
	Category    string     `json:"category,omitempty"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	People      []string   `json:"people,omitempty"`
	Locations   []string   `json:"locations,omitempty"`
	EraID       string     `json:"era_id,omitempty"`
}

// End returns the end of the event's date range (StartDate when open-ended)
func (e *Event) End() time.Time {
	if e.EndDate != nil && e.EndDate.After(e.StartDate) {
		return *e.EndDate
	}
	return e.StartDate
}

// TextFields returns the event's embeddable text
func (e *Event) TextFields() TextFields {
	return TextFields{
		Title:       e.Title,
		Description: e.Description,
		Transcript:  e.Transcript,
	}
}

// TextFields holds the free-text parts of an event that feed embeddings
type TextFields struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
}

// TextSeparator joins populated text fields
const TextSeparator = "\n\n"

// Join concatenates the non-empty fields with TextSeparator
func (f TextFields) Join() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{f.Title, f.Description, f.Transcript} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, TextSeparator)
}

// Era is a named life phase
type Era struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// SharedValues returns the case-insensitive intersection of two string lists,
// preserving the spelling and order of a.
func SharedValues(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(b))
	for _, v := range b {
		seen[strings.ToLower(strings.TrimSpace(v))] = true
	}
	var shared []string
	used := make(map[string]bool)
	for _, v := range a {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || used[key] || !seen[key] {
			continue
		}
		used[key] = true
		shared = append(shared, v)
	}
	return shared
}
