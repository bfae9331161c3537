// ABOUTME: Relationship classification prompt and verdict parsing
// ABOUTME: Turns two events into a prompt and a JSON reply into a Classification
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/lifeline/internal/models"
)

// RelationshipSystemPrompt instructs the model to return a single JSON verdict
const RelationshipSystemPrompt = `You compare two events from one person's life timeline and decide how they relate.

Choose exactly one relationship type:
- causal: one event led to or caused the other
- thematic: both events share a subject, activity, or concern
- temporal: the events are related mainly by happening close together in time
- person: the events involve the same people
- location: the events happened in the same place
- other: no meaningful relationship

Return ONLY a JSON object with these fields:
{"type": "<one of the types above>", "confidence": <0.0 to 1.0>, "reasoning": "<one sentence>"}`

// RelationshipPrompt renders the user prompt for a pair of events
func RelationshipPrompt(a, b *models.Event) string {
	var sb strings.Builder
	sb.WriteString("Event A:\n")
	writeEvent(&sb, a)
	sb.WriteString("\nEvent B:\n")
	writeEvent(&sb, b)
	return sb.String()
}

func writeEvent(sb *strings.Builder, e *models.Event) {
	fmt.Fprintf(sb, "Title: %s\n", e.Title)
	if e.Description != "" {
		fmt.Fprintf(sb, "Description: %s\n", e.Description)
	}
	if e.Transcript != "" {
		fmt.Fprintf(sb, "Transcript: %s\n", truncateText(e.Transcript, 1500))
	}
	if e.Category != "" {
		fmt.Fprintf(sb, "Category: %s\n", e.Category)
	}
	fmt.Fprintf(sb, "Start: %s\n", e.StartDate.Format("2006-01-02"))
	if e.EndDate != nil {
		fmt.Fprintf(sb, "End: %s\n", e.EndDate.Format("2006-01-02"))
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(sb, "Tags: %s\n", strings.Join(e.Tags, ", "))
	}
	if len(e.People) > 0 {
		fmt.Fprintf(sb, "People: %s\n", strings.Join(e.People, ", "))
	}
	if len(e.Locations) > 0 {
		fmt.Fprintf(sb, "Locations: %s\n", strings.Join(e.Locations, ", "))
	}
}

// verdict is the JSON shape requested from the model
type verdict struct {
	Type       string   `json:"type"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// ParseVerdict decodes a model reply into a Classification.
// Markdown code fences around the JSON are tolerated.
func ParseVerdict(content string) (*models.Classification, error) {
	raw := stripCodeFence(content)

	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%w: relationship verdict is not JSON: %w", models.ErrParse, err)
	}

	relType := models.RelationshipType(strings.ToLower(strings.TrimSpace(v.Type)))
	if !relType.IsValid() {
		return nil, fmt.Errorf("%w: unknown relationship type %q", models.ErrParse, v.Type)
	}
	if v.Confidence == nil {
		return nil, fmt.Errorf("%w: relationship verdict has no confidence", models.ErrParse)
	}

	return &models.Classification{
		Type:       relType,
		Confidence: models.ClampConfidence(*v.Confidence),
		Reasoning:  strings.TrimSpace(v.Reasoning),
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncateText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
