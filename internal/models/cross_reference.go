// ABOUTME: CrossReference represents a typed relationship between two events
// ABOUTME: Pairs are canonicalized so (A,B) and (B,A) share one row per type
package models

import (
	"fmt"
	"time"
)

// RelationshipType classifies how two events relate
type RelationshipType string

const (
	RelationshipCausal   RelationshipType = "causal"
	RelationshipThematic RelationshipType = "thematic"
	RelationshipTemporal RelationshipType = "temporal"
	RelationshipPerson   RelationshipType = "person"
	RelationshipLocation RelationshipType = "location"
	RelationshipOther    RelationshipType = "other"
)

// RelationshipTypes lists every valid relationship type
var RelationshipTypes = []RelationshipType{
	RelationshipCausal,
	RelationshipThematic,
	RelationshipTemporal,
	RelationshipPerson,
	RelationshipLocation,
	RelationshipOther,
}

// IsValid reports whether t is one of the known relationship types
func (t RelationshipType) IsValid() bool {
	for _, known := range RelationshipTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CrossReference is a persisted relationship between two events
type CrossReference struct {
	ReferenceID      string           `json:"reference_id"`
	EventID1         string           `json:"event_id_1"`
	EventID2         string           `json:"event_id_2"`
	RelationshipType RelationshipType `json:"relationship_type"`
	ConfidenceScore  float64          `json:"confidence_score"`
	Reasoning        string           `json:"reasoning"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Related returns the endpoint of the reference that is not eventID
func (c *CrossReference) Related(eventID string) string {
	if c.EventID1 == eventID {
		return c.EventID2
	}
	return c.EventID1
}

// RelatedReference is a cross reference viewed from one of its endpoints
type RelatedReference struct {
	ReferenceID      string           `json:"reference_id"`
	RelatedEventID   string           `json:"related_event_id"`
	RelationshipType RelationshipType `json:"type"`
	Confidence       float64          `json:"confidence"`
	Reasoning        string           `json:"reasoning"`
	CreatedAt        time.Time        `json:"created_at"`
}

// CanonicalPair orders two event ids so the smaller one comes first.
// Identical or empty ids are rejected.
func CanonicalPair(a, b string) (string, string, error) {
	if a == "" || b == "" {
		return "", "", fmt.Errorf("%w: both event ids are required", ErrValidation)
	}
	if a == b {
		return "", "", fmt.Errorf("%w: cannot relate event %s to itself", ErrValidation, a)
	}
	if b < a {
		return b, a, nil
	}
	return a, b, nil
}

// Classification is a classifier's verdict for a pair of events
type Classification struct {
	Type       RelationshipType `json:"type"`
	Confidence float64          `json:"confidence"`
	Reasoning  string           `json:"reasoning"`
	Source     string           `json:"source,omitempty"`
}

// ClampConfidence limits c to [0, 1]
func ClampConfidence(c float64) float64 {
	if c < 0 || c != c {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
