// ABOUTME: Dataset loading for the event-store adapter tables
// ABOUTME: Reads YAML or JSON timelines of events and eras
package sqlite

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harper/lifeline/internal/models"
	"gopkg.in/yaml.v3"
)

// Dataset is an importable timeline. JSON is accepted as a YAML subset.
type Dataset struct {
	Version string        `yaml:"version" json:"version"`
	Events  []DatasetItem `yaml:"events" json:"events"`
	Eras    []DatasetEra  `yaml:"eras,omitempty" json:"eras,omitempty"`
}

// DatasetItem represents an event for import
type DatasetItem struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Transcript  string   `yaml:"transcript,omitempty" json:"transcript,omitempty"`
	Category    string   `yaml:"category,omitempty" json:"category,omitempty"`
	StartDate   string   `yaml:"start_date" json:"start_date"`
	EndDate     string   `yaml:"end_date,omitempty" json:"end_date,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	People      []string `yaml:"people,omitempty" json:"people,omitempty"`
	Locations   []string `yaml:"locations,omitempty" json:"locations,omitempty"`
	EraID       string   `yaml:"era_id,omitempty" json:"era_id,omitempty"`
}

// DatasetEra represents an era for import
type DatasetEra struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	StartDate string `yaml:"start_date" json:"start_date"`
	EndDate   string `yaml:"end_date,omitempty" json:"end_date,omitempty"`
}

// LoadDataset reads a dataset file
func LoadDataset(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	var data Dataset
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	return &data, nil
}

// ToModels converts the dataset to events and eras
func (d *Dataset) ToModels() ([]models.Event, []models.Era, error) {
	events := make([]models.Event, 0, len(d.Events))
	for _, item := range d.Events {
		start, err := ParseDate(item.StartDate)
		if err != nil {
			return nil, nil, fmt.Errorf("event %s: %w", item.ID, err)
		}
		end, err := parseOptionalDate(item.EndDate)
		if err != nil {
			return nil, nil, fmt.Errorf("event %s: %w", item.ID, err)
		}
		events = append(events, models.Event{
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Transcript:  item.Transcript,
			Category:    item.Category,
			StartDate:   start,
			EndDate:     end,
			Tags:        item.Tags,
			People:      item.People,
			Locations:   item.Locations,
			EraID:       item.EraID,
		})
	}

	eras := make([]models.Era, 0, len(d.Eras))
	for _, item := range d.Eras {
		start, err := ParseDate(item.StartDate)
		if err != nil {
			return nil, nil, fmt.Errorf("era %s: %w", item.ID, err)
		}
		end, err := parseOptionalDate(item.EndDate)
		if err != nil {
			return nil, nil, fmt.Errorf("era %s: %w", item.ID, err)
		}
		eras = append(eras, models.Era{ID: item.ID, Name: item.Name, StartDate: start, EndDate: end})
	}
	return events, eras, nil
}

// ImportEras saves every era in the dataset
func (s *Storage) ImportEras(ctx context.Context, eras []models.Era) error {
	for i := range eras {
		if err := s.eras.Save(ctx, &eras[i]); err != nil {
			return err
		}
	}
	return nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 timestamps
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q (want YYYY-MM-DD or RFC 3339)", models.ErrValidation, s)
	}
	return t.UTC(), nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
