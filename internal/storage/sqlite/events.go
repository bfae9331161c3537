// ABOUTME: Event and era storage adapter for the external event store
// ABOUTME: Lists are ordered by (start_date, id), the stable analysis order
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/lifeline/internal/models"
)

// EventStore handles event persistence
type EventStore struct {
	db *DB
}

// NewEventStore creates a new EventStore
func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

// Save inserts or replaces an event
func (s *EventStore) Save(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		return fmt.Errorf("%w: event id is required", models.ErrValidation)
	}
	if event.StartDate.IsZero() {
		return fmt.Errorf("%w: event %s has no start date", models.ErrValidation, event.ID)
	}

	tags, err := encodeList(event.Tags)
	if err != nil {
		return err
	}
	people, err := encodeList(event.People)
	if err != nil {
		return err
	}
	locations, err := encodeList(event.Locations)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, transcript, category, start_date, end_date, tags, people, locations, era_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			transcript = excluded.transcript,
			category = excluded.category,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			tags = excluded.tags,
			people = excluded.people,
			locations = excluded.locations,
			era_id = excluded.era_id,
			updated_at = excluded.updated_at
	`, event.ID, event.Title, event.Description, event.Transcript, event.Category,
		formatTime(event.StartDate), nullTime(event.EndDate), tags, people, locations,
		nullString(event.EraID), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", event.ID, err)
	}
	return nil
}

// Get retrieves an event by id, or ErrNotFound
func (s *EventStore) Get(ctx context.Context, id string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, transcript, category, start_date, end_date, tags, people, locations, era_id
		FROM events WHERE id = ?
	`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: event %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// List returns every event ordered by start date then id
func (s *EventStore) List(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, transcript, category, start_date, end_date, tags, people, locations, era_id
		FROM events
		ORDER BY start_date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// Delete removes an event
func (s *EventStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		event                   models.Event
		start                   string
		end, eraID              sql.NullString
		tags, people, locations string
	)
	if err := row.Scan(&event.ID, &event.Title, &event.Description, &event.Transcript, &event.Category,
		&start, &end, &tags, &people, &locations, &eraID); err != nil {
		return nil, err
	}

	var err error
	if event.StartDate, err = parseTime(start); err != nil {
		return nil, err
	}
	if event.EndDate, err = parseNullTime(end); err != nil {
		return nil, err
	}
	if event.Tags, err = decodeList(tags); err != nil {
		return nil, err
	}
	if event.People, err = decodeList(people); err != nil {
		return nil, err
	}
	if event.Locations, err = decodeList(locations); err != nil {
		return nil, err
	}
	if eraID.Valid {
		event.EraID = eraID.String
	}
	return &event, nil
}

// EraStore handles era persistence
type EraStore struct {
	db *DB
}

// NewEraStore creates a new EraStore
func NewEraStore(db *DB) *EraStore {
	return &EraStore{db: db}
}

// Save inserts or replaces an era
func (s *EraStore) Save(ctx context.Context, era *models.Era) error {
	if era.ID == "" || era.StartDate.IsZero() {
		return fmt.Errorf("%w: era id and start date are required", models.ErrValidation)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO eras (id, name, start_date, end_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date
	`, era.ID, era.Name, formatTime(era.StartDate), nullTime(era.EndDate))
	if err != nil {
		return fmt.Errorf("failed to save era %s: %w", era.ID, err)
	}
	return nil
}

// List returns every era ordered by start date
func (s *EraStore) List(ctx context.Context) ([]models.Era, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, start_date, end_date FROM eras ORDER BY start_date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list eras: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var eras []models.Era
	for rows.Next() {
		var (
			era   models.Era
			start string
			end   sql.NullString
		)
		if err := rows.Scan(&era.ID, &era.Name, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan era: %w", err)
		}
		if era.StartDate, err = parseTime(start); err != nil {
			return nil, err
		}
		if era.EndDate, err = parseNullTime(end); err != nil {
			return nil, err
		}
		eras = append(eras, era)
	}
	return eras, rows.Err()
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}
