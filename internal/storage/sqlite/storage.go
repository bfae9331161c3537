// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Opens one database and hands out the event, era, embedding and cross-reference stores
package sqlite

import (
	"fmt"
)

// Storage manages all persistent data for lifeline using SQLite
type Storage struct {
	db         *DB
	events     *EventStore
	eras       *EraStore
	embeddings *EmbeddingStore
	xrefs      *CrossReferenceStore
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:         db,
		events:     NewEventStore(db),
		eras:       NewEraStore(db),
		embeddings: NewEmbeddingStore(db),
		xrefs:      NewCrossReferenceStore(db),
	}
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database
func (s *Storage) DB() *DB { return s.db }

// Events returns the event store
func (s *Storage) Events() *EventStore { return s.events }

// Eras returns the era store
func (s *Storage) Eras() *EraStore { return s.eras }

// Embeddings returns the embedding store
func (s *Storage) Embeddings() *EmbeddingStore { return s.embeddings }

// CrossReferences returns the cross-reference store
func (s *Storage) CrossReferences() *CrossReferenceStore { return s.xrefs }
