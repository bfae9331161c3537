// ABOUTME: SQLite database schema for lifeline storage
// ABOUTME: Creates embedding, cross-reference, and event-store adapter tables
package sqlite

// Schema contains all SQL statements for database initialization.
// Timestamps are stored as fixed-width RFC 3339 UTC text so lexical order is time order.
const Schema = `
-- Events mirrored from the external event store
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    transcript TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    start_date TEXT NOT NULL,
    end_date TEXT,
    tags TEXT NOT NULL DEFAULT '[]',
    people TEXT NOT NULL DEFAULT '[]',
    locations TEXT NOT NULL DEFAULT '[]',
    era_id TEXT,
    updated_at TEXT NOT NULL
);

-- Eras (named life phases)
CREATE TABLE IF NOT EXISTS eras (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT
);

-- One live embedding per event
CREATE TABLE IF NOT EXISTS event_embeddings (
    embedding_id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL UNIQUE,
    vector BLOB NOT NULL,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    dimension INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

-- Canonically ordered, typed relationships between events
CREATE TABLE IF NOT EXISTS cross_references (
    reference_id TEXT PRIMARY KEY,
    event_id_1 TEXT NOT NULL,
    event_id_2 TEXT NOT NULL,
    relationship_type TEXT NOT NULL,
    confidence_score REAL NOT NULL,
    analysis_details TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    CHECK (event_id_1 < event_id_2),
    CHECK (confidence_score >= 0 AND confidence_score <= 1),
    UNIQUE (event_id_1, event_id_2, relationship_type)
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_date, id);
CREATE INDEX IF NOT EXISTS idx_eras_start ON eras(start_date);
CREATE INDEX IF NOT EXISTS idx_embeddings_space ON event_embeddings(provider, model);
CREATE INDEX IF NOT EXISTS idx_xref_event1 ON cross_references(event_id_1);
CREATE INDEX IF NOT EXISTS idx_xref_event2 ON cross_references(event_id_2);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
