// Package store provides the SQLite persistence layer for the science
// pipeline: analyzed attributes per image, the external-tool cost ledger,
// and batch jobs with per-item status.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Schema contains the complete DDL for the pipeline tables.
const Schema = `
-- Analyzed attributes: one row per (image, key), replaced wholesale on
-- every re-analysis of the same image.
CREATE TABLE IF NOT EXISTS image_attributes (
    image_id   TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      REAL,
    confidence REAL NOT NULL DEFAULT 1.0,
    source     TEXT NOT NULL DEFAULT '',
    note       TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    PRIMARY KEY (image_id, key)
);
CREATE INDEX IF NOT EXISTS idx_attributes_key ON image_attributes(key);

-- Ledger of external tool usage (VLM calls). Generic on purpose so future
-- tools can log here too.
CREATE TABLE IF NOT EXISTS tool_usage (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    tool_name  TEXT NOT NULL,
    provider   TEXT NOT NULL,
    model_name TEXT NOT NULL,
    cost_usd   REAL NOT NULL DEFAULT 0,
    meta       TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_tool ON tool_usage(tool_name);
CREATE INDEX IF NOT EXISTS idx_usage_provider ON tool_usage(provider);

-- Batch jobs track only aggregate progress and a short error summary;
-- per-image details live in batch_job_items.
CREATE TABLE IF NOT EXISTS batch_jobs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    status          TEXT NOT NULL DEFAULT 'pending',
    total_items     INTEGER NOT NULL DEFAULT 0,
    completed_items INTEGER NOT NULL DEFAULT 0,
    failed_items    INTEGER NOT NULL DEFAULT 0,
    error_summary   TEXT NOT NULL DEFAULT '',
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON batch_jobs(status);

CREATE TABLE IF NOT EXISTS batch_job_items (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id        INTEGER NOT NULL,
    image_path    TEXT NOT NULL,
    image_id      TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'pending',
    error_message TEXT NOT NULL DEFAULT '',
    created_at    INTEGER NOT NULL,
    updated_at    INTEGER NOT NULL,
    FOREIGN KEY (job_id) REFERENCES batch_jobs(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_items_job ON batch_job_items(job_id);
`

// Store is the pipeline database handle. It is safe for concurrent use;
// batch workers share one Store and SQLite serializes writers via the WAL
// busy timeout.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the SQLite database at path, applies the
// production pragmas and the pipeline schema. Parent directories are
// created as needed.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{DB: db}, nil
}

// OpenMemory opens an in-memory database for testing. MaxOpenConns is
// pinned to 1 because each connection to ":memory:" would otherwise see a
// separate database. Cleanup is registered on t.
func OpenMemory(t testing.TB) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("store.OpenMemory: %v", err)
	}
	s.DB.SetMaxOpenConns(1)
	t.Cleanup(func() { s.Close() })
	return s
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
