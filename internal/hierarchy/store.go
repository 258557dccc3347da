// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hierarchy persists the course tree: nodes, their append-only
// version history, and slide components, in a SQLite database.
//
// Every mutation runs inside a unit of work (Store.Update) so a caller can
// group several operations and have them commit or roll back together.
package hierarchy

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/course-engine/pkg/types"
)

const defaultDBPath = "content/index/course.db"

// Store manages the hierarchy SQLite database.
type Store struct {
	db    *sql.DB
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// Open opens or creates the database at cfg.Path and creates the schema if
// it does not exist.
func Open(cfg types.StoreConfig, logger zerolog.Logger) (*Store, error) {
	dbPath := cfg.Path
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:    db,
		log:   logger.With().Str("component", "hierarchy").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			parent_id TEXT REFERENCES nodes(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			node_number TEXT NOT NULL DEFAULT '',
			display_order INTEGER NOT NULL DEFAULT 0,
			path TEXT NOT NULL UNIQUE,
			ordinal INTEGER NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, display_order)`,
		`CREATE TABLE IF NOT EXISTS versions (
			id TEXT PRIMARY KEY,
			node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			format TEXT NOT NULL,
			version_number INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (node_id, version_number)
		)`,
		`CREATE TABLE IF NOT EXISTS components (
			id TEXT PRIMARY KEY,
			slide_node_id TEXT NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
			component_type TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			display_order INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_components_slide ON components(slide_node_id, display_order)`,
		`CREATE TABLE IF NOT EXISTS import_status (
			source_file TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			course_id TEXT NOT NULL,
			imported_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// queryer is the subset of *sql.DB and *sql.Tx the operations need.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is a unit of work against the store. Operations on a Tx from Update
// commit together; a Tx from View only reads.
type Tx struct {
	ctx   context.Context
	q     queryer
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// Update runs fn in a transaction. The transaction commits when fn returns
// nil and rolls back otherwise, leaving the store unchanged.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(s.tx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// View runs read-only fn against the database.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	return fn(s.tx(ctx, s.db))
}

func (s *Store) tx(ctx context.Context, q queryer) *Tx {
	return &Tx{ctx: ctx, q: q, log: s.log, now: s.now, newID: s.newID}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
