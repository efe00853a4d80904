/*
Package sqlite provides a SQLite-backed implementation of sales.SessionStore.

PURPOSE:
  Keeps one JSON-encoded SelectionState per dashboard session. The
  default database is ":memory:", so session state lives exactly as long
  as the process. A file path can be given for local debugging.

KEY TABLES:
  sessions: id, state_json, created_at, updated_at

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The connection pool is pinned to a
  single connection because every new connection to ":memory:" would
  open a fresh, empty database.

USAGE:
  store, err := sqlite.New(":memory:")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - sales/store.go: Interface definition
  - sales/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rfp/sales-analysis/sales"
)

// Store implements sales.SessionStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Per-session selection state
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		state_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SESSION STORE
// =============================================================================

// Create stores the initial state of a new session.
func (s *Store) Create(ctx context.Context, id sales.SessionID, st *sales.SelectionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stateJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, state_json, created_at, updated_at) VALUES (?, ?, ?, ?)",
		string(id), string(stateJSON), now, now,
	)
	if isConstraintViolation(err) {
		return sales.ErrSessionExists
	}
	return err
}

// Get returns the stored state of a session.
func (s *Store) Get(ctx context.Context, id sales.SessionID) (*sales.SelectionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stateJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT state_json FROM sessions WHERE id = ?",
		string(id),
	).Scan(&stateJSON)

	if err == sql.ErrNoRows {
		return nil, sales.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var st sales.SelectionState
	if err := json.Unmarshal([]byte(stateJSON), &st); err != nil {
		return nil, fmt.Errorf("decode state for session %s: %w", id, err)
	}
	return &st, nil
}

// Save replaces the state of an existing session.
func (s *Store) Save(ctx context.Context, id sales.SessionID, st *sales.SelectionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stateJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET state_json = ?, updated_at = ? WHERE id = ?",
		string(stateJSON), time.Now().UTC().Format(time.RFC3339), string(id),
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// Delete removes a session.
func (s *Store) Delete(ctx context.Context, id sales.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", string(id))
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Count returns the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sales.ErrSessionNotFound
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
