/*
store.go - Persistence interface for per-session selection state

PURPOSE:
  Each dashboard session owns one SelectionState. The store keeps it
  between HTTP interactions. State never outlives the process: the
  default SQLite database is ":memory:".

IMPLEMENTATIONS:
  - sales/store/memory.go: In-memory map (tests, dev)
  - store/sqlite/sqlite.go: SQLite table of JSON-encoded states

SEE ALSO:
  - selection.go: SelectionState
  - api/handlers.go: Session endpoints
*/
package sales

import "context"

// SessionID identifies one dashboard session.
type SessionID string

// SessionStore keeps SelectionState per session.
type SessionStore interface {
	// Create stores the initial state of a new session.
	Create(ctx context.Context, id SessionID, st *SelectionState) error

	// Get returns a copy of the state. ErrSessionNotFound if unknown.
	Get(ctx context.Context, id SessionID) (*SelectionState, error)

	// Save replaces the state. ErrSessionNotFound if unknown.
	Save(ctx context.Context, id SessionID, st *SelectionState) error

	// Delete removes the session. ErrSessionNotFound if unknown.
	Delete(ctx context.Context, id SessionID) error
}
