// Package store provides SessionStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/rfp/sales-analysis/sales"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	sessions map[sales.SessionID]*sales.SelectionState
}

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[sales.SessionID]*sales.SelectionState),
	}
}

// Create stores a copy of st under id.
func (m *Memory) Create(_ context.Context, id sales.SessionID, st *sales.SelectionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; ok {
		return sales.ErrSessionExists
	}
	m.sessions[id] = st.Clone()
	return nil
}

func (m *Memory) Get(_ context.Context, id sales.SessionID) (*sales.SelectionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.sessions[id]
	if !ok {
		return nil, sales.ErrSessionNotFound
	}
	return st.Clone(), nil
}

func (m *Memory) Save(_ context.Context, id sales.SessionID, st *sales.SelectionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return sales.ErrSessionNotFound
	}
	m.sessions[id] = st.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, id sales.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return sales.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
