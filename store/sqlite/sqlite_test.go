package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfp/sales-analysis/sales"
	"github.com/rfp/sales-analysis/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: A session with the default state
	st := &sales.SelectionState{Chain: "A", Capacity: "10mg", Columns: []string{"chain", "sales"}}
	require.NoError(t, s.Create(ctx, "s1", st))

	// WHEN: A pick is saved
	sku, desc := "1", "Vit C: 500mg"
	st.SKU, st.Description = &sku, &desc
	require.NoError(t, s.Save(ctx, "s1", st))

	// THEN: It round-trips through the database
	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, st, got)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Delete(ctx, "s1"))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_UnresolvedStateStaysNil(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Create(ctx, "s1", &sales.SelectionState{Chain: "A", Columns: []string{}}))
	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got.SKU)
	assert.Nil(t, got.Description)
	assert.False(t, got.Resolved())
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Create(ctx, "s1", &sales.SelectionState{}))
	assert.ErrorIs(t, s.Create(ctx, "s1", &sales.SelectionState{}), sales.ErrSessionExists)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, sales.ErrSessionNotFound)
	assert.ErrorIs(t, s.Save(ctx, "missing", &sales.SelectionState{}), sales.ErrSessionNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), sales.ErrSessionNotFound)
}

func TestStore_FileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, "s1", &sales.SelectionState{Chain: "B"}))
	require.NoError(t, s.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Chain)
}
