package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfp/sales-analysis/sales"
	"github.com/rfp/sales-analysis/sales/store"
)

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	// GIVEN: A fresh session
	st := &sales.SelectionState{Chain: "A", Capacity: "10mg", Columns: []string{"chain"}}
	require.NoError(t, m.Create(ctx, "s1", st))
	assert.ErrorIs(t, m.Create(ctx, "s1", st), sales.ErrSessionExists)

	// WHEN: The caller mutates its copy without saving
	st.Chain = "B"

	// THEN: The stored state is unaffected
	got, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Chain)

	// Save persists, Delete removes.
	sku := "1"
	got.SKU = &sku
	require.NoError(t, m.Save(ctx, "s1", got))
	got, err = m.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got.SKU)
	assert.Equal(t, "1", *got.SKU)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "s1"))
	assert.Equal(t, 0, m.Len())
}

func TestMemory_UnknownSession(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	_, err := m.Get(ctx, "nope")
	assert.ErrorIs(t, err, sales.ErrSessionNotFound)
	assert.ErrorIs(t, m.Save(ctx, "nope", &sales.SelectionState{}), sales.ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "nope"), sales.ErrSessionNotFound)
}
