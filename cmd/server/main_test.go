package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfp/sales-analysis/sales"
)

func reportFixture(t *testing.T) *sales.Reconciler {
	t.Helper()
	jan := sales.NewMonth(2024, time.January)
	ds, err := sales.NewDataset([]sales.SalesRecord{
		{Chain: "A", SKU: "1", Description: "Aspirin", Capacity: "10mg", Month: jan, Sales: sales.KnownSales(10)},
		{Chain: "B", SKU: "1", Description: "Aspirin", Capacity: "10mg", Month: jan, Sales: sales.KnownSales(5)},
	})
	require.NoError(t, err)
	return sales.NewReconciler(ds)
}

func TestWriteReport_NoPick(t *testing.T) {
	rc := reportFixture(t)
	v, err := rc.View(rc.DefaultState())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeReport(&out, v))

	assert.Contains(t, out.String(), sales.NoDataMessage)
	assert.NotContains(t, out.String(), "found in chains")
	assert.Contains(t, out.String(), "Monthly sales (total)")
}

func TestWriteReport_Resolved(t *testing.T) {
	rc := reportFixture(t)
	st := rc.DefaultState()
	require.NoError(t, rc.ApplyToken(st, "1: Aspirin"))
	v, err := rc.View(st)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeReport(&out, v))

	s := out.String()
	assert.Contains(t, s, "Filtered data: chain=A sku=1 description=Aspirin")
	assert.Contains(t, s, "SKU 1 found in chains: A, B")
	assert.Contains(t, s, `Description "Aspirin" found in chains: A, B`)
	assert.Contains(t, s, "Monthly sales (selection)")
	assert.Regexp(t, `2024-01\s+15`, s)
}
