package sales_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfp/sales-analysis/sales"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func rec(chain, sku, desc, capacity string, month sales.Month, v int64) sales.SalesRecord {
	return sales.SalesRecord{
		Chain:       chain,
		SKU:         sku,
		Description: desc,
		Capacity:    capacity,
		Month:       month,
		Sales:       sales.KnownSales(v),
	}
}

var (
	jan = sales.NewMonth(2024, time.January)
	feb = sales.NewMonth(2024, time.February)
	mar = sales.NewMonth(2024, time.March)
)

func newReconciler(t *testing.T, records ...sales.SalesRecord) *sales.Reconciler {
	t.Helper()
	ds, err := sales.NewDataset(records)
	require.NoError(t, err)
	return sales.NewReconciler(ds)
}

func aspirinDataset(t *testing.T) *sales.Reconciler {
	return newReconciler(t,
		rec("A", "1", "Aspirin", "10mg", jan, 10),
		rec("B", "1", "Aspirin", "10mg", jan, 5),
	)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// =============================================================================
// RESOLUTION
// =============================================================================

func TestReconciler_AspirinScenario(t *testing.T) {
	// GIVEN: Aspirin sold in chains A and B
	// WHEN: Chain A is selected and "1: Aspirin" is picked
	// THEN: Only chain A's row is returned, membership names both chains

	rc := aspirinDataset(t)
	st := rc.DefaultState()
	require.NoError(t, rc.SelectChain(st, "A"))
	require.NoError(t, rc.ApplyToken(st, "1: Aspirin"))

	rows := rc.Filter(st)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Chain)
	assert.True(t, rows[0].Sales.Decimal.Equal(dec(10)))

	assert.Equal(t, []string{"A", "B"}, rc.ChainsWithSKU(*st.SKU))

	series := sales.Aggregate(rows)
	require.Len(t, series, 1)
	assert.Equal(t, jan, series[0].Month)
	assert.True(t, series[0].Sales.Equal(dec(10)))
}

func TestReconciler_TokenSplitsOnFirstColon(t *testing.T) {
	// GIVEN: A description that contains a colon
	// WHEN: Resolving the combined token
	// THEN: The SKU is everything before the first colon

	rc := newReconciler(t, rec("A", "77", "Vit C: 500mg", "x", jan, 1))
	st := rc.DefaultState()

	require.NoError(t, rc.ApplyToken(st, "77: Vit C: 500mg"))
	assert.Equal(t, "77", *st.SKU)
	assert.Equal(t, "Vit C: 500mg", *st.Description)

	// A bare description with a colon is read as a SKU pick.
	require.NoError(t, rc.ApplyToken(st, "Vit C: 500mg"))
	assert.Equal(t, "Vit C", *st.SKU)
	assert.Equal(t, "", *st.Description)
}

func TestReconciler_TaggedDescriptionWithColon(t *testing.T) {
	rc := newReconciler(t, rec("A", "77", "Vit C: 500mg", "x", jan, 1))
	st := rc.DefaultState()

	require.NoError(t, rc.Apply(st, sales.ByDescription("Vit C: 500mg")))
	assert.Equal(t, "77", *st.SKU)
	assert.Len(t, rc.Filter(st), 1)
}

func TestReconciler_BareDescription(t *testing.T) {
	rc := newReconciler(t,
		rec("A", "1", "Aspirin", "x", jan, 1),
		rec("A", "2", "Aspirin", "x", jan, 1),
	)
	st := rc.DefaultState()

	// Known description: last SKU wins.
	require.NoError(t, rc.ApplyToken(st, "Aspirin"))
	assert.Equal(t, "2", *st.SKU)
	assert.Equal(t, "Aspirin", *st.Description)

	// Unknown description: empty SKU.
	require.NoError(t, rc.ApplyToken(st, "Ibuprofen"))
	assert.Equal(t, "", *st.SKU)
	assert.Equal(t, "Ibuprofen", *st.Description)
	assert.Empty(t, rc.Filter(st))

	// Membership lines are hidden while the SKU is empty.
	v, err := rc.View(st)
	require.NoError(t, err)
	assert.False(t, v.ShowMembership)
	assert.Empty(t, v.SKUChains)
	assert.True(t, v.Empty)
}

func TestReconciler_UnknownSKUHasEmptyDescription(t *testing.T) {
	rc := aspirinDataset(t)
	sku, desc, err := rc.Resolve(sales.BySKU("999"))
	require.NoError(t, err)
	assert.Equal(t, "999", sku)
	assert.Equal(t, "", desc)
}

func TestReconciler_InvalidSelection(t *testing.T) {
	rc := aspirinDataset(t)
	st := rc.DefaultState()

	err := rc.Apply(st, sales.Selection{Kind: "barcode", Value: "1"})
	assert.ErrorIs(t, err, sales.ErrInvalidSelection)

	assert.False(t, st.Resolved(), "failed picks must not touch the state")
}

func TestReconciler_EmptyTokenIsNoOp(t *testing.T) {
	// GIVEN: A session with no pick
	rc := aspirinDataset(t)
	st := rc.DefaultState()

	// WHEN: An empty pick arrives
	require.NoError(t, rc.ApplyToken(st, ""))

	// THEN: Nothing changes
	assert.False(t, st.Resolved())

	// AND: An existing pick survives a later empty pick
	require.NoError(t, rc.ApplyToken(st, "1: Aspirin"))
	require.NoError(t, rc.ApplyToken(st, ""))
	assert.Equal(t, "1", *st.SKU)
	assert.Equal(t, "Aspirin", *st.Description)

	_, err := sales.ParseToken("")
	assert.ErrorIs(t, err, sales.ErrInvalidSelection)
}

// =============================================================================
// FILTERING & MEMBERSHIP
// =============================================================================

func TestReconciler_UnresolvedStateFiltersNothing(t *testing.T) {
	rc := aspirinDataset(t)
	st := rc.DefaultState()

	assert.Equal(t, "A", st.Chain)
	assert.Equal(t, "10mg", st.Capacity)
	assert.Nil(t, st.SKU)
	assert.Empty(t, rc.Filter(st))
}

func TestReconciler_FilterRequiresAllThreeMatches(t *testing.T) {
	// GIVEN: SKU 1 carries two descriptions in the file
	rc := newReconciler(t,
		rec("A", "1", "Aspirin", "x", jan, 1),
		rec("A", "1", "Aspirin 100", "x", feb, 2),
		rec("A", "2", "Aspirin 100", "x", mar, 3),
	)
	st := rc.DefaultState()

	// WHEN: Picking SKU 1 (last description wins: "Aspirin 100")
	require.NoError(t, rc.Apply(st, sales.BySKU("1")))

	// THEN: Only the row with both SKU 1 and "Aspirin 100" matches
	rows := rc.Filter(st)
	require.Len(t, rows, 1)
	assert.Equal(t, feb, rows[0].Month)
}

func TestReconciler_MembershipIgnoresChainFilter(t *testing.T) {
	rc := newReconciler(t,
		rec("A", "1", "Aspirin", "x", jan, 1),
		rec("B", "2", "Ibuprofen", "x", jan, 1),
		rec("C", "1", "Aspirin", "x", jan, 1),
		rec("B", "3", "Aspirin", "x", jan, 1),
	)
	st := rc.DefaultState()
	require.NoError(t, rc.SelectChain(st, "B"))
	require.NoError(t, rc.ApplyToken(st, "1: Aspirin"))

	assert.Empty(t, rc.Filter(st))
	assert.Equal(t, []string{"A", "C"}, rc.ChainsWithSKU("1"))
	assert.Equal(t, []string{"A", "C", "B"}, rc.ChainsWithDescription("Aspirin"))
}

func TestReconciler_SelectUnknownChainOrCapacity(t *testing.T) {
	rc := aspirinDataset(t)
	st := rc.DefaultState()

	err := rc.SelectChain(st, "Z")
	assert.ErrorIs(t, err, sales.ErrUnknownChain)
	assert.True(t, sales.IsClientError(err))
	assert.Equal(t, "A", st.Chain)

	err = rc.SelectCapacity(st, "1kg")
	assert.ErrorIs(t, err, sales.ErrUnknownCapacity)
}

// =============================================================================
// VIEW
// =============================================================================

func TestReconciler_ViewEmptyState(t *testing.T) {
	rc := aspirinDataset(t)
	v, err := rc.View(rc.DefaultState())
	require.NoError(t, err)

	assert.True(t, v.Empty)
	assert.Equal(t, sales.NoDataMessage, v.Message)
	assert.False(t, v.ShowMembership)
	assert.Empty(t, v.Table.Rows)
	assert.Empty(t, v.Series[sales.SeriesSelection])

	// Chain, total and capacity series do not depend on the pick.
	require.Len(t, v.Series[sales.SeriesTotal], 1)
	assert.True(t, v.Series[sales.SeriesTotal][0].Sales.Equal(dec(15)))
	assert.True(t, v.Series[sales.SeriesChain][0].Sales.Equal(dec(10)))
	assert.True(t, v.Series[sales.SeriesCapacity][0].Sales.Equal(dec(15)))
}

func TestReconciler_ViewResolved(t *testing.T) {
	rc := aspirinDataset(t)
	st := rc.DefaultState()
	require.NoError(t, rc.ApplyToken(st, "1: Aspirin"))

	v, err := rc.View(st)
	require.NoError(t, err)

	assert.False(t, v.Empty)
	assert.True(t, v.ShowMembership)
	assert.Equal(t, []string{"A", "B"}, v.SKUChains)
	assert.Equal(t, []string{"A", "B"}, v.DescriptionChains)
	assert.Equal(t, []sales.Column{sales.ColChain, sales.ColDescription, sales.ColMonth, sales.ColSales}, v.Table.Columns)
	assert.Equal(t, [][]string{{"A", "Aspirin", "2024-01", "10"}}, v.Table.Rows)
	assert.Equal(t, "chain=A sku=1 description=Aspirin", v.Summary())
}

func TestReconciler_ViewHidesSelectionSeriesWithoutSalesColumn(t *testing.T) {
	rc := aspirinDataset(t)
	st := rc.DefaultState()
	require.NoError(t, rc.ApplyToken(st, "1: Aspirin"))
	require.NoError(t, rc.SelectColumns(st, []string{"sku", "month"}))

	v, err := rc.View(st)
	require.NoError(t, err)
	_, ok := v.Series[sales.SeriesSelection]
	assert.False(t, ok)
	assert.Equal(t, [][]string{{"1", "2024-01"}}, v.Table.Rows)
}

func TestReconciler_ViewRejectsUnknownColumn(t *testing.T) {
	rc := aspirinDataset(t)
	st := rc.DefaultState()
	st.Columns = []string{"chain", "margin"}

	_, err := rc.View(st)
	assert.ErrorIs(t, err, sales.ErrUnknownColumn)
}

func TestReconciler_Options(t *testing.T) {
	rc := newReconciler(t,
		rec("A", "1", "Aspirin", "10mg", jan, 1),
		rec("B", "2", "Ibuprofen", "20mg", jan, 1),
	)
	opts := rc.Options()

	assert.Equal(t, []string{"A", "B"}, opts.Chains)
	assert.Equal(t, []string{"10mg", "20mg"}, opts.Capacities)

	tokens := make([]string, len(opts.Candidates))
	for i, c := range opts.Candidates {
		tokens[i] = c.Token
	}
	assert.Equal(t, []string{"1: Aspirin", "2: Ibuprofen", "Aspirin", "Ibuprofen"}, tokens)
	assert.Equal(t, sales.BySKU("1"), opts.Candidates[0].Selection)
	assert.Equal(t, sales.ByDescription("Aspirin"), opts.Candidates[2].Selection)
}
