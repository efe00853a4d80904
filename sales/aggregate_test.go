package sales_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfp/sales-analysis/sales"
)

func TestAggregate_SortsAndSums(t *testing.T) {
	rows := []sales.SalesRecord{
		rec("A", "1", "x", "c", mar, 3),
		rec("A", "1", "x", "c", jan, 1),
		rec("B", "2", "y", "c", jan, 4),
		rec("A", "1", "x", "c", mar, 2),
	}

	got := sales.Aggregate(rows)

	require.Len(t, got, 2, "months without rows are omitted")
	assert.Equal(t, jan, got[0].Month)
	assert.True(t, got[0].Sales.Equal(dec(5)))
	assert.Equal(t, mar, got[1].Month)
	assert.True(t, got[1].Sales.Equal(dec(5)))
	assert.True(t, sales.Total(got).Equal(dec(10)))
}

func TestAggregate_MissingContributesNothing(t *testing.T) {
	// GIVEN: One valid row (10) and one row whose sales were "N/A"
	missing := rec("A", "1", "x", "c", jan, 0)
	missing.Sales = sales.MissingSales()

	// WHEN: Aggregating
	got := sales.Aggregate([]sales.SalesRecord{rec("A", "1", "x", "c", jan, 10), missing})

	// THEN: The month totals 10, not missing
	require.Len(t, got, 1)
	assert.True(t, got[0].Sales.Equal(dec(10)))
}

func TestAggregate_AllMissingMonthIsZero(t *testing.T) {
	missing := rec("A", "1", "x", "c", feb, 0)
	missing.Sales = sales.MissingSales()

	got := sales.Aggregate([]sales.SalesRecord{missing})
	require.Len(t, got, 1)
	assert.True(t, got[0].Sales.IsZero())
}

func TestAggregate_Idempotent(t *testing.T) {
	rows := []sales.SalesRecord{
		rec("A", "1", "x", "c", feb, 7),
		rec("A", "1", "x", "c", jan, 1),
		rec("A", "1", "x", "c", feb, 2),
	}

	once := sales.Aggregate(rows)
	twice := sales.Aggregate(once)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].Month, twice[i].Month)
		assert.True(t, once[i].Sales.Equal(twice[i].Sales))
	}
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, sales.Aggregate([]sales.SalesRecord{}))
}

func TestMonth_Text(t *testing.T) {
	m, err := sales.ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, mar, m)
	assert.Equal(t, "2024-04", m.AddMonths(1).String())

	var decoded sales.Month
	require.NoError(t, decoded.UnmarshalText([]byte("2024-01")))
	assert.Equal(t, jan, decoded)
	assert.Error(t, decoded.UnmarshalText([]byte("January")))
}
