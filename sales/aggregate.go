package sales

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTHLY AGGREGATION
// =============================================================================

// MonthlyValue is anything that can be grouped by month and summed.
type MonthlyValue interface {
	MonthKey() Month
	// SalesValue returns ok=false for a missing value.
	SalesValue() (decimal.Decimal, bool)
}

// MonthlyTotal is the summed sales of one month.
type MonthlyTotal struct {
	Month Month
	Sales decimal.Decimal
}

func (t MonthlyTotal) MonthKey() Month                     { return t.Month }
func (t MonthlyTotal) SalesValue() (decimal.Decimal, bool) { return t.Sales, true }

// Aggregate groups rows by month and sums their sales, ascending by month.
// Missing values contribute nothing; a month whose values are all missing
// totals zero. Months without rows are omitted, not zero-filled.
// Aggregating the output again returns the same series.
func Aggregate[T MonthlyValue](rows []T) []MonthlyTotal {
	sums := make(map[Month]decimal.Decimal)
	for _, r := range rows {
		m := r.MonthKey()
		sum := sums[m]
		if v, ok := r.SalesValue(); ok {
			sum = sum.Add(v)
		}
		sums[m] = sum
	}

	out := make([]MonthlyTotal, 0, len(sums))
	for m, s := range sums {
		out = append(out, MonthlyTotal{Month: m, Sales: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// Total sums a series.
func Total(series []MonthlyTotal) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range series {
		sum = sum.Add(t.Sales)
	}
	return sum
}
