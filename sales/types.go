/*
Package sales provides the domain core of the sales analysis dashboard.

PURPOSE:
  Holds the in-memory sales dataset and the logic that turns one ambiguous
  user pick (a SKU, a description, or the combined "sku: description"
  token) into a consistent selection, a filtered record subset, chain
  membership facts and monthly totals.

KEY CONCEPTS IN THIS FILE (types.go):
  - Month: calendar month, the aggregation key
  - SalesRecord: one row of the pivoted sales file
  - Sales values are decimal.NullDecimal: a non-numeric cell is MISSING,
    never zero

DESIGN PRINCIPLES:
  1. Immutability: a Dataset never changes after load
  2. Precision: sales are summed with decimal.Decimal
  3. Explicit state: the user's selection is a plain struct passed by
     pointer, never a hidden global

SEE ALSO:
  - dataset.go: Dataset and option lists
  - reconcile.go: Filter reconciler
  - aggregate.go: Monthly totals
*/
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTH - Calendar month (aggregation key)
// =============================================================================

// Month is a calendar month, stored as the first day of the month in UTC.
type Month struct {
	t time.Time
}

// MonthLayout is the textual form of a Month.
const MonthLayout = "2006-01"

// NewMonth returns the month containing year/month.
func NewMonth(year int, month time.Month) Month {
	return Month{t: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// MonthOf truncates t to its calendar month.
func MonthOf(t time.Time) Month {
	return NewMonth(t.Year(), t.Month())
}

// ParseMonth parses the "2006-01" form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, err
	}
	return MonthOf(t), nil
}

func (m Month) Time() time.Time         { return m.t }
func (m Month) Before(other Month) bool { return m.t.Before(other.t) }
func (m Month) AddMonths(n int) Month   { return Month{t: m.t.AddDate(0, n, 0)} }
func (m Month) String() string          { return m.t.Format(MonthLayout) }

// MarshalText encodes the month as "2006-01".
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes the "2006-01" form.
func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// =============================================================================
// SALES RECORD - One row of the pivoted sales file
// =============================================================================

// SalesRecord is one (pharmacy, SKU, month) row of the dataset.
// Passthrough attributes keep the raw text from the file.
type SalesRecord struct {
	Chain        string
	EngineID     string
	PharmacyID   string
	SKU          string
	Cost         string
	PharmacyName string
	Description  string
	ABCDClass    string
	PVD          string
	Inventory    string
	Sales30d     string
	Sales90d     string
	Capacity     string
	Month        Month
	Sales        decimal.NullDecimal
}

// MonthKey implements MonthlyValue.
func (r SalesRecord) MonthKey() Month { return r.Month }

// SalesValue implements MonthlyValue. ok is false when the cell was missing.
func (r SalesRecord) SalesValue() (decimal.Decimal, bool) {
	return r.Sales.Decimal, r.Sales.Valid
}

// KnownSales returns a present sales value.
func KnownSales(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// MissingSales returns the missing marker.
func MissingSales() decimal.NullDecimal {
	return decimal.NullDecimal{}
}
