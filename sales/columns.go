package sales

import (
	"fmt"
)

// Column identifies one displayable field of a SalesRecord.
type Column string

const (
	ColChain        Column = "chain"
	ColEngineID     Column = "engine_id"
	ColPharmacyID   Column = "pharmacy_id"
	ColSKU          Column = "sku"
	ColCost         Column = "cost"
	ColPharmacyName Column = "pharmacy_name"
	ColDescription  Column = "description"
	ColABCDClass    Column = "abcd_class"
	ColPVD          Column = "pvd"
	ColInventory    Column = "inventory"
	ColSales30d     Column = "sales_30d"
	ColSales90d     Column = "sales_90d"
	ColCapacity     Column = "capacity"
	ColMonth        Column = "month"
	ColSales        Column = "sales"
)

// AvailableColumns lists every column in display order.
var AvailableColumns = []Column{
	ColChain, ColEngineID, ColPharmacyID, ColSKU, ColCost, ColPharmacyName,
	ColDescription, ColABCDClass, ColPVD, ColInventory, ColSales30d,
	ColSales90d, ColCapacity, ColMonth, ColSales,
}

// DefaultColumns are visible until the user changes them.
var DefaultColumns = []Column{ColChain, ColDescription, ColMonth, ColSales}

// ParseColumns validates column names. Duplicates are dropped.
func ParseColumns(names []string) ([]Column, error) {
	out := make([]Column, 0, len(names))
	seen := make(map[Column]bool)
	for _, n := range names {
		c := Column(n)
		if !c.Valid() {
			return nil, &ValueError{Field: "column", Value: n, Err: ErrUnknownColumn}
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// Valid reports whether c is a known column.
func (c Column) Valid() bool {
	for _, a := range AvailableColumns {
		if a == c {
			return true
		}
	}
	return false
}

// Value renders the cell of r for column c.
func (c Column) Value(r SalesRecord) string {
	switch c {
	case ColChain:
		return r.Chain
	case ColEngineID:
		return r.EngineID
	case ColPharmacyID:
		return r.PharmacyID
	case ColSKU:
		return r.SKU
	case ColCost:
		return r.Cost
	case ColPharmacyName:
		return r.PharmacyName
	case ColDescription:
		return r.Description
	case ColABCDClass:
		return r.ABCDClass
	case ColPVD:
		return r.PVD
	case ColInventory:
		return r.Inventory
	case ColSales30d:
		return r.Sales30d
	case ColSales90d:
		return r.Sales90d
	case ColCapacity:
		return r.Capacity
	case ColMonth:
		return r.Month.String()
	case ColSales:
		if !r.Sales.Valid {
			return ""
		}
		return r.Sales.Decimal.String()
	default:
		panic(fmt.Sprintf("sales: unhandled column %q", string(c)))
	}
}

// Table is a projection of records onto a set of columns.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Project renders records as a table with the given columns.
func Project(records []SalesRecord, columns []Column) Table {
	t := Table{Columns: columns, Rows: make([][]string, 0, len(records))}
	for _, r := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = c.Value(r)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func columnNames(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c)
	}
	return out
}

func hasColumn(cols []Column, c Column) bool {
	for _, x := range cols {
		if x == c {
			return true
		}
	}
	return false
}
