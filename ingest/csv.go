/*
Package ingest loads the pivoted sales CSV into a sales.Dataset.

PURPOSE:
  Reads the file once at startup and coerces every cell into the shape
  the domain expects. Header matching is case-insensitive and accepts the
  original export headers (SUB_CADENA_NOMBRE, DESCRIPCION, Mes, Ventas,
  ...) as well as the column ids of the sales package.

COERCION RULES:
  - SKU: always text. Integral numbers are canonicalised: "123.0" and
    "0123" become "123".
  - Month: several date layouts are accepted, then truncated to month.
    Slash dates are month-first ("03/04/2024" is March) unless the first
    field cannot be a month.
    A row whose month cannot be parsed is DROPPED and logged.
  - Sales: a value that is not a number becomes MISSING (not zero).
  - Every other attribute is kept as trimmed text.
  - TABLA_VERDAD and unknown columns are ignored.

SEE ALSO:
  - sales/types.go: SalesRecord
  - cmd/server/main.go: Calls Load at startup
*/
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rfp/sales-analysis/sales"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidDelimiter is returned for a delimiter encoding/csv cannot use.
	ErrInvalidDelimiter = errors.New("invalid delimiter")
)

// ColumnError names the missing column.
type ColumnError struct {
	Column sales.Column
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v: %s (accepted headers: %s)",
		ErrMissingColumn, e.Column, strings.Join(headerAliases[e.Column], ", "))
}

func (e *ColumnError) Unwrap() error {
	return ErrMissingColumn
}

// RowError describes a dropped row.
type RowError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// =============================================================================
// HEADERS
// =============================================================================

// headerAliases maps each column to the headers it may appear under.
// Comparison is case-insensitive.
var headerAliases = map[sales.Column][]string{
	sales.ColChain:        {"SUB_CADENA_NOMBRE", "chain"},
	sales.ColEngineID:     {"ID_MOTOR", "engine_id"},
	sales.ColPharmacyID:   {"ID_FARMACIA", "pharmacy_id"},
	sales.ColSKU:          {"SKU"},
	sales.ColCost:         {"COSTO_RFP_SYS", "cost"},
	sales.ColPharmacyName: {"NOMBRE_FARMACIA", "pharmacy_name"},
	sales.ColDescription:  {"DESCRIPCION", "description"},
	sales.ColABCDClass:    {"ABCD_MOTOR", "abcd_class"},
	sales.ColPVD:          {"PVD_MOTOR", "pvd"},
	sales.ColInventory:    {"INVENTARIO_SUCURSAL", "inventory"},
	sales.ColSales30d:     {"VENTA_30_DIAS", "sales_30d"},
	sales.ColSales90d:     {"VENTA_90_DIAS", "sales_90d"},
	sales.ColCapacity:     {"capacity"},
	sales.ColMonth:        {"Mes", "month"},
	sales.ColSales:        {"Ventas", "sales"},
}

// RequiredColumns must be present in every file.
var RequiredColumns = []sales.Column{
	sales.ColChain, sales.ColSKU, sales.ColDescription,
	sales.ColCapacity, sales.ColMonth, sales.ColSales,
}

type headerIndex map[sales.Column]int

func indexHeader(header []string) (headerIndex, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := byName[h]; !dup {
			byName[h] = i
		}
	}

	idx := make(headerIndex)
	for col, aliases := range headerAliases {
		for _, a := range aliases {
			if i, ok := byName[strings.ToLower(a)]; ok {
				idx[col] = i
				break
			}
		}
	}

	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &ColumnError{Column: col}
		}
	}
	return idx, nil
}

func (h headerIndex) value(row []string, col sales.Column) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// =============================================================================
// LOADER
// =============================================================================

// Options controls parsing.
type Options struct {
	// Delimiter defaults to ','.
	Delimiter rune
	Logger    zerolog.Logger
}

// Report summarises one load.
type Report struct {
	Rows         int
	Loaded       int
	DroppedRows  []RowError
	MissingSales int
}

// Loader reads sales CSV files.
type Loader struct {
	opts Options
}

// NewLoader returns a Loader with opts.
func NewLoader(opts Options) (*Loader, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Delimiter == '"' || opts.Delimiter == '\r' || opts.Delimiter == '\n' ||
		opts.Delimiter == utf8.RuneError {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDelimiter, opts.Delimiter)
	}
	return &Loader{opts: opts}, nil
}

// LoadFile opens path and loads it.
func (l *Loader) LoadFile(path string) (*sales.Dataset, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, err
	}
	defer f.Close()

	ds, rep, err := l.Load(f)
	if err != nil {
		return nil, rep, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, rep, nil
}

// Load parses r into a Dataset.
func (l *Loader) Load(r io.Reader) (*sales.Dataset, Report, error) {
	cr := csv.NewReader(r)
	cr.Comma = l.opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var rep Report

	header, err := cr.Read()
	if err == io.EOF {
		return nil, rep, sales.ErrEmptyDataset
	}
	if err != nil {
		return nil, rep, fmt.Errorf("read header: %w", err)
	}
	idx, err := indexHeader(header)
	if err != nil {
		return nil, rep, err
	}

	var records []sales.SalesRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rep, fmt.Errorf("read row: %w", err)
		}
		if isBlank(row) {
			continue
		}
		rep.Rows++
		line, _ := cr.FieldPos(0)

		rec, missingSales, rowErr := l.parseRow(idx, row, line)
		if rowErr != nil {
			rep.DroppedRows = append(rep.DroppedRows, *rowErr)
			l.opts.Logger.Warn().
				Int("line", rowErr.Line).
				Str("field", rowErr.Field).
				Str("value", rowErr.Value).
				Msg("dropping row with unparseable value")
			continue
		}
		if missingSales {
			rep.MissingSales++
		}
		records = append(records, rec)
	}

	rep.Loaded = len(records)
	ds, err := sales.NewDataset(records)
	if err != nil {
		return nil, rep, err
	}

	l.opts.Logger.Info().
		Int("rows", rep.Rows).
		Int("loaded", rep.Loaded).
		Int("dropped", len(rep.DroppedRows)).
		Int("missing_sales", rep.MissingSales).
		Int("chains", len(ds.Chains())).
		Msg("sales dataset loaded")
	return ds, rep, nil
}

func (l *Loader) parseRow(idx headerIndex, row []string, line int) (sales.SalesRecord, bool, *RowError) {
	rawMonth := idx.value(row, sales.ColMonth)
	month, err := ParseMonth(rawMonth)
	if err != nil {
		return sales.SalesRecord{}, false, &RowError{Line: line, Field: string(sales.ColMonth), Value: rawMonth, Err: err}
	}

	salesValue := ParseSales(idx.value(row, sales.ColSales))

	rec := sales.SalesRecord{
		Chain:        idx.value(row, sales.ColChain),
		EngineID:     idx.value(row, sales.ColEngineID),
		PharmacyID:   idx.value(row, sales.ColPharmacyID),
		SKU:          NormalizeSKU(idx.value(row, sales.ColSKU)),
		Cost:         idx.value(row, sales.ColCost),
		PharmacyName: idx.value(row, sales.ColPharmacyName),
		Description:  idx.value(row, sales.ColDescription),
		ABCDClass:    idx.value(row, sales.ColABCDClass),
		PVD:          idx.value(row, sales.ColPVD),
		Inventory:    idx.value(row, sales.ColInventory),
		Sales30d:     idx.value(row, sales.ColSales30d),
		Sales90d:     idx.value(row, sales.ColSales90d),
		Capacity:     idx.value(row, sales.ColCapacity),
		Month:        month,
		Sales:        salesValue,
	}
	return rec, !salesValue.Valid, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// COERCION
// =============================================================================

// ErrUnparseableMonth is wrapped by RowError for a bad month cell.
var ErrUnparseableMonth = errors.New("unparseable month")

// Slash dates are month-first. Day-first is only tried when month-first
// fails, which happens when the first field is above 12.
var monthLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006/01",
	"01/02/2006",
	"02/01/2006",
}

// ParseMonth parses a date in any accepted layout and truncates it to
// its calendar month. Layouts are tried in order.
func ParseMonth(s string) (sales.Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sales.Month{}, ErrUnparseableMonth
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sales.MonthOf(t), nil
		}
	}
	return sales.Month{}, ErrUnparseableMonth
}

// ParseSales parses a sales cell. Anything that is not a number is missing.
func ParseSales(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// NormalizeSKU renders a SKU as text. Any cell that parses as an integral
// number is rewritten in canonical form ("123.0", "007" and "1e3" become
// "123", "7" and "1000"). Fractional numbers and non-numeric codes are
// kept verbatim.
func NormalizeSKU(s string) string {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	if d.IsInteger() {
		return d.String()
	}
	return s
}
