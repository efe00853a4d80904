/*
reconcile.go - Filter reconciler

PURPOSE:
  Keeps Chain, Capacity, SKU and Description selections consistent. One
  pick from the combined picker resolves to a concrete (SKU, Description)
  pair; that pair plus the selected chain yields the filtered subset.

ALGORITHM:
  1. Lookup tables are built once per dataset (lookup.go).
  2. Resolve:
     - BySKU: description = SKU->Description[sku], "" if absent
     - ByDescription: sku = Description->SKU[desc], "" if absent
  3. Filter: chain == selected AND sku == resolved AND description ==
     resolved. Exact matches only. No pick yet means no rows.
  4. Chain membership is computed against the FULL dataset, never the
     chain-filtered subset, so it can name chains other than the
     selected one.

CONCURRENCY:
  A Reconciler only reads its Dataset and Lookup. All mutable state lives
  in the SelectionState the caller passes in.

SEE ALSO:
  - selection.go: Selection and SelectionState
  - aggregate.go: Monthly totals used by View
*/
package sales

import (
	"fmt"
)

// NoDataMessage is reported when a selection matches no rows.
const NoDataMessage = "no data for this selection"

// Reconciler resolves user picks against one Dataset.
type Reconciler struct {
	ds     *Dataset
	lookup *Lookup
	cands  []Candidate
}

// NewReconciler builds the lookup tables and the combined option list.
func NewReconciler(ds *Dataset) *Reconciler {
	l := BuildLookup(ds.Records())
	return &Reconciler{
		ds:     ds,
		lookup: l,
		cands:  l.Candidates(),
	}
}

// Dataset returns the underlying record set.
func (rc *Reconciler) Dataset() *Dataset { return rc.ds }

// Options lists every value a user can pick.
type Options struct {
	Chains     []string
	Capacities []string
	Candidates []Candidate
	Columns    []Column
	Defaults   []Column
}

// Options returns the picker contents.
func (rc *Reconciler) Options() Options {
	return Options{
		Chains:     rc.ds.Chains(),
		Capacities: rc.ds.Capacities(),
		Candidates: rc.cands,
		Columns:    AvailableColumns,
		Defaults:   DefaultColumns,
	}
}

// DefaultState returns the state of a fresh session: first chain, first
// capacity, no pick and the default columns.
func (rc *Reconciler) DefaultState() *SelectionState {
	st := &SelectionState{Columns: columnNames(DefaultColumns)}
	if chains := rc.ds.Chains(); len(chains) > 0 {
		st.Chain = chains[0]
	}
	if caps := rc.ds.Capacities(); len(caps) > 0 {
		st.Capacity = caps[0]
	}
	return st
}

// Resolve turns a pick into a (SKU, Description) pair. Absent lookups
// degrade to an empty string.
func (rc *Reconciler) Resolve(sel Selection) (sku, description string, err error) {
	if err := sel.Validate(); err != nil {
		return "", "", err
	}
	switch sel.Kind {
	case KindSKU:
		desc, _ := rc.lookup.DescriptionFor(sel.Value)
		return sel.Value, desc, nil
	default:
		s, _ := rc.lookup.SKUFor(sel.Value)
		return s, sel.Value, nil
	}
}

// Apply resolves sel and stores the pair in st.
func (rc *Reconciler) Apply(st *SelectionState, sel Selection) error {
	sku, desc, err := rc.Resolve(sel)
	if err != nil {
		return err
	}
	st.SKU = &sku
	st.Description = &desc
	return nil
}

// ApplyToken parses a combined picker token and applies it. An empty
// token means nothing was picked and leaves st unchanged.
func (rc *Reconciler) ApplyToken(st *SelectionState, token string) error {
	if token == "" {
		return nil
	}
	sel, err := ParseToken(token)
	if err != nil {
		return err
	}
	return rc.Apply(st, sel)
}

// SelectChain sets the active chain.
func (rc *Reconciler) SelectChain(st *SelectionState, chain string) error {
	if !rc.ds.HasChain(chain) {
		return &ValueError{Field: "chain", Value: chain, Err: ErrUnknownChain}
	}
	st.Chain = chain
	return nil
}

// SelectCapacity sets the active capacity.
func (rc *Reconciler) SelectCapacity(st *SelectionState, capacity string) error {
	if !rc.ds.HasCapacity(capacity) {
		return &ValueError{Field: "capacity", Value: capacity, Err: ErrUnknownCapacity}
	}
	st.Capacity = capacity
	return nil
}

// SelectColumns sets the visible columns.
func (rc *Reconciler) SelectColumns(st *SelectionState, names []string) error {
	cols, err := ParseColumns(names)
	if err != nil {
		return err
	}
	st.Columns = columnNames(cols)
	return nil
}

// Filter returns the rows matching the chain and the resolved pair.
func (rc *Reconciler) Filter(st *SelectionState) []SalesRecord {
	if !st.Resolved() {
		return nil
	}
	sku, desc := *st.SKU, *st.Description
	return rc.ds.Where(func(r SalesRecord) bool {
		return r.Chain == st.Chain && r.SKU == sku && r.Description == desc
	})
}

// ChainsWithSKU returns every chain carrying sku in the full dataset.
func (rc *Reconciler) ChainsWithSKU(sku string) []string {
	return rc.ds.ChainsWhere(func(r SalesRecord) bool { return r.SKU == sku })
}

// ChainsWithDescription returns every chain carrying description in the
// full dataset.
func (rc *Reconciler) ChainsWithDescription(description string) []string {
	return rc.ds.ChainsWhere(func(r SalesRecord) bool { return r.Description == description })
}

// =============================================================================
// VIEW - Everything one dashboard render needs
// =============================================================================

// Series names for the four monthly charts.
const (
	SeriesSelection = "selection"
	SeriesChain     = "chain"
	SeriesTotal     = "total"
	SeriesCapacity  = "capacity"
)

// SeriesKinds lists the chart series in display order.
var SeriesKinds = []string{SeriesChain, SeriesSelection, SeriesTotal, SeriesCapacity}

// View is the reconciled result of one interaction.
type View struct {
	State             SelectionState
	Rows              []SalesRecord
	Table             Table
	SKUChains         []string
	DescriptionChains []string
	// ShowMembership is set when both SKU and Description are non-empty.
	ShowMembership bool
	Empty          bool
	Message        string
	Series         map[string][]MonthlyTotal
}

// View recomputes the whole dashboard for st.
func (rc *Reconciler) View(st *SelectionState) (View, error) {
	cols, err := ParseColumns(st.Columns)
	if err != nil {
		return View{}, err
	}

	v := View{
		State:  *st.Clone(),
		Rows:   rc.Filter(st),
		Series: make(map[string][]MonthlyTotal, len(SeriesKinds)),
	}
	v.Table = Project(v.Rows, cols)

	var sku, desc string
	if st.SKU != nil {
		sku = *st.SKU
	}
	if st.Description != nil {
		desc = *st.Description
	}
	if st.Resolved() {
		v.SKUChains = rc.ChainsWithSKU(sku)
		v.DescriptionChains = rc.ChainsWithDescription(desc)
	}
	v.ShowMembership = sku != "" && desc != ""

	if len(v.Rows) == 0 {
		v.Empty = true
		v.Message = NoDataMessage
	}

	if hasColumn(cols, ColSales) {
		v.Series[SeriesSelection] = Aggregate(v.Rows)
	}
	v.Series[SeriesChain] = Aggregate(rc.ds.Where(func(r SalesRecord) bool { return r.Chain == st.Chain }))
	v.Series[SeriesTotal] = Aggregate(rc.ds.Records())
	v.Series[SeriesCapacity] = Aggregate(rc.ds.Where(func(r SalesRecord) bool { return r.Capacity == st.Capacity }))
	return v, nil
}

// Summary is a one-line description of the active filters.
func (v View) Summary() string {
	var sku, desc string
	if v.State.SKU != nil {
		sku = *v.State.SKU
	}
	if v.State.Description != nil {
		desc = *v.State.Description
	}
	return fmt.Sprintf("chain=%s sku=%s description=%s", v.State.Chain, sku, desc)
}
