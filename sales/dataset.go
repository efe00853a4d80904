package sales

// =============================================================================
// DATASET - Immutable record set loaded once per process
// =============================================================================

// Dataset is the full, unfiltered record set. It is never mutated after
// NewDataset returns, so it can be shared by concurrent requests.
type Dataset struct {
	records    []SalesRecord
	chains     []string
	capacities []string
}

// NewDataset wraps records (in file order). The slice is copied.
func NewDataset(records []SalesRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	ds := &Dataset{records: make([]SalesRecord, len(records))}
	copy(ds.records, records)

	ds.chains = uniqueInOrder(ds.records, func(r SalesRecord) string { return r.Chain })
	ds.capacities = uniqueInOrder(ds.records, func(r SalesRecord) string { return r.Capacity })
	return ds, nil
}

// Records returns the records in file order. Callers must not modify them.
func (d *Dataset) Records() []SalesRecord { return d.records }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Chains returns the distinct chain names in order of first appearance.
func (d *Dataset) Chains() []string { return d.chains }

// Capacities returns the distinct capacities in order of first appearance.
func (d *Dataset) Capacities() []string { return d.capacities }

// HasChain reports whether any record belongs to chain.
func (d *Dataset) HasChain(chain string) bool { return contains(d.chains, chain) }

// HasCapacity reports whether any record has capacity.
func (d *Dataset) HasCapacity(capacity string) bool { return contains(d.capacities, capacity) }

// Where returns the records matching keep, in file order.
func (d *Dataset) Where(keep func(SalesRecord) bool) []SalesRecord {
	var out []SalesRecord
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// ChainsWhere returns the distinct chains of records matching keep,
// in order of first appearance.
func (d *Dataset) ChainsWhere(keep func(SalesRecord) bool) []string {
	return uniqueInOrder(d.Where(keep), func(r SalesRecord) string { return r.Chain })
}

func uniqueInOrder(records []SalesRecord, key func(SalesRecord) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range records {
		k := key(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
