/*
lookup.go - SKU <-> Description lookup tables and the combined option list

PURPOSE:
  The source data does not guarantee a one-to-one SKU/Description mapping.
  Both tables are built by scanning every record in file order and
  overwriting on duplicate keys: LAST WRITE WINS. Key order is the order
  of first appearance, so option lists are stable for a given file.

  Ties are therefore resolved by row order of the input file. Whether
  ambiguity should instead be an error, or keep every match, is an open
  question for the data owners; the behaviour is kept as-is.

COMBINED OPTIONS:
  One "<sku>: <description>" entry per unique SKU key, followed by one
  entry per unique non-empty description. The two halves are not deduplicated
  against each other.
*/
package sales

// orderedMap is a string map that remembers first-insertion key order.
type orderedMap struct {
	keys   []string
	values map[string]string
}

func newOrderedMap() *orderedMap {
	return &orderedMap{values: make(map[string]string)}
}

// set overwrites the value but keeps the key's original position.
func (m *orderedMap) set(k, v string) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

func (m *orderedMap) get(k string) (string, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Lookup holds the SKU->Description and Description->SKU tables.
type Lookup struct {
	skuToDesc *orderedMap
	descToSKU *orderedMap
	descs     []string
}

// BuildLookup scans records in order; later rows overwrite earlier ones.
func BuildLookup(records []SalesRecord) *Lookup {
	l := &Lookup{
		skuToDesc: newOrderedMap(),
		descToSKU: newOrderedMap(),
	}
	for _, r := range records {
		l.skuToDesc.set(r.SKU, r.Description)
		l.descToSKU.set(r.Description, r.SKU)
	}
	l.descs = l.descToSKU.keys
	return l
}

// DescriptionFor returns the description last associated with sku.
func (l *Lookup) DescriptionFor(sku string) (string, bool) {
	return l.skuToDesc.get(sku)
}

// SKUFor returns the SKU last associated with description.
func (l *Lookup) SKUFor(description string) (string, bool) {
	return l.descToSKU.get(description)
}

// SKUs returns the distinct SKUs in order of first appearance.
func (l *Lookup) SKUs() []string { return l.skuToDesc.keys }

// Descriptions returns the distinct descriptions in order of first appearance.
func (l *Lookup) Descriptions() []string { return l.descs }

// Candidate is one entry of the combined SKU/description picker.
type Candidate struct {
	Token     string
	Selection Selection
}

// Candidates returns the combined option list: SKU entries first, then
// bare descriptions. An empty description is not offered on its own.
func (l *Lookup) Candidates() []Candidate {
	out := make([]Candidate, 0, len(l.skuToDesc.keys)+len(l.descs))
	for _, sku := range l.skuToDesc.keys {
		desc := l.skuToDesc.values[sku]
		out = append(out, Candidate{
			Token:     FormatToken(sku, desc),
			Selection: BySKU(sku),
		})
	}
	for _, desc := range l.descs {
		if desc == "" {
			continue
		}
		out = append(out, Candidate{
			Token:     desc,
			Selection: ByDescription(desc),
		})
	}
	return out
}
