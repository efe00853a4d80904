/*
selection.go - Tagged selection values and per-session selection state

PURPOSE:
  A user picks exactly one entry from the combined picker. Internally the
  pick is a tagged value (BySKU or ByDescription) instead of a string that
  has to be re-split on every interaction.

  The legacy "<sku>: <description>" token form is still accepted through
  ParseToken, which splits on the FIRST colon only. A description that
  itself contains a colon is therefore read as a SKU pick when it arrives
  as a token; clients that send the tagged form are not affected.

SELECTION STATE:
  SelectionState is the whole per-session state. It is serializable and
  is passed by pointer into the Reconciler on every interaction.
*/
package sales

import (
	"fmt"
	"strings"
)

// SelectionKind tags a Selection.
type SelectionKind string

const (
	KindSKU         SelectionKind = "sku"
	KindDescription SelectionKind = "description"
)

// Selection is one pick from the combined SKU/description picker.
type Selection struct {
	Kind  SelectionKind `json:"kind"`
	Value string        `json:"value"`
}

func BySKU(sku string) Selection          { return Selection{Kind: KindSKU, Value: sku} }
func ByDescription(desc string) Selection { return Selection{Kind: KindDescription, Value: desc} }

// Validate checks the kind tag.
func (s Selection) Validate() error {
	switch s.Kind {
	case KindSKU, KindDescription:
		return nil
	default:
		return &ValueError{Field: "selection kind", Value: string(s.Kind), Err: ErrInvalidSelection}
	}
}

func (s Selection) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, s.Value)
}

// tokenSeparator joins SKU and description in the combined picker.
const tokenSeparator = ": "

// FormatToken builds the combined "<sku>: <description>" picker entry.
func FormatToken(sku, description string) string {
	return sku + tokenSeparator + description
}

// ParseToken decodes a combined picker entry. A token containing a colon
// is a SKU pick whose SKU is everything before the first colon; any other
// token is a description pick.
func ParseToken(token string) (Selection, error) {
	if token == "" {
		return Selection{}, fmt.Errorf("empty token: %w", ErrInvalidSelection)
	}
	if i := strings.Index(token, ":"); i >= 0 {
		return BySKU(token[:i]), nil
	}
	return ByDescription(token), nil
}

// =============================================================================
// SELECTION STATE - One instance per session
// =============================================================================

// SelectionState is the per-session widget state.
// SKU and Description are nil until the first pick is resolved.
type SelectionState struct {
	Chain       string   `json:"chain"`
	Capacity    string   `json:"capacity"`
	SKU         *string  `json:"sku,omitempty"`
	Description *string  `json:"description,omitempty"`
	Columns     []string `json:"columns"`
}

// Resolved reports whether a pick has been applied.
func (s *SelectionState) Resolved() bool {
	return s.SKU != nil && s.Description != nil
}

// Clone returns a deep copy.
func (s *SelectionState) Clone() *SelectionState {
	c := *s
	if s.SKU != nil {
		v := *s.SKU
		c.SKU = &v
	}
	if s.Description != nil {
		v := *s.Description
		c.Description = &v
	}
	c.Columns = append([]string(nil), s.Columns...)
	return &c
}
