/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the sales domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Options:   OptionsDTO, CandidateDTO
  Sessions:  SessionDTO, SelectionStateDTO
  Requests:  SelectChainRequest, SelectCapacityRequest, SelectionRequest,
             SelectColumnsRequest
  View:      ViewDTO, PointDTO
  Health:    HealthDTO

VALIDATION:
  Validation is done by the sales.Reconciler, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/rfp/sales-analysis/sales"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CandidateDTO is one entry of the combined SKU/description picker.
// Clients may send back either Token or the (Kind, Value) pair.
type CandidateDTO struct {
	Token string `json:"token"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// OptionsDTO lists everything a user can pick.
type OptionsDTO struct {
	Chains         []string       `json:"chains"`
	Capacities     []string       `json:"capacities"`
	Candidates     []CandidateDTO `json:"candidates"`
	Columns        []string       `json:"columns"`
	DefaultColumns []string       `json:"default_columns"`
}

// SelectionStateDTO is the per-session widget state.
type SelectionStateDTO struct {
	Chain       string   `json:"chain"`
	Capacity    string   `json:"capacity"`
	SKU         *string  `json:"sku"`
	Description *string  `json:"description"`
	Columns     []string `json:"columns"`
}

// SessionDTO is a session and its state.
type SessionDTO struct {
	ID    string            `json:"id"`
	State SelectionStateDTO `json:"state"`
}

// SelectChainRequest changes the active chain.
type SelectChainRequest struct {
	Chain string `json:"chain"`
}

// SelectCapacityRequest changes the active capacity.
type SelectCapacityRequest struct {
	Capacity string `json:"capacity"`
}

// SelectionRequest applies one picker entry. Token takes precedence over
// Kind/Value when both are sent.
type SelectionRequest struct {
	Token string `json:"token,omitempty"`
	Kind  string `json:"kind,omitempty"`
	Value string `json:"value,omitempty"`
}

// SelectColumnsRequest changes the visible columns.
type SelectColumnsRequest struct {
	Columns []string `json:"columns"`
}

// PointDTO is one month of a series.
type PointDTO struct {
	Month string  `json:"month"`
	Sales float64 `json:"sales"`
}

// ViewDTO is the reconciled dashboard for one session.
type ViewDTO struct {
	SessionID         string                `json:"session_id"`
	State             SelectionStateDTO     `json:"state"`
	Summary           string                `json:"summary"`
	Columns           []string              `json:"columns"`
	Rows              [][]string            `json:"rows"`
	RowCount          int                   `json:"row_count"`
	SKUChains         []string              `json:"sku_chains"`
	DescriptionChains []string              `json:"description_chains"`
	ShowMembership    bool                  `json:"show_membership"`
	Empty             bool                  `json:"empty"`
	Message           string                `json:"message,omitempty"`
	Series            map[string][]PointDTO `json:"series"`
}

// HealthDTO reports liveness and dataset shape.
type HealthDTO struct {
	Status     string `json:"status"`
	Records    int    `json:"records"`
	Chains     int    `json:"chains"`
	Capacities int    `json:"capacities"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toStateDTO(st *sales.SelectionState) SelectionStateDTO {
	cols := st.Columns
	if cols == nil {
		cols = []string{}
	}
	return SelectionStateDTO{
		Chain:       st.Chain,
		Capacity:    st.Capacity,
		SKU:         st.SKU,
		Description: st.Description,
		Columns:     cols,
	}
}

func toOptionsDTO(o sales.Options) OptionsDTO {
	dto := OptionsDTO{
		Chains:         o.Chains,
		Capacities:     o.Capacities,
		Candidates:     make([]CandidateDTO, len(o.Candidates)),
		Columns:        columnStrings(o.Columns),
		DefaultColumns: columnStrings(o.Defaults),
	}
	for i, c := range o.Candidates {
		dto.Candidates[i] = CandidateDTO{
			Token: c.Token,
			Kind:  string(c.Selection.Kind),
			Value: c.Selection.Value,
		}
	}
	return dto
}

func toPointDTOs(series []sales.MonthlyTotal) []PointDTO {
	out := make([]PointDTO, len(series))
	for i, t := range series {
		out[i] = PointDTO{Month: t.Month.String(), Sales: t.Sales.InexactFloat64()}
	}
	return out
}

func toViewDTO(id sales.SessionID, v sales.View) ViewDTO {
	dto := ViewDTO{
		SessionID:         string(id),
		State:             toStateDTO(&v.State),
		Summary:           v.Summary(),
		Columns:           columnStrings(v.Table.Columns),
		Rows:              v.Table.Rows,
		RowCount:          len(v.Rows),
		SKUChains:         nonNil(v.SKUChains),
		DescriptionChains: nonNil(v.DescriptionChains),
		ShowMembership:    v.ShowMembership,
		Empty:             v.Empty,
		Message:           v.Message,
		Series:            make(map[string][]PointDTO, len(v.Series)),
	}
	for kind, series := range v.Series {
		dto.Series[kind] = toPointDTOs(series)
	}
	return dto
}

func columnStrings(cols []sales.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
