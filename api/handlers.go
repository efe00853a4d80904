/*
handlers.go - HTTP API handlers for the sales dashboard

PURPOSE:
  Exposes the filter reconciler via a REST API. Every widget change is
  one request: load the session state, apply the change through the
  reconciler, save the state, return it. The view endpoint recomputes the
  whole dashboard from the in-memory dataset.

ENDPOINTS:
  Options:
    GET    /api/options                         Picker contents

  Sessions:
    POST   /api/sessions                        Create session (default state)
    GET    /api/sessions/{id}                   Current state
    DELETE /api/sessions/{id}                   Drop session
    PUT    /api/sessions/{id}/chain             Select chain
    PUT    /api/sessions/{id}/capacity          Select capacity
    PUT    /api/sessions/{id}/selection         Apply SKU/description pick
    PUT    /api/sessions/{id}/columns           Select visible columns
    GET    /api/sessions/{id}/view              Filtered table, membership, series
    GET    /api/sessions/{id}/charts/{kind}     Line chart (svg, ?format=png)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body
  - 404: Unknown session or chart, or nothing to plot
  - 409: Session id already taken
  - 422: Unknown chain, capacity, column or selection kind
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rfp/sales-analysis/plot"
	"github.com/rfp/sales-analysis/sales"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Reconciler *sales.Reconciler
	Sessions   sales.SessionStore

	// BrandImage is an optional image file served at /brand.
	BrandImage string
	Logger     zerolog.Logger

	newID func() sales.SessionID

	// updateMu serialises read-modify-write cycles on session state.
	updateMu sync.Mutex
}

// NewHandler creates a new handler over one reconciled dataset.
func NewHandler(rc *sales.Reconciler, sessions sales.SessionStore, logger zerolog.Logger) *Handler {
	return &Handler{
		Reconciler: rc,
		Sessions:   sessions,
		Logger:     logger,
		newID:      func() sales.SessionID { return sales.SessionID(uuid.NewString()) },
	}
}

// =============================================================================
// OPTIONS & HEALTH
// =============================================================================

// Health reports liveness and dataset shape.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ds := h.Reconciler.Dataset()
	writeJSON(w, http.StatusOK, HealthDTO{
		Status:     "ok",
		Records:    ds.Len(),
		Chains:     len(ds.Chains()),
		Capacities: len(ds.Capacities()),
	})
}

// GetOptions returns the picker contents.
// GET /api/options
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toOptionsDTO(h.Reconciler.Options()))
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// CreateSession starts a session with the default state.
// POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.newID()
	st := h.Reconciler.DefaultState()

	if err := h.Sessions.Create(r.Context(), id, st); err != nil {
		h.fail(w, "Failed to create session", err)
		return
	}

	h.Logger.Debug().Str("session", string(id)).Msg("session created")
	writeJSON(w, http.StatusCreated, SessionDTO{ID: string(id), State: toStateDTO(st)})
}

// GetSession returns the current state.
// GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	st, err := h.Sessions.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to get session", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionDTO{ID: string(id), State: toStateDTO(st)})
}

// DeleteSession drops a session.
// DELETE /api/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Delete(r.Context(), sessionID(r)); err != nil {
		h.fail(w, "Failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectChain changes the active chain.
// PUT /api/sessions/{id}/chain
func (h *Handler) SelectChain(w http.ResponseWriter, r *http.Request) {
	var req SelectChainRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(st *sales.SelectionState) error {
		return h.Reconciler.SelectChain(st, req.Chain)
	})
}

// SelectCapacity changes the active capacity.
// PUT /api/sessions/{id}/capacity
func (h *Handler) SelectCapacity(w http.ResponseWriter, r *http.Request) {
	var req SelectCapacityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(st *sales.SelectionState) error {
		return h.Reconciler.SelectCapacity(st, req.Capacity)
	})
}

// ApplySelection applies one picker entry, either as the combined token
// or as an explicit (kind, value) pair. A request with neither is an
// empty pick and leaves the state unchanged.
// PUT /api/sessions/{id}/selection
func (h *Handler) ApplySelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(st *sales.SelectionState) error {
		if req.Token != "" || req.Kind == "" {
			return h.Reconciler.ApplyToken(st, req.Token)
		}
		return h.Reconciler.Apply(st, sales.Selection{Kind: sales.SelectionKind(req.Kind), Value: req.Value})
	})
}

// SelectColumns changes the visible columns.
// PUT /api/sessions/{id}/columns
func (h *Handler) SelectColumns(w http.ResponseWriter, r *http.Request) {
	var req SelectColumnsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.update(w, r, func(st *sales.SelectionState) error {
		return h.Reconciler.SelectColumns(st, req.Columns)
	})
}

// update runs one read-modify-write cycle on a session's state. Cycles
// are serialised so concurrent updates to one session cannot overwrite
// each other.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, apply func(*sales.SelectionState) error) {
	ctx := r.Context()
	id := sessionID(r)

	h.updateMu.Lock()
	defer h.updateMu.Unlock()

	st, err := h.Sessions.Get(ctx, id)
	if err != nil {
		h.fail(w, "Failed to get session", err)
		return
	}
	if err := apply(st); err != nil {
		h.fail(w, "Invalid selection", err)
		return
	}
	if err := h.Sessions.Save(ctx, id, st); err != nil {
		h.fail(w, "Failed to save session", err)
		return
	}
	writeJSON(w, http.StatusOK, SessionDTO{ID: string(id), State: toStateDTO(st)})
}

// =============================================================================
// VIEW & CHARTS
// =============================================================================

// GetView recomputes the dashboard for a session.
// GET /api/sessions/{id}/view
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	v, ok := h.view(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toViewDTO(id, v))
}

// GetChart renders one of the monthly series.
// GET /api/sessions/{id}/charts/{kind}?format=svg|png
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	format, err := plot.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid chart format", err)
		return
	}

	v, ok := h.view(w, r, sessionID(r))
	if !ok {
		return
	}

	series, ok := v.Series[kind]
	if !ok {
		writeError(w, http.StatusNotFound, "Chart not available", fmt.Errorf("unknown or hidden chart %q", kind))
		return
	}

	var buf bytes.Buffer
	err = plot.Render(&buf, plot.Chart{
		Title:  chartTitle(kind, &v.State),
		Series: series,
		Format: format,
	})
	if errors.Is(err, plot.ErrNoData) {
		writeError(w, http.StatusNotFound, sales.NoDataMessage, err)
		return
	}
	if err != nil {
		h.fail(w, "Failed to render chart", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetBrand serves the configured branding image.
// GET /brand
func (h *Handler) GetBrand(w http.ResponseWriter, r *http.Request) {
	if h.BrandImage == "" {
		writeError(w, http.StatusNotFound, "No brand image configured", nil)
		return
	}
	http.ServeFile(w, r, h.BrandImage)
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request, id sales.SessionID) (sales.View, bool) {
	st, err := h.Sessions.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to get session", err)
		return sales.View{}, false
	}
	v, err := h.Reconciler.View(st)
	if err != nil {
		h.fail(w, "Failed to build view", err)
		return sales.View{}, false
	}
	return v, true
}

func chartTitle(kind string, st *sales.SelectionState) string {
	switch kind {
	case sales.SeriesSelection:
		desc := ""
		if st.Description != nil {
			desc = *st.Description
		}
		return "Monthly sales for " + desc
	case sales.SeriesChain:
		return "Sales for chain: " + st.Chain
	case sales.SeriesCapacity:
		return "Monthly sales for capacity " + st.Capacity
	default:
		return "Total monthly sales"
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func sessionID(r *http.Request) sales.SessionID {
	return sales.SessionID(chi.URLParam(r, "id"))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// fail maps domain errors to a status code.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	switch {
	case sales.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, sales.ErrSessionExists):
		writeError(w, http.StatusConflict, message, err)
	case sales.IsClientError(err):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	default:
		h.Logger.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(status)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// errorCode is the machine-readable counterpart of status.
func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "invalid_input"
	default:
		return "internal"
	}
}
