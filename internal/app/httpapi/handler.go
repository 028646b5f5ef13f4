// Package httpapi exposes the funding ledger over REST. Caller identity
// arrives pre-resolved in the X-Caller-Address header; credential resolution
// is the job of the fronting substrate.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	app "github.com/FundPool-Network/funding_ledger/internal/app"
	"github.com/FundPool-Network/funding_ledger/internal/app/core/service"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/identity"
	"github.com/FundPool-Network/funding_ledger/internal/app/domain/program"
)

// CallerHeader carries the resolved caller identity.
const CallerHeader = "X-Caller-Address"

// handler bundles HTTP endpoints for the ledger services.
type handler struct {
	app   *app.Application
	hub   http.Handler
	audit *auditLog
}

// Option customises the handler.
type Option func(*handler)

// WithEventHub serves the websocket event stream at GET /events.
func WithEventHub(hub http.Handler) Option {
	return func(h *handler) { h.hub = hub }
}

// WithAuditSink persists audit entries beyond the in-memory ring.
func WithAuditSink(path string) Option {
	return func(h *handler) {
		sink, err := newFileAuditSink(path)
		if err == nil && sink != nil {
			h.audit = newAuditLog(0, sink)
		}
	}
}

// NewHandler returns a mux exposing the core REST API.
func NewHandler(application *app.Application, opts ...Option) http.Handler {
	h := &handler{app: application, audit: newAuditLog(0, nil)}
	for _, opt := range opts {
		opt(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/programs", h.programs)
	mux.HandleFunc("/programs/", h.programResources)
	mux.HandleFunc("/deposits", h.deposits)
	mux.HandleFunc("/pool", h.pool)
	mux.HandleFunc("/audit", h.auditEntries)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.hub != nil {
		mux.Handle("/events", h.hub)
	}
	return h.withAudit(mux)
}

func (h *handler) programs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		caller, ok := requireCaller(w, r)
		if !ok {
			return
		}
		var payload struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Target      int64  `json:"target"`
			PIC         string `json:"pic"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		created, err := h.app.Registry.Create(r.Context(), caller, payload.Name, payload.Description, payload.Target, identity.Normalize(payload.PIC))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		programs, err := h.app.Registry.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, programs)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) programResources(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/programs"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	programID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			p, err := h.app.Registry.Get(r.Context(), programID)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, p)

		case http.MethodPatch:
			caller, ok := requireCaller(w, r)
			if !ok {
				return
			}
			var payload struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				PIC         string `json:"pic"`
			}
			if err := decodeJSON(r.Body, &payload); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}

			updated, err := h.app.Registry.Update(r.Context(), caller, programID, payload.Name, payload.Description, identity.Normalize(payload.PIC))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, updated)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "allocate":
		h.allocate(w, r, programID)
	case "withdraw":
		h.withdraw(w, r, programID)
	case "history":
		h.history(w, r, programID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) allocate(w http.ResponseWriter, r *http.Request, programID int64) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	allocated, err := h.app.Ledger.Allocate(r.Context(), caller, programID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allocated)
}

func (h *handler) withdraw(w http.ResponseWriter, r *http.Request, programID int64) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var payload struct {
		Note   string `json:"note"`
		Amount int64  `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	updated, entry, err := h.app.Ledger.Withdraw(r.Context(), caller, programID, payload.Note, payload.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"program": updated,
		"entry":   entry,
	})
}

func (h *handler) history(w http.ResponseWriter, r *http.Request, programID int64) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.app.Ledger.History(r.Context(), programID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []program.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) deposits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var payload struct {
		Amount int64 `json:"amount"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	totals, err := h.app.Ledger.Deposit(r.Context(), caller, payload.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, totals)
}

func (h *handler) pool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	totals, err := h.app.Ledger.Totals(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	available, err := h.app.Ledger.Available(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_managed_fund": totals.TotalManagedFund,
		"total_allocated":    totals.TotalAllocated,
		"available":          available,
		"updated_at":         totals.UpdatedAt,
	})
}

func (h *handler) auditEntries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, h.audit.listLimit(limit))
}

// withAudit records every mutating request with its outcome.
func (h *handler) withAudit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.audit.add(auditEntry{
			Time:       time.Now().UTC(),
			Caller:     identity.Normalize(r.Header.Get(CallerHeader)).String(),
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     rec.status,
			RemoteAddr: r.RemoteAddr,
		})
	})
}

func requireCaller(w http.ResponseWriter, r *http.Request) (identity.Address, bool) {
	caller := identity.Normalize(r.Header.Get(CallerHeader))
	if caller.IsZero() {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "caller identity required"})
		return identity.Zero, false
	}
	return caller, true
}

// writeServiceError maps the service error vocabulary onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case service.IsValidationError(err):
		status = http.StatusBadRequest
	case service.IsUnauthorized(err):
		status = http.StatusForbidden
	case service.IsNotFound(err):
		status = http.StatusNotFound
	case service.IsInvalidState(err):
		status = http.StatusConflict
	case service.IsInsufficientFunds(err):
		status = http.StatusUnprocessableEntity
	case service.IsTransferFailed(err):
		status = http.StatusBadGateway
	}
	writeError(w, status, err)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
