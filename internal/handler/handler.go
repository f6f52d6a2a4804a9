package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"irisdash/internal/codec"
	"irisdash/internal/domain"
	"irisdash/internal/render"
	"irisdash/internal/service"
)

const (
	maxBodyBytes        = 1 << 20
	defaultHistoryLimit = 50
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// DashboardHandler handles the dashboard API
type DashboardHandler struct {
	svc       *service.DashboardService
	exporters codec.Exporters
	renderers *render.Registry
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.DashboardService, exporters codec.Exporters, renderers *render.Registry) *DashboardHandler {
	return &DashboardHandler{svc: svc, exporters: exporters, renderers: renderers}
}

// Register adds the API routes to mux
func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/layout", h.GetLayout)
	mux.HandleFunc("POST /api/update", h.Update)
	mux.HandleFunc("GET /api/figure", h.GetFigure)
	mux.HandleFunc("GET /api/dataset", h.GetDataset)
	mux.HandleFunc("GET /api/summary", h.GetSummary)
	mux.HandleFunc("GET /api/export/{format}", h.Export)
	mux.HandleFunc("GET /api/interactions", h.ListInteractions)
	mux.HandleFunc("GET /healthz", h.Health)

	// ServeMux wildcards cover whole segments only, so each chart format
	// gets its own route
	for _, format := range h.renderers.Formats() {
		mux.HandleFunc("GET /api/chart."+format, h.Chart(format))
	}
}

// GetLayout returns the page description for the configured stage
func (h *DashboardHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Layout(h.svc.Stage()), http.StatusOK)
}

// Update is the dashboard callback endpoint
func (h *DashboardHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
	}

	resp, err := h.svc.Update(r.Context(), req)
	if err != nil {
		writeServiceError(w, "Update failed", err)
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// GetFigure returns the unfiltered scatter plot
func (h *DashboardHandler) GetFigure(w http.ResponseWriter, r *http.Request) {
	fig, err := h.svc.InitialFigure()
	if err != nil {
		writeServiceError(w, "Failed to build figure", err)
		return
	}
	writeJSON(w, fig, http.StatusOK)
}

// datasetResponse is the body of GET /api/dataset
type datasetResponse struct {
	Info    domain.DatasetInfo `json:"info"`
	Columns []domain.Column    `json:"columns"`
	Rows    []domain.Sample    `json:"rows"`
}

// GetDataset returns the full table. The dataset fingerprint is the ETag.
func (h *DashboardHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds := h.svc.Dataset()
	etag := `"` + ds.Fingerprint() + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	columns := append(domain.NumericColumns(), domain.ColumnSpecies)
	writeJSON(w, datasetResponse{Info: ds.Info(), Columns: columns, Rows: ds.All()}, http.StatusOK)
}

// GetSummary returns per-species statistics
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Summary(), http.StatusOK)
}

// Export writes the filtered rows in the format named by the path
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	ex, ok := h.exporters.Get(format)
	if !ok {
		writeError(w, "Unknown export format", fmt.Sprintf("%q; supported: %s", format, strings.Join(h.exporters.Formats(), ", ")), http.StatusNotFound)
		return
	}

	req, err := requestFromQuery(r)
	if err != nil {
		writeError(w, "Invalid query", err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.svc.Rows(req)
	if err != nil {
		writeServiceError(w, "Export failed", err)
		return
	}

	var buf bytes.Buffer
	if err := ex.Export(rows, &buf); err != nil {
		writeServiceError(w, "Export failed", err)
		return
	}

	w.Header().Set("Content-Type", ex.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=iris.%s", ex.Format()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Chart returns a handler rendering the filtered figure in one image format
func (h *DashboardHandler) Chart(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd, ok := h.renderers.Get(format)
		if !ok {
			writeError(w, "Unknown chart format", format, http.StatusNotFound)
			return
		}

		req, err := requestFromQuery(r)
		if err != nil {
			writeError(w, "Invalid query", err.Error(), http.StatusBadRequest)
			return
		}

		fig, err := h.svc.Chart(req)
		if err != nil {
			writeServiceError(w, "Chart failed", err)
			return
		}

		// Render to a buffer so errors can still be reported as JSON
		var buf bytes.Buffer
		if err := rd.Render(fig, &buf); err != nil {
			writeServiceError(w, "Chart failed", err)
			return
		}

		w.Header().Set("Content-Type", rd.ContentType())
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

// interactionsResponse is the body of GET /api/interactions
type interactionsResponse struct {
	Total        int64                `json:"total"`
	Interactions []domain.Interaction `json:"interactions"`
}

// ListInteractions returns recent callbacks, newest first
func (h *DashboardHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, "Invalid limit", fmt.Sprintf("%q is not a non-negative integer", raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	list, err := h.svc.History(r.Context(), limit)
	if err != nil {
		writeServiceError(w, "Failed to list interactions", err)
		return
	}
	total, err := h.svc.InteractionCount(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to count interactions", err)
		return
	}

	writeJSON(w, interactionsResponse{Total: total, Interactions: list}, http.StatusOK)
}

// Health reports liveness and a little state
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	info := h.svc.DatasetInfo()
	writeJSON(w, map[string]any{
		"status":   "ok",
		"stage":    h.svc.Stage(),
		"rows":     info.Rows,
		"source":   info.Source,
		"fallback": info.Fallback,
	}, http.StatusOK)
}

// requestFromQuery builds a callback request from query parameters:
// species (repeatable; present but empty selects nothing), x_column,
// y_column, x_min, x_max, y_min, y_max and regression.
func requestFromQuery(r *http.Request) (service.UpdateRequest, error) {
	q := r.URL.Query()
	var req service.UpdateRequest

	if values, ok := q["species"]; ok {
		var selected []string
		for _, v := range values {
			for _, s := range strings.Split(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					selected = append(selected, s)
				}
			}
		}
		req.Species = domain.NewSelection(selected...)
	}

	req.XColumn = q.Get("x_column")
	req.YColumn = q.Get("y_column")

	var err error
	if req.XRange, err = rangeFromQuery(q.Get("x_min"), q.Get("x_max"), "x"); err != nil {
		return req, err
	}
	if req.YRange, err = rangeFromQuery(q.Get("y_min"), q.Get("y_max"), "y"); err != nil {
		return req, err
	}

	if raw := q.Get("regression"); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("regression: %w", err)
		}
		req.Regression = on
	}

	return req, nil
}

func rangeFromQuery(minRaw, maxRaw, axis string) (*domain.Range, error) {
	if minRaw == "" && maxRaw == "" {
		return nil, nil
	}
	if minRaw == "" || maxRaw == "" {
		return nil, fmt.Errorf("%s_min and %s_max must be given together", axis, axis)
	}
	lo, err := strconv.ParseFloat(minRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s_min: %w", axis, err)
	}
	hi, err := strconv.ParseFloat(maxRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s_max: %w", axis, err)
	}
	return &domain.Range{Min: lo, Max: hi}, nil
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// Helper methods

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON")
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Error().Err(err).Msg("failed to encode error response")
	}
}

// writeServiceError maps domain errors to status codes
func writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case service.IsInputError(err):
		writeError(w, msg, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrStageDisabled):
		writeError(w, msg, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrEmptyFigure):
		writeError(w, msg, err.Error(), http.StatusUnprocessableEntity)
	default:
		log.Error().Err(err).Msg(msg)
		writeError(w, msg, err.Error(), http.StatusInternalServerError)
	}
}

// clientIP extracts the real client IP from the request
// Handles X-Forwarded-For and X-Real-IP headers from reverse proxies
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first IP (original client)
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (may include port)
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
