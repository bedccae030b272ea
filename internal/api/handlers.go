package api

import "net/http"

// Handler exposes read-only report endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler backed by svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetReport returns the full latest report.
func (h *Handler) GetReport(w http.ResponseWriter, _ *http.Request) {
	rep := h.svc.Report()
	if rep == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no report available yet"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// GetSummary returns only the per-section issue counts.
func (h *Handler) GetSummary(w http.ResponseWriter, _ *http.Request) {
	rep := h.svc.Report()
	if rep == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no report available yet"))
		return
	}
	writeJSON(w, http.StatusOK, rep.Summary)
}
