package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/marketing-console/internal/domain"
)

// handleDashboard serves GET /api/analytics/dashboard — record counts per
// resource in one call.
func (h *Handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.Dashboard(r.Context())
	if err != nil {
		h.respondSafeError(w, http.StatusInternalServerError, err, "an internal error occurred")
		return
	}
	respondData(w, http.StatusOK, data)
}

// handleResourceSummary serves GET /api/analytics/{resource}.
func (h *Handlers) handleResourceSummary(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.ResourceSummary(r.Context(), chi.URLParam(r, "resource"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "unknown resource")
			return
		}
		h.respondSafeError(w, http.StatusInternalServerError, err, "an internal error occurred")
		return
	}
	respondData(w, http.StatusOK, data)
}
