package api

import (
	"context"
	"net/http"
	"time"
)

// handleHealth reports service health. Degraded means the database did not
// answer a ping in time.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	dbStatus := "ok"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = "degraded"
			dbStatus = "unreachable"
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC(),
	})
}
