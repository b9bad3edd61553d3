package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/csvcodec"
	"github.com/ignite/marketing-console/internal/domain"
	"github.com/ignite/marketing-console/internal/service"
)

// Response helpers. Every payload carries a success flag; 5xx responses never
// include internal error detail — the full error goes to the server log.

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, map[string]any{"success": true, "data": data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"success": false, "error": msg})
}

// respondSafeError logs the internal error and sends a generic message.
func (h *Handlers) respondSafeError(w http.ResponseWriter, status int, internalErr error, publicMsg string) {
	if internalErr != nil {
		h.log.Error(publicMsg, zap.Int("status", status), zap.Error(internalErr))
	}
	respondError(w, status, publicMsg)
}

// writeError maps the service error taxonomy onto HTTP responses.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "validation failed",
			"errors":  vErr.Fields,
		})
		return
	}

	var pErr *domain.PermissionError
	if errors.As(err, &pErr) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	var dErr *domain.DuplicateError
	if errors.As(err, &dErr) {
		respondError(w, http.StatusBadRequest, dErr.Error())
		return
	}

	var fErr *csvcodec.FormatError
	if errors.As(err, &fErr) {
		respondError(w, http.StatusBadRequest, fErr.Msg)
		return
	}

	switch {
	case errors.Is(err, service.ErrCouponExpired),
		errors.Is(err, service.ErrCouponDepleted),
		errors.Is(err, service.ErrCouponInactive):
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	h.respondSafeError(w, http.StatusInternalServerError, err, "an internal error occurred")
}
