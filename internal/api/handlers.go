package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ignite/marketing-console/internal/analytics"
	"github.com/ignite/marketing-console/internal/audit"
	"github.com/ignite/marketing-console/internal/auth"
	"github.com/ignite/marketing-console/internal/domain"
	"github.com/ignite/marketing-console/internal/metrics"
	"github.com/ignite/marketing-console/internal/permission"
	"github.com/ignite/marketing-console/internal/service"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	services  map[string]*service.ResourceService
	coupons   *service.CouponService
	importer  *service.ImportService
	analytics *analytics.Service
	audit     *audit.Logger
	log       *zap.Logger
	db        *sqlx.DB
}

// NewHandlers creates a Handlers instance over the wired services.
func NewHandlers(
	services map[string]*service.ResourceService,
	coupons *service.CouponService,
	importer *service.ImportService,
	analyticsSvc *analytics.Service,
	auditLog *audit.Logger,
	log *zap.Logger,
) *Handlers {
	return &Handlers{
		services:  services,
		coupons:   coupons,
		importer:  importer,
		analytics: analyticsSvc,
		audit:     auditLog,
		log:       log,
	}
}

// handleList serves GET /api/<resource>.
func (h *Handlers) handleList(rs *service.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := parseLimitOffset(r)

		filters := map[string]string{}
		for key := range rs.Descriptor().Filterable() {
			if v := r.URL.Query().Get(key); v != "" {
				filters[key] = v
			}
		}

		records, total, err := rs.List(r.Context(), auth.FromContext(r.Context()), filters, limit, offset)
		if err != nil {
			h.writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    records,
			"count":   total,
		})
	}
}

// handleGet serves GET /api/<resource>/{id}.
func (h *Handlers) handleGet(rs *service.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := rs.Get(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		respondData(w, http.StatusOK, rec)
	}
}

// handleCreate serves POST /api/<resource>.
func (h *Handlers) handleCreate(rs *service.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidate, ok := decodeRecord(w, r)
		if !ok {
			return
		}
		rec, err := rs.Create(r.Context(), auth.FromContext(r.Context()), candidate)
		if err != nil {
			h.writeError(w, err)
			return
		}
		respondData(w, http.StatusCreated, rec)
	}
}

// handleUpdate serves PUT /api/<resource>/{id}.
func (h *Handlers) handleUpdate(rs *service.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partial, ok := decodeRecord(w, r)
		if !ok {
			return
		}
		rec, err := rs.Update(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), partial)
		if err != nil {
			h.writeError(w, err)
			return
		}
		respondData(w, http.StatusOK, rec)
	}
}

// handleDelete serves DELETE /api/<resource>/{id}.
func (h *Handlers) handleDelete(rs *service.ResourceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := rs.Delete(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
			h.writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "deleted",
		})
	}
}

// handleRedeem serves POST /api/coupons/{id}/redeem.
func (h *Handlers) handleRedeem(w http.ResponseWriter, r *http.Request) {
	rec, err := h.coupons.Redeem(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		switch err {
		case service.ErrCouponExpired:
			metrics.RecordRedemption("expired")
		case service.ErrCouponDepleted:
			metrics.RecordRedemption("depleted")
		case service.ErrCouponInactive:
			metrics.RecordRedemption("inactive")
		default:
			metrics.RecordRedemption("error")
		}
		h.writeError(w, err)
		return
	}
	metrics.RecordRedemption("redeemed")
	respondData(w, http.StatusOK, rec)
}

// handleAuditLog serves GET /api/audit. Admins and managers only.
func (h *Handlers) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	actor := auth.FromContext(r.Context())
	if actor == nil || (actor.Role != permission.RoleAdmin && actor.Role != permission.RoleManager) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	limit, _ := parseLimitOffset(r)
	entries, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		h.respondSafeError(w, http.StatusInternalServerError, err, "an internal error occurred")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (domain.Record, bool) {
	var rec domain.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return rec, true
}
