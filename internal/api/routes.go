package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/ignite/marketing-console/internal/auth"
	"github.com/ignite/marketing-console/internal/config"
	"github.com/ignite/marketing-console/internal/metrics"
)

// SetupRoutes configures the router. Protected resources (those carrying
// created_by) sit behind the bearer middleware; the rest of the catalog is
// served publicly. Import and export live inside the protected group.
func SetupRoutes(h *Handlers, authManager *auth.Manager, cfg config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(recordMetrics)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public resources.
		for name, rs := range h.services {
			if rs.Descriptor().Owned {
				continue
			}
			registerResource(r, h, name)
		}

		// Analytics is read-only and public, like the public resources.
		r.Get("/analytics/dashboard", h.handleDashboard)
		r.Get("/analytics/{resource}", h.handleResourceSummary)

		// Protected resources and mutating bulk operations.
		r.Group(func(r chi.Router) {
			r.Use(authManager.Middleware)

			for name, rs := range h.services {
				if !rs.Descriptor().Owned {
					continue
				}
				registerResource(r, h, name)
			}

			r.Post("/coupons/{id}/redeem", h.handleRedeem)

			importLimiter := rate.NewLimiter(rate.Limit(cfg.Import.RatePerMinute/60.0), int(cfg.Import.RatePerMinute))
			r.With(rateLimit(importLimiter)).Post("/import", h.handleImport(cfg.Import.MaxBodyBytes))
			r.Get("/export", h.handleExport)

			r.Get("/audit", h.handleAuditLog)
		})
	})

	return r
}

func registerResource(r chi.Router, h *Handlers, name string) {
	rs := h.services[name]
	r.Route("/"+name, func(r chi.Router) {
		r.Get("/", h.handleList(rs))
		r.Post("/", h.handleCreate(rs))
		r.Get("/{id}", h.handleGet(rs))
		r.Put("/{id}", h.handleUpdate(rs))
		r.Delete("/{id}", h.handleDelete(rs))
	})
}

// recordMetrics observes request latency per route pattern.
func recordMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(r.Method, route, strconv.Itoa(ww.Status()), time.Since(start).Seconds())
	})
}

// rateLimit rejects requests beyond the limiter's budget with 429.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
