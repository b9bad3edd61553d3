package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignite/marketing-console/internal/auth"
	"github.com/ignite/marketing-console/internal/config"
)

// Server wraps the HTTP server and its wired handler tree.
type Server struct {
	handler http.Handler
	server  *http.Server
	db      *sqlx.DB
}

// NewServer builds the router over the supplied handlers.
func NewServer(cfg config.Config, h *Handlers, authManager *auth.Manager, db *sqlx.DB) *Server {
	h.db = db
	return &Server{
		handler: SetupRoutes(h, authManager, cfg),
		db:      db,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
