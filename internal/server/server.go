// Package server exposes the monitor's operations over a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hirewatch-dev/hirewatch/internal/monitor"
)

// Server manages the HTTP server and routes.
type Server struct {
	handle  monitor.Handle
	logger  *slog.Logger
	version string
	router  *http.ServeMux
	server  *http.Server
}

// Options configures a Server.
type Options struct {
	Handle  monitor.Handle
	Addr    string
	Logger  *slog.Logger
	Version string
}

// New creates an HTTP server over the given monitor handle. A degraded
// handle still serves /api/health and /api/version; everything else answers
// 503 with the degradation reason.
func New(opts Options) *Server {
	s := &Server{
		handle:  opts.Handle,
		logger:  opts.Logger,
		version: opts.Version,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the full middleware-wrapped handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "address", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
