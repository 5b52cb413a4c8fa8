// Package httpapi exposes the cache coordinator over HTTP/JSON:
// gorilla/mux routing, goccy/go-json encoding, a request-id middleware
// stamped with google/uuid, and Prometheus instrumentation via
// internal/telemetry.
package httpapi

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pomai-cache/corekv/internal/cache"
)

// Config configures the HTTP server.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns reasonable production defaults.
func DefaultServerConfig() Config {
	return Config{
		Port:         7379,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the stdlib http.Server with a mux.Router wired to a
// Cache coordinator.
type Server struct {
	cfg    Config
	cache  *cache.Cache
	router *mux.Router
	http   *http.Server
}

// NewServer builds a Server bound to cache c.
func NewServer(c *cache.Cache, cfg Config) *Server {
	s := &Server{
		cfg:    cfg,
		cache:  c,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	s.http = &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      requestIDMiddleware(s.router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// ListenAndServe starts serving HTTP. It blocks until the server stops.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.http.Serve(ln)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
