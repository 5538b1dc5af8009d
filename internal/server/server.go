// Package server exposes table listings over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /schemas/{schema}/tables
//	GET  /schemas/{schema}/tables/names?kind=VIEW
//	GET  /schemas/{schema}/tables/exists?table=orders
//	GET  /schemas/{schema}/snapshots?after=&limit=  (file store configured)
//	POST /schemas/{schema}/snapshots                (file store configured)
//	GET  /schemas/{schema}/snapshots/latest/diff    (file store configured)
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/koustreak/tablescope/internal/filestore"
	"github.com/koustreak/tablescope/internal/logger"
	"github.com/koustreak/tablescope/internal/schema"
)

// Pinger is anything whose reachability /healthz reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers use. Store may be nil, in which
// case the snapshot routes are not mounted.
type Deps struct {
	Tables schema.Reader
	DB     Pinger
	Store  filestore.Store
	Bucket string

	// PresignTTL is how long snapshot download links stay valid.
	PresignTTL time.Duration
}

// Options tune the underlying http.Server.
type Options struct {
	ListenAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server wraps the HTTP server with chi routing, middleware, and graceful shutdown.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	log        *logger.Logger
	deps       Deps
}

// New creates a Server. It does not start listening.
func New(opts Options, deps Deps, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if deps.PresignTTL <= 0 {
		deps.PresignTTL = 15 * time.Minute
	}

	s := &Server{log: log, deps: deps}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              opts.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: opts.ReadTimeout,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until it stops.
// Returns nil if the server was shut down gracefully via Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.InfoWith("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
