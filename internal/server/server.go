// Package server provides the read-only HTTP API over the occupation catalog.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/canoeh/nocs/internal/config"
	"github.com/canoeh/nocs/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const name = "nocs"

// Catalog is the query layer the handlers depend on. *catalog.Service implements it.
type Catalog interface {
	LookupByCode(ctx context.Context, code string) (*models.Occupation, error)
	Query(ctx context.Context, q models.ListQuery) (models.Page, error)
	Metadata(ctx context.Context) (models.Metadata, error)
	Suggest(ctx context.Context, q string, limit int) (*models.SuggestResponse, error)
	Preload(ctx context.Context) error
	Loaded() bool
}

// Server is the HTTP server for the occupation API.
type Server struct {
	catalog     Catalog
	config      *config.Config
	logger      *zap.Logger
	version     string
	rateLimiter *rate.Limiter
	handler     http.Handler
	httpServer  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported by GET /.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// NewServer creates a server with the given dependencies. A nil cfg uses config defaults.
func NewServer(catalog Catalog, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		catalog: catalog,
		config:  cfg,
		logger:  logger,
		version: "dev",
	}
	limit := rate.Limit(cfg.RateLimit.RequestsPerSecond)
	if limit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimit.Burst
	if burst < 1 {
		burst = 1
	}
	s.rateLimiter = rate.NewLimiter(limit, burst)
	for _, opt := range opts {
		opt(s)
	}

	s.handler = s.routes()
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the root handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start listens on the configured address and blocks until the server stops.
// A graceful Stop is not an error.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.httpServer.Addr), zap.String("version", s.version))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve is Start on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Starting server", zap.String("addr", l.Addr().String()), zap.String("version", s.version))
	err := s.httpServer.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// Run serves on l until ctx is done, then shuts down within the configured timeout.
// A nil l listens on the configured address.
func (s *Server) Run(ctx context.Context, l net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if l == nil {
			return s.Start()
		}
		return s.Serve(l)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Server.ShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
