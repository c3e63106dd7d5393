// Package server serves the dashboard over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jdziat/robodash"
	"github.com/jdziat/robodash/internal/catalog"
	"github.com/jdziat/robodash/internal/prefs"
	"github.com/jdziat/robodash/internal/telemetry"
	"github.com/jdziat/robodash/pkg/viz"
)

// Defaults.
const (
	DefaultLoadTimeout     = 2 * time.Minute
	DefaultCatalogTTL      = 0
	DefaultSessionIdle     = 30 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
)

// Server is the dashboard HTTP server.
type Server struct {
	client    *robodash.Client
	catalog   *catalog.Catalog
	prefs     *prefs.Store
	collector *telemetry.Collector
	vizConfig *viz.Config
	pipeline  *viz.Pipeline
	logger    robodash.StructuredLogger

	loadTimeout time.Duration
	catalogTTL  time.Duration
	sessionIdle time.Duration

	listings singleflight.Group

	mu       sync.Mutex
	listing  []robodash.Dataset
	listedAt time.Time
	sessions map[string]*session

	// Session loads run detached from their request and stop on Close.
	loadCtx   context.Context
	stopLoads context.CancelFunc
	loads     sync.WaitGroup
	closeOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithCatalog sets the dataset catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithPrefs sets the preference store.
func WithPrefs(p *prefs.Store) Option {
	return func(s *Server) { s.prefs = p }
}

// WithCollector sets the metrics collector served at /metrics.
func WithCollector(c *telemetry.Collector) Option {
	return func(s *Server) { s.collector = c }
}

// WithVizConfig sets the chart pipeline configuration.
func WithVizConfig(cfg *viz.Config) Option {
	return func(s *Server) { s.vizConfig = cfg }
}

// WithLogger sets the logger. It defaults to the client's.
func WithLogger(l robodash.StructuredLogger) Option {
	return func(s *Server) { s.logger = l }
}

// WithLoadTimeout bounds one dashboard load.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithCatalogTTL sets how long a catalog listing is reused. Zero, the
// default, lists the hub on every request.
func WithCatalogTTL(d time.Duration) Option {
	return func(s *Server) {
		if d >= 0 {
			s.catalogTTL = d
		}
	}
}

// New creates a server for client.
func New(client *robodash.Client, opts ...Option) (*Server, error) {
	if client == nil {
		return nil, robodash.NewValidationError("client", "client is required")
	}
	s := &Server{
		client:      client,
		logger:      client.Logger(),
		loadTimeout: DefaultLoadTimeout,
		catalogTTL:  DefaultCatalogTTL,
		sessionIdle: DefaultSessionIdle,
		sessions:    make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.catalog == nil {
		s.catalog = catalog.New(client)
	}
	if s.prefs == nil {
		store, err := prefs.Open("")
		if err != nil {
			return nil, err
		}
		s.prefs = store
	}
	if s.collector == nil {
		s.collector = telemetry.NewCollector()
	}

	cfg := &viz.Config{}
	if s.vizConfig != nil {
		c := *s.vizConfig
		cfg = &c
	}
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	if cfg.Metrics == nil {
		cfg.Metrics = s.collector
	}
	pipeline, err := viz.NewClientPipeline(client, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	s.pipeline = pipeline

	s.loadCtx, s.stopLoads = context.WithCancel(context.Background())
	return s, nil
}

// Handler returns the HTTP handler with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages
	s.handle(mux, "GET /{$}", s.handleCatalogPage)
	s.handle(mux, "GET /dataset/{owner}/{name}", s.handleDashboardPage)

	// API
	s.handle(mux, "GET /api/datasets", s.handleList)
	s.handle(mux, "GET /api/datasets/{owner}/{name}", s.handleDetail)
	s.handle(mux, "GET /api/datasets/{owner}/{name}/meta", s.handleMeta)
	s.handle(mux, "GET /api/datasets/{owner}/{name}/viz", s.handleViz)
	s.handle(mux, "GET /api/datasets/{owner}/{name}/videos", s.handleVideos)
	s.handle(mux, "GET /api/session/panel", s.handlePanel)
	s.handle(mux, "GET /api/prefs", s.handlePrefsGet)
	s.handle(mux, "POST /api/prefs", s.handlePrefsSet)

	// Operations
	mux.Handle("GET /metrics", s.collector.Handler())
	mux.Handle("GET /health", s.client.HealthHandler())
	return mux
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.collector.Instrument(pattern, h))
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully and
// stops background loads.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	defer s.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("dashboard listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close cancels background session loads and waits for them to return.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		s.stopLoads()
		s.loads.Wait()
	})
}

// preferences merges the request's query into the stored preferences and
// saves them when they changed.
func (s *Server) preferences(r *http.Request) prefs.State {
	stored := s.prefs.State()
	st := stored.WithQuery(r.URL.Query()).Normalize()
	if st != stored {
		if err := s.prefs.Save(st); err != nil {
			s.logger.Warn("could not save preferences", "error", err)
		}
	}
	return st
}

// datasets returns the catalog listing, reusing the last one while it is
// younger than the TTL. Concurrent misses share one load, which is not
// cancelled when the request that started it goes away.
func (s *Server) datasets(ctx context.Context, refresh bool) ([]robodash.Dataset, error) {
	s.mu.Lock()
	if !refresh && s.listing != nil && time.Since(s.listedAt) < s.catalogTTL {
		listing := s.listing
		s.mu.Unlock()
		return listing, nil
	}
	s.mu.Unlock()

	ch := s.listings.DoChan("catalog", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		all, err := s.catalog.Load(loadCtx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.listing, s.listedAt = all, time.Now()
		s.mu.Unlock()
		return all, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]robodash.Dataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func writeHTML(w http.ResponseWriter, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
