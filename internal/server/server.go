// Package server wires the hardware manager, caches, background
// collectors and HTTP router into one runnable service.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/veldtlab/hwscope/gpu"
	"github.com/veldtlab/hwscope/gpu/providers"
	"github.com/veldtlab/hwscope/internal/api"
	"github.com/veldtlab/hwscope/internal/api/handlers"
	"github.com/veldtlab/hwscope/internal/errorreporting"
	"github.com/veldtlab/hwscope/internal/config"
	"github.com/veldtlab/hwscope/internal/history"
	"github.com/veldtlab/hwscope/internal/httpcache"
	"github.com/veldtlab/hwscope/internal/logger"
	"github.com/veldtlab/hwscope/internal/metrics"
	"github.com/veldtlab/hwscope/internal/secrets"
)

const shutdownTimeout = 10 * time.Second

// Server owns the long-running pieces of the service.
type Server struct {
	cfg       *config.Config
	manager   *gpu.Manager
	collector *metrics.Collector
	recorder  *history.Recorder
	store     *history.Store
	hub       *handlers.Hub
	httpSrv   *http.Server
}

// New builds a server from configuration. History recording is wired
// only when a database URL is configured and reachable.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	manager := gpu.NewManager(providers.DefaultRegistry(),
		gpu.WithCacheTTL(cfg.DeviceCacheTTL),
		gpu.WithMaxCacheEntries(cfg.MaxCacheEntries),
	)

	responseCache, err := httpcache.NewLRU(cfg.HTTPCacheMaxCost, 1024, cfg.HTTPCacheTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		manager:   manager,
		collector: metrics.NewCollector(manager, cfg.PollInterval, cfg.CleanupInterval),
	}

	if cfg.HistoryEnabled {
		store, err := history.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.store = store
		s.recorder = history.NewRecorder(store, manager, cfg.PollInterval, cfg.HistoryRetention)
		logger.Info("history recording enabled",
			"database", secrets.MaskURL(cfg.DatabaseURL),
			"retention", cfg.HistoryRetention)
	}

	router, hub := api.NewRouter(api.Deps{
		Manager: manager,
		Cache:   responseCache,
		History: s.store,
		Config:  cfg,
	})
	s.hub = hub

	s.httpSrv = &http.Server{
		Addr:        cfg.Addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the stream endpoint holds connections open.
		IdleTimeout: 60 * time.Second,
	}

	return s, nil
}

// Manager exposes the device manager, mainly for tests.
func (s *Server) Manager() *gpu.Manager {
	return s.manager
}

// Run starts the background loops and serves HTTP until ctx is
// cancelled or the listener fails. Both exits go through the same
// teardown so the hub, collector, recorder and history store never
// outlive the server.
func (s *Server) Run(ctx context.Context) error {
	go s.collector.Start(ctx)
	if s.recorder != nil {
		go s.recorder.Start(ctx)
	}
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", s.cfg.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
		logger.Error("http server failed", "error", err)
		errorreporting.CaptureError(err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = s.httpSrv.Shutdown(shutdownCtx)
	}

	s.hub.Stop()
	s.collector.Stop()
	if s.recorder != nil {
		s.recorder.Stop()
	}
	if s.store != nil {
		if closeErr := s.store.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
