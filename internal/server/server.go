// Package server exposes introspection over a small JSON HTTP API.
//
// Routes:
//
//	GET /healthz             server and catalog health
//	GET /v1/tables           tables visible in the connected database
//	GET /v1/tables/{table}   full descriptor for one table
//	GET /v1/models           generated Go model source
//	GET /v1/settings         names of all server settings
//
// Errors carry a JSON envelope with the error kind, and the kind maps
// onto the HTTP status (not_found → 404, timeout → 504, and so on).
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/chinspect/chinspect/internal/catalog"
	"github.com/chinspect/chinspect/internal/inspect"
	"github.com/chinspect/chinspect/internal/logger"
)

// Config holds HTTP listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server serves introspection results over HTTP.
type Server struct {
	cfg *Config
	log *logger.Logger
	cat catalog.Catalog
	ins *inspect.Introspector
}

// New assembles a Server on top of an open catalog connection.
// A nil log falls back to the default logger.
func New(cfg *Config, log *logger.Logger, cat catalog.Catalog, opt inspect.Options) *Server {
	if log == nil {
		log = logger.New(nil)
	}
	return &Server{
		cfg: cfg,
		log: log,
		cat: cat,
		ins: inspect.New(cat, log, opt),
	}
}

// Start runs the listener until ctx is cancelled, then drains in-flight
// requests for at most ShutdownTimeout.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	failed := make(chan error, 1)
	go func() {
		s.log.Infof("http server listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.log.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
