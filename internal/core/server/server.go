// Package server wires the HTTP surface and owns its lifecycle.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateonav/geolayers/internal/core/config"
	"github.com/mateonav/geolayers/internal/core/health"
	middleware "github.com/mateonav/geolayers/internal/core/middleware"
	"github.com/mateonav/geolayers/internal/core/router"
	"github.com/mateonav/geolayers/internal/memo"
)

// NewHandler assembles the router. rr gates readiness and may be nil;
// mz may be nil when memoization is disabled.
func NewHandler(cfg config.Config, logger *slog.Logger, mz *memo.Memoizer, rr health.ReadinessReporter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(rr))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(g chi.Router) {
		g.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		g.Post("/compose", router.HandleCompose(logger, cfg, mz))
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
