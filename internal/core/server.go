// Package core provides the API chassis for Trailcast: a chi router that runs
// as a plain HTTP server or behind API Gateway on Lambda, the global middleware
// chain, the response envelope and the health endpoint. Domain handlers are
// mounted through V1RouteRegistrars.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"trailcast/internal/config"
)

// MetricsCollector records API request telemetry.
type MetricsCollector interface {
	// RecordRequest is called once per request with the matched route
	// pattern (not the raw path) and the numeric status as a string.
	RecordRequest(method, route, status string, duration time.Duration)
}

// Server holds the dependencies of the HTTP layer.
type Server struct {
	Config         *config.Config
	Logger         *slog.Logger
	Validator      *Validator
	Metrics        MetricsCollector
	RateLimitStore RateLimitStore
	HealthCheckers []HealthChecker

	// Clock must be the clock the RateLimitStore windows on.
	Clock clockwork.Clock

	// MetricsHandler, when set, is mounted at GET /metrics.
	MetricsHandler http.Handler

	// V1RouteRegistrars mount domain handlers under /v1.
	V1RouteRegistrars []func(chi.Router)

	// Closers run in order during Shutdown.
	Closers []func(context.Context) error

	router *chi.Mux
}

// NewServer validates the critical dependencies and prepares the router. The
// caller mounts routes with MountRoutes after populating the optional fields.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		Clock:     clockwork.NewRealClock(),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router. Used by http.Server locally and by the Lambda
// adapter.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown runs every closer, continuing past failures, and returns the
// joined errors.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	var errs []error
	for _, closeFn := range s.Closers {
		if err := closeFn(ctx); err != nil {
			s.Logger.Error("error closing server resource", "error", err)
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("closing server resources: %w", err)
	}

	s.Logger.Info("server shutdown complete")
	return nil
}
