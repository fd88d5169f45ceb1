// Package main is the entry point for the Trailcast API server.
//
// It loads configuration, wires the repositories, the weather provider and
// the metrics backend into the core chassis, and serves requests. Locally it
// listens on the configured port; inside AWS Lambda it serves API Gateway
// HTTP API events through the same router.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"trailcast/internal/api/handlers"
	"trailcast/internal/config"
	"trailcast/internal/core"
	"trailcast/internal/db"
	"trailcast/internal/external"
	"trailcast/internal/forecasts"
	"trailcast/internal/outlook"
	"trailcast/internal/telemetry"
	"trailcast/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("trailcast API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"metrics_backend", cfg.Observability.MetricsBackend,
	)

	app, err := buildApp(context.Background(), cfg, logger, clockwork.NewRealClock())
	if err != nil {
		return err
	}

	if isLambdaEnvironment() {
		return runLambda(app, logger)
	}
	return runHTTPServer(app.server, cfg, logger)
}

// app is the fully wired server plus the hooks the runtimes need.
type app struct {
	server *core.Server
	// flush publishes buffered metrics. Nil unless the backend buffers.
	flush func(context.Context) error
}

// repositories groups the storage backends for the selected mode.
type repositories struct {
	activities     types.ActivityRepository
	users          types.UserRepository
	userActivities types.UserActivityRepository
}

// buildApp wires every dependency and mounts the routes. Resources that need
// releasing are registered as server closers.
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, clock clockwork.Clock) (*app, error) {
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	a := &app{server: srv}

	metrics, err := newMetrics(ctx, cfg, clock, logger, a)
	if err != nil {
		return nil, err
	}
	srv.Metrics = metrics

	repos, err := newRepositories(ctx, cfg, logger, srv)
	if err != nil {
		return nil, err
	}

	clients := external.NewClientRegistry(cfg, clock, logger)
	weather := forecasts.NewService(clients.Weather, forecasts.Options{
		Horizon:  cfg.Scoring.HorizonHours,
		CacheTTL: cfg.Weather.CacheTTL,
		Clock:    clock,
		Logger:   logger.With("component", "forecasts"),
		Failures: metrics,
	})
	outlooks := outlook.NewService(weather, repos.activities, repos.users, repos.userActivities, outlook.Options{
		DefaultThreshold: cfg.Scoring.DefaultThreshold,
		Metrics:          metrics,
		Logger:           logger.With("component", "outlook"),
	})

	activityHandler := handlers.NewActivityHandler(repos.activities, logger)
	scoreHandler := handlers.NewScoreHandler(outlooks, repos.activities, srv.Validator, cfg.Scoring.DefaultThreshold, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { r.Route("/activities", activityHandler.RegisterRoutes) },
		scoreHandler.RegisterRoutes,
	)

	srv.Clock = clock
	srv.RateLimitStore = core.NewMemoryRateLimitStore(clock)
	srv.MountRoutes()
	return a, nil
}

// newRepositories returns the in-memory store in local and test mode, and
// Postgres repositories otherwise.
func newRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger, srv *core.Server) (*repositories, error) {
	if cfg.UsesStubs() {
		store := db.NewMemoryStore(db.DefaultCatalog())
		if err := db.SeedDemoUser(store); err != nil {
			return nil, fmt.Errorf("seeding demo user: %w", err)
		}
		logger.Info("using in-memory store", "demo_user_id", db.DemoUserID)
		return &repositories{activities: store, users: store, userActivities: store}, nil
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	srv.Closers = append(srv.Closers, func(context.Context) error {
		pool.Close()
		return nil
	})

	if err := db.Migrate(ctx, pool); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	if err := db.SeedCatalog(ctx, pool); err != nil {
		return nil, fmt.Errorf("seeding catalog: %w", err)
	}

	srv.HealthCheckers = append(srv.HealthCheckers, db.NewPoolChecker(pool))
	return &repositories{
		activities:     db.NewActivityRepository(pool),
		users:          db.NewUserRepository(pool),
		userActivities: db.NewUserActivityRepository(pool),
	}, nil
}

// newMetrics builds the configured metrics backend. Prometheus is scraped at
// /metrics; CloudWatch is buffered and flushed in the background.
func newMetrics(ctx context.Context, cfg *config.Config, clock clockwork.Clock, logger *slog.Logger, a *app) (telemetry.Recorder, error) {
	obs := cfg.Observability
	switch obs.MetricsBackend {
	case config.MetricsPrometheus:
		prom := telemetry.NewPrometheusCollector(obs.MetricNamespace)
		a.server.MetricsHandler = prom.Handler()
		return prom, nil

	case config.MetricsCloudWatch:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(obs.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("loading AWS SDK config: %w", err)
		}
		client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			if obs.AWSEndpointURL != "" {
				o.BaseEndpoint = aws.String(obs.AWSEndpointURL)
			}
		})
		cw := telemetry.NewCloudWatchCollector(client, obs.MetricNamespace, clock, logger.With("component", "cloudwatch"))

		runCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			cw.Run(runCtx, telemetry.DefaultFlushInterval)
		}()
		a.flush = cw.Flush
		a.server.Closers = append(a.server.Closers, func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		return cw, nil

	default:
		return telemetry.Nop{}, nil
	}
}

// isLambdaEnvironment returns true if the process is running inside AWS Lambda.
func isLambdaEnvironment() bool {
	_, hasRuntimeAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	_, hasServerPort := os.LookupEnv("_LAMBDA_SERVER_PORT")
	return hasRuntimeAPI || hasServerPort
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	// Database pool and metrics flusher.
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
