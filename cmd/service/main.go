// Package main is the entry point for the service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mdclab/mdc-service/internal/adapters/http"
	"github.com/mdclab/mdc-service/internal/adapters/http/handlers"
	"github.com/mdclab/mdc-service/internal/app"
	"github.com/mdclab/mdc-service/internal/platform/config"
	"github.com/mdclab/mdc-service/internal/platform/logging"
	"github.com/mdclab/mdc-service/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Create the async executor with its worker pool
	executor := app.NewExecutor(app.ExecutorConfig{
		Workers:    cfg.Executor.Workers,
		QueueSize:  cfg.Executor.QueueSize,
		Logger:     logger,
		Registerer: prometheus.DefaultRegisterer,
	})

	// 5. Create health registry and register the executor
	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(executor); err != nil {
		return fmt.Errorf("registering executor health check: %w", err)
	}

	// 6. Create application services
	orderService := app.NewOrderService(executor)
	notificationService := app.NewNotificationService(executor)

	// 7. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	// 8. Create HTTP server
	server := http.New(&cfg.Server, logger)

	// 9. Setup router with all middleware and routes
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:              logger,
		HealthHandler:       handlers.NewHealthHandler(healthRegistry, buildInfo),
		DemoHandler:         handlers.NewDemoHandler(),
		OrderHandler:        handlers.NewOrderHandler(orderService),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		Timeout:             http.DefaultRequestTimeout,
	})

	// 10. Start server (non-blocking)
	serverErr := server.Start()

	// 11. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, executor, serverErr, cfg)
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then gracefully stops the HTTP server and drains the executor.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	executor *app.Executor,
	serverErr <-chan error,
	cfg *config.Config,
) error {
	// Listen for OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		// Server error during startup or runtime
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	logger.Info("initiating graceful shutdown",
		slog.Duration("server_timeout", cfg.Server.ShutdownTimeout),
		slog.Duration("executor_timeout", cfg.Executor.ShutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Drain queued pool tasks
	executorCtx, cancelExecutor := context.WithTimeout(ctx, cfg.Executor.ShutdownTimeout)
	defer cancelExecutor()

	if err := executor.Shutdown(executorCtx); err != nil {
		return fmt.Errorf("executor shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
