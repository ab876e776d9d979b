package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/iou/internal/app"
	"github.com/allisson/iou/internal/config"
)

// errNotReady is retried while waiting for an upstream.
var errNotReady = errors.New("not ready")

type readinessProbe interface {
	Ready(ctx context.Context) bool
}

type lifecycle interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// RunServer starts the API and admin listeners with graceful shutdown support.
// Loads configuration, initializes the DI container, waits for the engine to
// become ready and serves until SIGINT/SIGTERM or a listener failure. Shutdown
// of both listeners is bounded by SHUTDOWN_TIMEOUT_SECONDS.
func RunServer(ctx context.Context, version string) error {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get HTTP server from container (this initializes all dependencies)
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	adminServer, err := container.AdminServer()
	if err != nil {
		return fmt.Errorf("failed to initialize admin server: %w", err)
	}

	engine, err := container.EngineClient()
	if err != nil {
		return fmt.Errorf("failed to initialize engine client: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := waitForReady(ctx, "engine", engine, cfg.EngineMaxRetries, cfg.EngineRetryPeriod, logger); err != nil {
		return err
	}

	return serve(ctx, logger, cfg.ShutdownTimeout, server, adminServer)
}

// waitForReady polls probe with a constant backoff until it reports ready,
// maxRetries is exhausted or ctx is cancelled.
func waitForReady(
	ctx context.Context,
	name string,
	probe readinessProbe,
	maxRetries int,
	period time.Duration,
	logger *slog.Logger,
) error {
	var b backoff.BackOff = backoff.NewConstantBackOff(period)
	b = backoff.WithMaxRetries(b, uint64(max(maxRetries, 0)))
	b = backoff.WithContext(b, ctx)

	err := backoff.RetryNotify(func() error {
		if probe.Ready(ctx) {
			return nil
		}
		return errNotReady
	}, b, func(_ error, wait time.Duration) {
		logger.Info("waiting for upstream", slog.String("upstream", name), slog.Duration("retry_in", wait))
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("stopped waiting for %s: %w", name, ctxErr)
		}
		return fmt.Errorf("%s is not ready after %d retries: %w", name, maxRetries, err)
	}

	logger.Info("upstream ready", slog.String("upstream", name))
	return nil
}

// serve runs every server until ctx is cancelled or one of them fails, then
// shuts all of them down within shutdownTimeout.
func serve(ctx context.Context, logger *slog.Logger, shutdownTimeout time.Duration, servers ...lifecycle) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, server := range servers {
		g.Go(func() error {
			return server.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("shutdown signal received")
		} else {
			logger.Error("server error, initiating shutdown")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}
