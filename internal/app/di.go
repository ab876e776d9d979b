// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	authHTTP "github.com/allisson/iou/internal/auth/http"
	authService "github.com/allisson/iou/internal/auth/service"
	authUseCase "github.com/allisson/iou/internal/auth/usecase"
	"github.com/allisson/iou/internal/config"
	engineService "github.com/allisson/iou/internal/engine/service"
	"github.com/allisson/iou/internal/http"
	iouHTTP "github.com/allisson/iou/internal/iou/http"
	iouUseCase "github.com/allisson/iou/internal/iou/usecase"
	"github.com/allisson/iou/internal/metrics"
	"github.com/allisson/iou/internal/stream"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Background work started by components (rate limiter cleanup) stops with this context.
	ctx    context.Context
	cancel context.CancelFunc

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Upstream clients
	identityClient       authService.IdentityClient
	forwardAuthorization *authService.ForwardAuthorization
	engineClient         engineService.EngineClient

	// Use Cases
	tokenUseCase authUseCase.TokenUseCase
	iouUseCase   iouUseCase.IouUseCase

	// HTTP
	authHandler   *authHTTP.AuthHandler
	iouHandler    *iouHTTP.IouHandler
	relay         *stream.Relay
	authRateLimit gin.HandlerFunc

	// Servers
	httpServer  *http.Server
	adminServer *http.AdminServer

	// Initialization flags and mutex for thread-safety
	mu                       sync.Mutex
	loggerInit               sync.Once
	metricsProviderInit      sync.Once
	businessMetricsInit      sync.Once
	identityClientInit       sync.Once
	forwardAuthorizationInit sync.Once
	engineClientInit         sync.Once
	tokenUseCaseInit         sync.Once
	iouUseCaseInit           sync.Once
	authHandlerInit          sync.Once
	iouHandlerInit           sync.Once
	relayInit                sync.Once
	authRateLimitInit        sync.Once
	httpServerInit           sync.Once
	adminServerInit          sync.Once
	initErrors               map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.setInitError("metricsProvider", err)
		}
	})
	if storedErr := c.initError("metricsProvider"); storedErr != nil {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// MeterProvider returns the SDK meter provider, or a no-op provider when metrics
// are disabled.
func (c *Container) MeterProvider() (metric.MeterProvider, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return noop.NewMeterProvider(), nil
	}
	return provider.MeterProvider(), nil
}

// BusinessMetrics returns the business metrics recorder.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.setInitError("businessMetrics", err)
		}
	})
	if storedErr := c.initError("businessMetrics"); storedErr != nil {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.setInitError("httpServer", err)
		}
	})
	if storedErr := c.initError("httpServer"); storedErr != nil {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// AdminServer returns the admin server serving /health and /metrics.
func (c *Container) AdminServer() (*http.AdminServer, error) {
	var err error
	c.adminServerInit.Do(func() {
		c.adminServer, err = c.initAdminServer()
		if err != nil {
			c.setInitError("adminServer", err)
		}
	})
	if storedErr := c.initError("adminServer"); storedErr != nil {
		return nil, storedErr
	}
	return c.adminServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.adminServer != nil {
		if err := c.adminServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("admin server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	c.cancel()

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

func (c *Container) setInitError(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initErrors[name] = err
}

func (c *Container) initError(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[name]
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// initHTTPServer creates the API server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	authHandler, err := c.AuthHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth handler for http server: %w", err)
	}

	iouHandler, err := c.IouHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get iou handler for http server: %w", err)
	}

	relay, err := c.Relay()
	if err != nil {
		return nil, fmt.Errorf("failed to get sse relay for http server: %w", err)
	}

	identity, err := c.IdentityClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity client for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	var meterProvider metric.MeterProvider
	if provider != nil {
		meterProvider = provider.MeterProvider()
	}

	server := http.NewServer(c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(
		c.config,
		authHandler,
		iouHandler,
		relay,
		identity,
		c.AuthRateLimit(),
		meterProvider,
	)

	return server, nil
}

// initAdminServer creates the admin server with the upstream readiness probes.
func (c *Container) initAdminServer() (*http.AdminServer, error) {
	identity, err := c.IdentityClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity client for admin server: %w", err)
	}

	engine, err := c.EngineClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get engine client for admin server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for admin server: %w", err)
	}

	upstreams := []http.Upstream{
		{Name: "Keycloak", URL: c.config.KeycloakURL, Probe: identity},
		{Name: "engine", URL: c.config.EngineURL, Probe: engine},
	}

	if provider == nil {
		return http.NewAdminServer(
			c.config.ServerHost, c.config.AdminPort, c.Logger(), upstreams, nil, nil, c.config.MetricsNamespace,
		), nil
	}

	return http.NewAdminServer(
		c.config.ServerHost,
		c.config.AdminPort,
		c.Logger(),
		upstreams,
		provider.Handler(),
		provider.MeterProvider(),
		c.config.MetricsNamespace,
	), nil
}
