package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	"github.com/allisson/iou/internal/metrics"
)

// ReadinessProbe is implemented by the upstream clients checked by /health.
type ReadinessProbe interface {
	Ready(ctx context.Context) bool
}

// Upstream is a named dependency reported by /health.
type Upstream struct {
	Name  string
	URL   string
	Probe ReadinessProbe
}

// AdminServer serves /health and /metrics on a separate listener.
type AdminServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewAdminServer creates the admin listener. /health is 200 only once every
// upstream is ready, checked in order. /metrics is registered when
// metricsHandler is not nil and is measured when meterProvider is not nil.
func NewAdminServer(
	host string,
	port int,
	logger *slog.Logger,
	upstreams []Upstream,
	metricsHandler http.Handler,
	meterProvider metric.MeterProvider,
	metricsNamespace string,
) *AdminServer {
	router := gin.New()
	router.Use(gin.Recovery())
	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, metricsNamespace))
	}

	router.GET("/health", healthHandler(upstreams))
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	return &AdminServer{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

func healthHandler(upstreams []Upstream) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, upstream := range upstreams {
			if !upstream.Probe.Ready(c.Request.Context()) {
				c.String(http.StatusServiceUnavailable, "Waiting for %s on %s", upstream.Name, upstream.URL)
				return
			}
		}
		c.String(http.StatusOK, "OK")
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *AdminServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the admin HTTP server.
func (s *AdminServer) Start(ctx context.Context) error {
	s.logger.Info("starting admin server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start admin server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the admin HTTP server.
func (s *AdminServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down admin server")
	return s.server.Shutdown(ctx)
}
