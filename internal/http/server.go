// Package http provides the API and admin listeners, their routers and the
// cross-cutting middleware.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	authHTTP "github.com/allisson/iou/internal/auth/http"
	authService "github.com/allisson/iou/internal/auth/service"
	"github.com/allisson/iou/internal/config"
	iouHTTP "github.com/allisson/iou/internal/iou/http"
	"github.com/allisson/iou/internal/metrics"
	"github.com/allisson/iou/internal/stream"
)

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new API server. Call SetupRouter before Start.
//
// Request contexts derive from a base context that Shutdown cancels, so open
// /iou/sse relays end instead of holding the listener until the timeout.
func NewServer(
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	baseCtx, cancelRequests := context.WithCancel(context.Background())

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No write timeout: /iou/sse responses stay open for the life of the subscription.
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}
	server.RegisterOnShutdown(cancelRequests)

	return &Server{
		logger: logger,
		server: server,
	}
}

// SetupRouter builds the gin router with all routes and middleware.
// authRateLimit may be nil when rate limiting is disabled, and meterProvider may
// be nil when metrics are disabled.
func (s *Server) SetupRouter(
	cfg *config.Config,
	authHandler *authHTTP.AuthHandler,
	iouHandler *iouHTTP.IouHandler,
	relay *stream.Relay,
	identity authService.IdentityClient,
	authRateLimit gin.HandlerFunc,
	meterProvider metric.MeterProvider,
) {
	router := gin.New()

	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	router.Use(AccessLogMiddleware(s.logger, cfg.AccessLogVerbosity))
	router.Use(CORSMiddleware(cfg.AllowedOrigins(), cfg.APIServerURL, s.logger))
	router.Use(ErrorTranslationMiddleware(s.logger, cfg.Debug))

	loginRequired := authHTTP.LoginRequiredMiddleware(identity, s.logger)

	auth := router.Group("/auth")
	{
		if authRateLimit != nil {
			auth.POST("/login", authRateLimit, authHandler.LoginHandler)
			auth.POST("/refresh", authRateLimit, authHandler.RefreshHandler)
		} else {
			auth.POST("/login", authHandler.LoginHandler)
			auth.POST("/refresh", authHandler.RefreshHandler)
		}
		auth.POST("/logout", loginRequired, authHandler.LogoutHandler)
	}

	iou := router.Group("/iou", loginRequired)
	{
		iou.GET("/sse", relay.Handler)
		iou.POST("/:amount/:payee", iouHandler.CreateHandler)
		iou.GET("/:iouId/amountOwed", iouHandler.AmountOwedHandler)
		iou.PATCH("/:iouId/pay/:amount", iouHandler.PayHandler)
		iou.PUT("/:iouId/forgive", iouHandler.ForgiveHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router is not configured")
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return s.serve(ln)
}

func (s *Server) serve(ln net.Listener) error {
	s.server.Handler = s.router

	s.logger.Info("starting api server", slog.String("addr", ln.Addr().String()))

	if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down api server")
	return s.server.Shutdown(ctx)
}
