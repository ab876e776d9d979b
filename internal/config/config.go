// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Access log verbosity levels.
const (
	AccessLogNone = "none"
	AccessLogMin  = "min"
	AccessLogMax  = "max"
)

// Auth request body formats.
const (
	AuthRequestFormatJSON      = "json"
	AuthRequestFormatForm      = "form"
	AuthRequestFormatNegotiate = "negotiate"
)

// AllowAllOrigins is the CORS_ALLOWED_ORIGINS value that disables the origin allow-list.
const AllowAllOrigins = "*"

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the servers will bind to.
	ServerHost string
	// ServerPort is the port number of the main API listener.
	ServerPort int
	// AdminPort is the port number of the admin listener serving /health and /metrics.
	AdminPort int
	// ShutdownTimeout bounds graceful shutdown of both listeners.
	ShutdownTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string
	// AccessLogVerbosity is one of "none", "min" or "max".
	AccessLogVerbosity string
	// Debug enables logging of request decode failure details. These may contain user input.
	Debug bool

	// KeycloakURL is the base URL of the identity provider.
	KeycloakURL string
	// KeycloakHost overrides the Host header sent to the identity provider when not empty.
	KeycloakHost string
	// KeycloakRealm is the identity provider realm.
	KeycloakRealm string
	// KeycloakClientID is the OAuth2 client id used for password and refresh grants.
	KeycloakClientID string
	// KeycloakMaxRetries is the number of retries for identity provider calls.
	KeycloakMaxRetries int
	// KeycloakRetryPeriod is the wait between identity provider retries.
	KeycloakRetryPeriod time.Duration

	// EngineURL is the base URL of the protocol engine.
	EngineURL string
	// EngineMaxRetries is the number of retries for engine calls and for the startup readiness wait.
	EngineMaxRetries int
	// EngineRetryPeriod is the wait between engine retries.
	EngineRetryPeriod time.Duration
	// ReadStreamsMaxReconnections is the number of times a notification stream is re-established.
	ReadStreamsMaxReconnections int
	// ReadStreamsReconnectionPeriod is the wait between notification stream reconnections.
	ReadStreamsReconnectionPeriod time.Duration

	// UpstreamTimeout is the HTTP client timeout for identity provider and engine requests.
	UpstreamTimeout time.Duration

	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS, or "*".
	CORSAllowOrigins string
	// APIServerURL is the public URL of this service, used as the CORS fallback origin.
	APIServerURL string

	// AuthRequestFormat selects how /auth request bodies are decoded.
	AuthRequestFormat string

	// RateLimitAuthEnabled indicates whether rate limiting for the /auth endpoints is enabled.
	RateLimitAuthEnabled bool
	// RateLimitAuthRequestsPerSec is the number of requests allowed per second and IP.
	RateLimitAuthRequestsPerSec float64
	// RateLimitAuthBurst is the burst size for the /auth rate limiter.
	RateLimitAuthBurst int

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Servers
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("SERVER_PORT", 8080),
		AdminPort:       env.GetInt("ADMIN_PORT", 8000),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),

		// Logging
		LogLevel:           env.GetString("LOG_LEVEL", "info"),
		AccessLogVerbosity: env.GetString("ACCESS_LOG_VERBOSITY", AccessLogMin),
		Debug:              env.GetBool("DEBUG_REQUEST_RESPONSE", false),

		// Identity provider
		KeycloakURL:         env.GetString("KEYCLOAK_URL", "http://localhost:11000"),
		KeycloakHost:        env.GetString("KEYCLOAK_HOST", ""),
		KeycloakRealm:       env.GetString("KEYCLOAK_REALM", "seed"),
		KeycloakClientID:    env.GetString("KEYCLOAK_CLIENT_ID", "seed"),
		KeycloakMaxRetries:  env.GetInt("KEYCLOAK_MAX_RETRIES", 2),
		KeycloakRetryPeriod: env.GetDuration("KEYCLOAK_RETRY_PERIOD_SECONDS", 1, time.Second),

		// Engine
		EngineURL:                     env.GetString("ENGINE_URL", "http://localhost:12000"),
		EngineMaxRetries:              env.GetInt("SEED_MAX_ENGINE_RETRIES", 20),
		EngineRetryPeriod:             env.GetDuration("SEED_ENGINE_RETRY_PERIOD_SECONDS", 5, time.Second),
		ReadStreamsMaxReconnections:   env.GetInt("SEED_READ_STREAMS_MAX_RECONNECTIONS", 30),
		ReadStreamsReconnectionPeriod: env.GetDuration("SEED_READ_STREAMS_RECONNECTION_PERIOD_SECONDS", 10, time.Second),

		UpstreamTimeout: env.GetDuration("UPSTREAM_TIMEOUT_SECONDS", 10, time.Second),

		// CORS
		CORSAllowOrigins: env.GetString("CORS_ALLOWED_ORIGINS", ""),
		APIServerURL:     env.GetString("API_SERVER_URL", "http://localhost:8080"),

		// Auth
		AuthRequestFormat: env.GetString("AUTH_REQUEST_FORMAT", AuthRequestFormatNegotiate),

		// Rate Limiting for /auth (IP-based, unauthenticated)
		RateLimitAuthEnabled:        env.GetBool("RATE_LIMIT_AUTH_ENABLED", true),
		RateLimitAuthRequestsPerSec: env.GetFloat64("RATE_LIMIT_AUTH_REQUESTS_PER_SEC", 5.0),
		RateLimitAuthBurst:          env.GetInt("RATE_LIMIT_AUTH_BURST", 10),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "iou"),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// AllowedOrigins returns the trimmed, non-empty entries of CORSAllowOrigins.
func (c *Config) AllowedOrigins() []string {
	if c.CORSAllowOrigins == "" {
		return nil
	}

	parts := strings.Split(c.CORSAllowOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
