// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server     ServerConfig
	Backend    BackendConfig
	Store      StoreConfig
	Processing ProcessingConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
	Telemetry  TelemetryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// BackendConfig points the persistence proxy at the backend REST service.
// An empty URL selects the local store.
type BackendConfig struct {
	URL string `env:"BACKEND_URL" envAlt:"FLASK_API_URL"`

	// APIKey is sent as the x-api-key header when set
	APIKey string `env:"BACKEND_API_KEY" envAlt:"FLASK_API_KEY"`

	// Timeout bounds a single backend request (default: 15s)
	Timeout time.Duration `env:"BACKEND_TIMEOUT" default:"15s"`

	// RetryAttempts is the total attempts for idempotent requests (default: 2)
	RetryAttempts int `env:"BACKEND_RETRY_ATTEMPTS" default:"2"`

	// RetryBackoff is the base delay; attempt n waits n*RetryBackoff (default: 1s)
	RetryBackoff time.Duration `env:"BACKEND_RETRY_BACKOFF" default:"1s"`
}

// Enabled reports whether a backend is configured.
func (c *BackendConfig) Enabled() bool {
	return c.URL != ""
}

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// StoreConfig selects the local key-value store used without a backend.
type StoreConfig struct {
	// Driver is memory, file or postgres (default: file)
	Driver string `env:"STORE_DRIVER" default:"file"`

	// Path is the JSON file used by the file driver
	Path string `env:"STORE_PATH" default:"data/autoprep.json"`

	// DatabaseURL is the PostgreSQL connection string for the postgres driver
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ProcessingConfig bounds dataset processing.
type ProcessingConfig struct {
	// MaxBodySize is the largest accepted request body in bytes (default: 25MB)
	MaxBodySize int64 `env:"PROCESSING_MAX_BODY_SIZE" default:"26214400"`

	// MaxConcurrent is the number of datasets processed at once (default: 4)
	MaxConcurrent int `env:"PROCESSING_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a processing slot (default: 10s)
	MaxWaitTime time.Duration `env:"PROCESSING_MAX_WAIT_TIME" default:"10s"`

	// SaveRowLimit caps the rows stored with a saved dataset (default: 1000)
	SaveRowLimit int `env:"PROCESSING_SAVE_ROW_LIMIT" default:"1000"`

	// PreviewRows caps the rows echoed back by the profile endpoint (default: 50)
	PreviewRows int `env:"PROCESSING_PREVIEW_ROWS" default:"50"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ProcessingLimit is requests per minute for processing endpoints (default: 20)
	ProcessingLimit int `env:"RATE_LIMIT_PROCESSING" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey gates /api routes behind an X-API-Key header (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	// TracingEnabled exports spans for backend calls to stdout (default: false)
	TracingEnabled bool `env:"TRACING_ENABLED" default:"false"`

	// ServiceName labels exported spans (default: autoprep)
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"autoprep"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
