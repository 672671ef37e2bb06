// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Clean    CleanConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 2m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"2m"`
}

// Store drivers.
const (
	StoreNone     = "none"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// StoreConfig selects where cleaning runs and exported tables are written.
type StoreConfig struct {
	// Driver is none, postgres, or sqlite (default: none)
	Driver string `env:"STORE_DRIVER" default:"none"`

	// DSN is the connection string or SQLite file path.
	// Falls back to DATABASE_URL for postgres deployments.
	DSN string `env:"STORE_DSN" envAlt:"DATABASE_URL"`

	// MaxConns is the maximum number of pooled connections (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a store driver is configured.
func (c *StoreConfig) Enabled() bool {
	return c.Driver != "" && c.Driver != StoreNone
}

// CleanConfig holds dataset loading and session settings.
type CleanConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 100MB)
	MaxFileSize int64 `env:"CLEAN_MAX_FILE_SIZE" default:"104857600"`

	// PreviewRows is the default number of rows in a preview (default: 15)
	PreviewRows int `env:"CLEAN_PREVIEW_ROWS" default:"15"`

	// SessionTTL evicts sessions idle for longer; 0 keeps them forever (default: 1h)
	SessionTTL time.Duration `env:"CLEAN_SESSION_TTL" default:"1h"`

	// JanitorInterval is how often idle sessions are checked (default: 1m)
	JanitorInterval time.Duration `env:"CLEAN_JANITOR_INTERVAL" default:"1m"`

	// DefaultEncoding is used when a load does not name one (default: utf-8)
	DefaultEncoding string `env:"CLEAN_DEFAULT_ENCODING" default:"utf-8"`

	// MaxSessions caps open sessions; 0 means unlimited (default: 100)
	MaxSessions int `env:"CLEAN_MAX_SESSIONS" default:"100"`

	// MaxConcurrentLoads is the number of files decoded at once (default: 4)
	MaxConcurrentLoads int `env:"CLEAN_MAX_CONCURRENT_LOADS" default:"4"`

	// LoadWait is how long a load waits for a free slot (default: 15s)
	LoadWait time.Duration `env:"CLEAN_LOAD_WAIT" default:"15s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for load endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey enforces X-API-Key on /api routes (default: false)
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

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
