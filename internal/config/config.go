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
	Tracker  TrackerConfig
	Import   ImportConfig
	Evidence EvidenceConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// TrackerConfig holds the test-case backend settings.
type TrackerConfig struct {
	// BaseURL is the backend API root, e.g. http://127.0.0.1:8081 (required)
	BaseURL string `env:"TRACKER_BASE_URL" envAlt:"API_BASE_URL" required:"true"`

	// Timeout bounds a single backend request (default: 30s)
	Timeout time.Duration `env:"TRACKER_TIMEOUT" default:"30s"`
}

// ImportConfig holds bulk paste import and session settings.
type ImportConfig struct {
	// MaxPasteBytes caps the size of pasted text (default: 2MB)
	MaxPasteBytes int64 `env:"IMPORT_MAX_PASTE_BYTES" default:"2097152"`

	// PreviewLength is how many characters long text shows in the preview (default: 50)
	PreviewLength int `env:"IMPORT_PREVIEW_LENGTH" default:"50"`

	// WorkspaceCacheSize is the number of sessions kept in memory (default: 1024)
	WorkspaceCacheSize int `env:"IMPORT_WORKSPACE_CACHE_SIZE" default:"1024"`

	// SessionCookie is the name of the session cookie (default: casedesk_session)
	SessionCookie string `env:"IMPORT_SESSION_COOKIE" default:"casedesk_session"`

	// ParentCookieMaxAge is how long the selected parent is remembered (default: 720h)
	ParentCookieMaxAge time.Duration `env:"IMPORT_PARENT_COOKIE_MAX_AGE" default:"720h"`
}

// EvidenceConfig holds evidence upload settings.
type EvidenceConfig struct {
	// MaxFileSize is the maximum HTML log size in bytes (default: 50MB)
	MaxFileSize int64 `env:"EVIDENCE_MAX_FILE_SIZE" default:"52428800"`

	// Timeout is the maximum duration of one upload including processing (default: 10m)
	Timeout time.Duration `env:"EVIDENCE_TIMEOUT" default:"10m"`
}

// RateLimitConfig holds rate limiting settings per client IP.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// Burst is how many requests may arrive at once (default: 30)
	Burst int `env:"RATE_LIMIT_BURST" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// SecureCookies marks session cookies Secure (default: false)
	SecureCookies bool `env:"SECURITY_SECURE_COOKIES" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds prometheus exposition settings.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Path is where metrics are served (default: /metrics)
	Path string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
