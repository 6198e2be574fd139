// Package config provides centralized configuration management for csvcut.
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
	Pipeline PipelineConfig
	Logging  LoggingConfig
	Server   ServerConfig
	History  HistoryConfig
}

// PipelineConfig holds defaults for CSV processing runs.
type PipelineConfig struct {
	// Encoding is the text encoding of input and output files (default: utf-8)
	Encoding string `env:"CSVCUT_ENCODING" default:"utf-8"`

	// SanitizeUTF8 replaces invalid UTF-8 bytes with '?' instead of passing them through
	SanitizeUTF8 bool `env:"CSVCUT_SANITIZE_UTF8" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: warn)
	Level string `env:"LOG_LEVEL" default:"warn"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing the response (default: 5m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`

	// MaxUploadSize is the largest accepted upload in bytes (default: 100MB)
	MaxUploadSize int64 `env:"SERVER_MAX_UPLOAD_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of uploads processed at once (default: 4)
	MaxConcurrent int `env:"SERVER_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long an upload waits for a processing slot (default: 30s)
	MaxWait time.Duration `env:"SERVER_MAX_WAIT" default:"30s"`

	// TrustedProxies is a comma-separated list of proxy CIDRs or addresses
	// whose X-Real-IP / X-Forwarded-For headers are believed
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// HistoryConfig holds run history settings. History is disabled when
// DatabaseURL is empty.
type HistoryConfig struct {
	// DatabaseURL is the PostgreSQL connection string (optional)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// Limit is the number of runs the history command lists (default: 20)
	Limit int `env:"HISTORY_LIMIT" default:"20"`
}

// Enabled reports whether a database is configured for run history.
func (c *HistoryConfig) Enabled() bool {
	return c.DatabaseURL != ""
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
