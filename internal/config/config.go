// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

// Package config loads Sieve's layered configuration (defaults, optional YAML
// file, environment variables) using koanf.
package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Matching  MatchingConfig  `koanf:"matching"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Audit     AuditConfig     `koanf:"audit"`
	Security  SecurityConfig  `koanf:"security"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	Host         string        `koanf:"host"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	Environment  string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings. The same database file stores the
// catalog, the moderation relations and the content embeddings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// SeedDemoData inserts a small demo catalog on an empty database.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// EmbeddingConfig holds embedding provider settings. The provider speaks the
// OpenAI-compatible POST /embeddings protocol.
type EmbeddingConfig struct {
	URL               string        `koanf:"url"`
	APIKey            string        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	Dimensions        int           `koanf:"dimensions"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// MatchingConfig holds similarity matcher defaults.
type MatchingConfig struct {
	Limit               int     `koanf:"limit"`
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
}

// RateLimitConfig holds sliding-window admission settings.
type RateLimitConfig struct {
	// DurationSeconds is the window length in seconds.
	DurationSeconds int `koanf:"duration_seconds"`
	MaxRequests     int `koanf:"max_requests"`

	// Paths lists the URL path prefixes that are rate limited.
	// An empty list limits every path.
	Paths []string `koanf:"paths"`

	Disabled      bool          `koanf:"disabled"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// Window returns the sliding window length.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.DurationSeconds) * time.Second
}

// PipelineConfig holds keyword moderation transport settings.
type PipelineConfig struct {
	// Transport is "channel" (in-process) or "nats".
	Transport    string        `koanf:"transport"`
	NATSURL      string        `koanf:"nats_url"`
	Topic        string        `koanf:"topic"`
	QueueGroup   string        `koanf:"queue_group"`
	Timeout      time.Duration `koanf:"timeout"`
	CloseTimeout time.Duration `koanf:"close_timeout"`

	// DedupWindow suppresses republishing an identical (user, word)
	// submission seen within the window. Zero disables it.
	DedupWindow time.Duration `koanf:"dedup_window"`
}

// AuditConfig holds moderation audit trail settings.
type AuditConfig struct {
	Enabled         bool          `koanf:"enabled"`
	RetentionDays   int           `koanf:"retention_days"`
	BufferSize      int           `koanf:"buffer_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// SecurityConfig holds authentication and CORS settings.
type SecurityConfig struct {
	// AuthMode is "jwt" or "none". With "none" the X-User-ID header is trusted,
	// which is only accepted outside production.
	AuthMode    string   `koanf:"auth_mode"`
	JWTSecret   string   `koanf:"jwt_secret"`
	CORSOrigins []string `koanf:"cors_origins"`

	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers;
	// otherwise the socket address is used.
	TrustProxyHeaders bool `koanf:"trust_proxy_headers"`
}

// APIConfig holds pagination bounds.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all sources.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the service runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
