// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Rate limit bounds.
const (
	MinRateLimitRequests = 1
	MaxRateLimitRequests = 100000
	MinRateLimitDuration = 1    // seconds
	MaxRateLimitDuration = 3600 // seconds
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"json": true, "console": true,
}

var validTransports = map[string]bool{
	"channel": true, "nats": true,
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	u, err := url.Parse(c.Embedding.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("EMBEDDING_URL must be an http(s) URL, got %q", c.Embedding.URL)
	}
	if c.Embedding.Dimensions < 1 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive")
	}
	if c.Embedding.Timeout <= 0 {
		return fmt.Errorf("EMBEDDING_TIMEOUT must be positive")
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("EMBEDDING_REQUESTS_PER_SECOND must be >= 0")
	}
	if c.IsProduction() && c.Embedding.APIKey == "" {
		return fmt.Errorf("EMBEDDING_API_KEY is required in production")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Limit < 1 {
		return fmt.Errorf("MATCH_LIMIT must be at least 1")
	}
	if c.Matching.SimilarityThreshold < -1 || c.Matching.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be between -1 and 1")
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	if c.RateLimit.Disabled {
		return nil
	}
	if c.RateLimit.MaxRequests < MinRateLimitRequests || c.RateLimit.MaxRequests > MaxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be between %d and %d",
			MinRateLimitRequests, MaxRateLimitRequests)
	}
	if c.RateLimit.DurationSeconds < MinRateLimitDuration || c.RateLimit.DurationSeconds > MaxRateLimitDuration {
		return fmt.Errorf("RATE_LIMIT_DURATION must be between %d and %d seconds",
			MinRateLimitDuration, MaxRateLimitDuration)
	}
	for _, p := range c.RateLimit.Paths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("RATE_LIMIT_PATHS entries must start with '/', got %q", p)
		}
	}
	if c.RateLimit.SweepInterval != 0 && c.RateLimit.SweepInterval < time.Second {
		return fmt.Errorf("RATE_LIMIT_SWEEP_INTERVAL must be 0 (disabled) or at least 1s")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if !validTransports[c.Pipeline.Transport] {
		return fmt.Errorf("PIPELINE_TRANSPORT must be one of: channel, nats")
	}
	if c.Pipeline.Transport == "nats" && c.Pipeline.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required when PIPELINE_TRANSPORT=nats")
	}
	if c.Pipeline.Topic == "" {
		return fmt.Errorf("PIPELINE_TOPIC is required")
	}
	if c.Pipeline.Timeout <= 0 {
		return fmt.Errorf("PIPELINE_TIMEOUT must be positive")
	}
	if c.Pipeline.DedupWindow < 0 {
		return fmt.Errorf("PIPELINE_DEDUP_WINDOW must not be negative")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if !c.Audit.Enabled {
		return nil
	}
	if c.Audit.RetentionDays < 1 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be at least 1")
	}
	if c.Audit.BufferSize < 1 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must be at least 1")
	}
	if c.Audit.CleanupInterval != 0 && c.Audit.CleanupInterval < time.Minute {
		return fmt.Errorf("AUDIT_CLEANUP_INTERVAL must be 0 (disabled) or at least 1m")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters when AUTH_MODE=jwt")
		}
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed in production")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: jwt, none")
	}

	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
			}
		}
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.MaxPageSize < 1 {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be at least 1")
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be between 1 and API_MAX_PAGE_SIZE")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
