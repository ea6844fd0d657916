// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testJWTSecret
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, "DUCKDB_PATH"},
		{"bad embedding url", func(c *Config) { c.Embedding.URL = "ftp://x" }, "EMBEDDING_URL"},
		{"production without api key", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.CORSOrigins = []string{"https://app.example.com"}
		}, "EMBEDDING_API_KEY"},
		{"zero match limit", func(c *Config) { c.Matching.Limit = 0 }, "MATCH_LIMIT"},
		{"window too long", func(c *Config) { c.RateLimit.DurationSeconds = 7200 }, "RATE_LIMIT_DURATION"},
		{"relative path prefix", func(c *Config) { c.RateLimit.Paths = []string{"api"} }, "RATE_LIMIT_PATHS"},
		{"disabled limiter skips bounds", func(c *Config) {
			c.RateLimit.Disabled = true
			c.RateLimit.MaxRequests = 0
		}, ""},
		{"nats without url", func(c *Config) {
			c.Pipeline.Transport = "nats"
			c.Pipeline.NATSURL = ""
		}, "NATS_URL"},
		{"negative dedup window", func(c *Config) { c.Pipeline.DedupWindow = -time.Second }, "PIPELINE_DEDUP_WINDOW"},
		{"zero audit retention", func(c *Config) { c.Audit.RetentionDays = 0 }, "AUDIT_RETENTION_DAYS"},
		{"audit cleanup too frequent", func(c *Config) { c.Audit.CleanupInterval = time.Second }, "AUDIT_CLEANUP_INTERVAL"},
		{"disabled audit skips bounds", func(c *Config) {
			c.Audit.Enabled = false
			c.Audit.BufferSize = 0
		}, ""},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "short" }, "JWT_SECRET"},
		{"auth none in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Embedding.APIKey = "sk-test"
			c.Security.AuthMode = "none"
		}, "AUTH_MODE"},
		{"wildcard cors in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Embedding.APIKey = "sk-test"
		}, "CORS_ORIGINS"},
		{"default page size above max", func(c *Config) { c.API.DefaultPageSize = 500 }, "API_DEFAULT_PAGE_SIZE"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
