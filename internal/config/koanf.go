// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sieve/config.yaml",
	"/etc/sieve/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8000,
			Host:         "0.0.0.0",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			Environment:  "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/sieve.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU()
		},
		Embedding: EmbeddingConfig{
			URL:               "https://api.openai.com/v1/embeddings",
			Model:             "text-embedding-3-small",
			Dimensions:        1536,
			Timeout:           10 * time.Second,
			RequestsPerSecond: 10,
		},
		Matching: MatchingConfig{
			Limit:               5,
			SimilarityThreshold: 0.75,
		},
		RateLimit: RateLimitConfig{
			DurationSeconds: 60,
			MaxRequests:     5,
			Paths:           []string{"/api/v1/keywords", "/api/v1/videos"},
			SweepInterval:   5 * time.Minute,
		},
		Pipeline: PipelineConfig{
			Transport:    "channel",
			NATSURL:      "nats://127.0.0.1:4222",
			Topic:        "keywords.submitted",
			QueueGroup:   "keyword-moderation",
			Timeout:      time.Minute,
			CloseTimeout: 30 * time.Second,
			DedupWindow:  5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:         true,
			RetentionDays:   90,
			BufferSize:      1000,
			CleanupInterval: 24 * time.Hour,
		},
		Security: SecurityConfig{
			AuthMode:    "jwt",
			CORSOrigins: []string{"*"},
		},
		API: APIConfig{
			DefaultPageSize: 50,
			MaxPageSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Optional YAML config file
//  3. Environment variables
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they come from env vars.
var sliceConfigPaths = []string{
	"rate_limit.paths",
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			// unset, or already a slice from defaults/YAML
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}

		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":     "server.port",
	"http_host":     "server.host",
	"read_timeout":  "server.read_timeout",
	"write_timeout": "server.write_timeout",
	"environment":   "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_demo_data":    "database.seed_demo_data",

	// Embedding provider
	"embedding_url":                 "embedding.url",
	"embedding_api_key":             "embedding.api_key",
	"embedding_model":               "embedding.model",
	"embedding_dimensions":          "embedding.dimensions",
	"embedding_timeout":             "embedding.timeout",
	"embedding_requests_per_second": "embedding.requests_per_second",

	// Similarity matching
	"match_limit":          "matching.limit",
	"similarity_threshold": "matching.similarity_threshold",

	// Rate limiting
	"rate_limit_duration":       "rate_limit.duration_seconds",
	"rate_limit_max_requests":   "rate_limit.max_requests",
	"rate_limit_paths":          "rate_limit.paths",
	"rate_limit_disabled":       "rate_limit.disabled",
	"rate_limit_sweep_interval": "rate_limit.sweep_interval",

	// Keyword pipeline
	"pipeline_transport":     "pipeline.transport",
	"nats_url":               "pipeline.nats_url",
	"pipeline_topic":         "pipeline.topic",
	"pipeline_queue_group":   "pipeline.queue_group",
	"pipeline_timeout":       "pipeline.timeout",
	"pipeline_close_timeout": "pipeline.close_timeout",
	"pipeline_dedup_window":  "pipeline.dedup_window",

	// Audit trail
	"audit_enabled":          "audit.enabled",
	"audit_retention_days":   "audit.retention_days",
	"audit_buffer_size":      "audit.buffer_size",
	"audit_cleanup_interval": "audit.cleanup_interval",

	// Security
	"auth_mode":    "security.auth_mode",
	"jwt_secret":   "security.jwt_secret",
	"cors_origins": "security.cors_origins",

	"trust_proxy_headers": "security.trust_proxy_headers",

	// API
	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unknown variables are ignored.
//
// Examples:
//   - RATE_LIMIT_DURATION -> rate_limit.duration_seconds
//   - SIMILARITY_THRESHOLD -> matching.similarity_threshold
//   - DUCKDB_PATH -> database.path
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
