// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

// Package metrics holds the Prometheus instruments for Sieve. They are
// registered on the default registry and served on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Rate Limiter Metrics
	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_decisions_total",
			Help: "Admission decisions for rate limited paths",
		},
		[]string{"decision"}, // "allowed", "rejected"
	)

	RateLimitTrackedIdentities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratelimit_tracked_identities",
			Help: "Identities holding a sliding window after the last sweep",
		},
	)

	// Embedding Provider Metrics
	EmbeddingRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedding_request_duration_seconds",
			Help:    "Latency of embedding provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_requests_total",
			Help: "Embedding provider calls by result",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	// Similarity Matcher Metrics
	MatcherResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matcher_results",
			Help:    "Number of content items above the similarity threshold per match",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50},
		},
	)

	// Keyword Pipeline Metrics
	PipelineSubmissions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keyword_pipeline_submissions_total",
			Help: "Keyword submissions handed to the background pipeline",
		},
	)

	PipelineDuplicates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keyword_pipeline_duplicates_total",
			Help: "Keyword submissions suppressed as repeats within the dedup window",
		},
	)

	PipelineOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyword_pipeline_outcomes_total",
			Help: "Completed keyword pipeline runs by outcome",
		},
		[]string{"outcome"}, // "matched", "no_match", "provider_error", "persistence_error"
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "keyword_pipeline_duration_seconds",
			Help:    "End-to-end duration of a keyword pipeline run",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitDecision counts one admission decision.
func RecordRateLimitDecision(allowed bool) {
	if allowed {
		RateLimitDecisions.WithLabelValues("allowed").Inc()
		return
	}
	RateLimitDecisions.WithLabelValues("rejected").Inc()
}

// RecordEmbeddingRequest records one provider call. result is "success",
// "failure" or "rejected" (circuit open).
func RecordEmbeddingRequest(result string, duration time.Duration) {
	EmbeddingRequests.WithLabelValues(result).Inc()
	if result != "rejected" {
		EmbeddingRequestDuration.Observe(duration.Seconds())
	}
}

// RecordPipelineOutcome records a finished keyword pipeline run.
func RecordPipelineOutcome(outcome string, duration time.Duration) {
	PipelineOutcomes.WithLabelValues(outcome).Inc()
	PipelineDuration.Observe(duration.Seconds())
}
