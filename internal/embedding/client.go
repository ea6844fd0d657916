// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

/*
Package embedding is the client for the text embedding provider.

The provider speaks the OpenAI-compatible protocol:

	POST {url}  {"model": "...", "input": "...", "dimensions": N}
	200         {"data": [{"index": 0, "embedding": [0.1, ...]}]}

Every Embed call is one fresh provider request: there is no cache and no
retry. Calls are paced by a token bucket, bounded by a per-call timeout and
guarded by a circuit breaker. All failures surface as *ProviderError.
*/
package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/sieve/internal/config"
	"github.com/tomtom215/sieve/internal/metrics"
)

// maxResponseBytes caps the provider response body (a 3072-dim vector is ~70KB).
const maxResponseBytes = 4 << 20

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

var _ Embedder = (*Client)(nil)

// Client calls the embedding provider.
type Client struct {
	url        string
	apiKey     string
	model      string
	dimensions int
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]float32]
}

type embedRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates a provider client from cfg.
func NewClient(cfg config.EmbeddingConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = int(math.Max(1, math.Ceil(cfg.RequestsPerSecond)))
	}

	return &Client{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		timeout:    timeout,
		httpClient: &http.Client{
			Timeout: timeout + time.Second,
		},
		limiter: rate.NewLimiter(limit, burst),
		cb:      newBreaker("embedding-provider"),
	}
}

// Embed returns the embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ProviderError{Op: "embed", Err: errors.New("empty input")}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordEmbeddingRequest("rejected", 0)
		return nil, &ProviderError{Op: "throttle", Err: err}
	}

	start := time.Now()
	vec, err := c.cb.Execute(func() ([]float32, error) {
		return c.call(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordEmbeddingRequest("rejected", 0)
			return nil, &ProviderError{Op: "circuit", Err: err}
		}
		metrics.RecordEmbeddingRequest("failure", time.Since(start))
		var pe *ProviderError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, &ProviderError{Op: "embed", Err: err}
	}

	metrics.RecordEmbeddingRequest("success", time.Since(start))
	return vec, nil
}

func (c *Client) call(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: text, Dimensions: c.dimensions})
	if err != nil {
		return nil, &ProviderError{Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ProviderError{Op: "read", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{Op: "response", StatusCode: resp.StatusCode, Err: errors.New(errorMessage(raw))}
	}

	var decoded embedResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ProviderError{Op: "decode", StatusCode: resp.StatusCode, Err: err}
	}
	if len(decoded.Data) == 0 || len(decoded.Data[0].Embedding) == 0 {
		return nil, &ProviderError{Op: "decode", StatusCode: resp.StatusCode, Err: errors.New("response carries no embedding")}
	}

	return c.toVector(decoded.Data[0].Embedding)
}

func (c *Client) toVector(values []float64) ([]float32, error) {
	if c.dimensions > 0 && len(values) != c.dimensions {
		return nil, &ProviderError{Op: "decode", Err: fmt.Errorf("embedding has %d dimensions, want %d", len(values), c.dimensions)}
	}
	vec := make([]float32, len(values))
	for i, v := range values {
		f := float32(v)
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil, &ProviderError{Op: "decode", Err: fmt.Errorf("embedding component %d is not finite", i)}
		}
		vec[i] = f
	}
	return vec, nil
}

// errorMessage extracts the provider's error message or falls back to a
// truncated body.
func errorMessage(raw []byte) string {
	var decoded embedResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error != nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "empty response body"
	}
	return msg
}
