// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

// Package matcher finds catalog items semantically similar to a word by
// embedding it and ranking stored content vectors by cosine similarity.
package matcher

import (
	"context"
	"math"
	"sort"

	"github.com/tomtom215/sieve/internal/embedding"
	"github.com/tomtom215/sieve/internal/metrics"
	"github.com/tomtom215/sieve/internal/models"
)

// Default match options.
const (
	DefaultLimit     = 5
	DefaultThreshold = 0.75
)

// VectorIndex returns the stored content vectors nearest to vec, best first.
type VectorIndex interface {
	QueryNearest(ctx context.Context, vec []float32, limit int) ([]models.ContentScore, error)
}

// MatchOptions bounds a match. Zero values fall back to the matcher defaults.
type MatchOptions struct {
	Limit     int
	Threshold float64
}

// Match is one content item at or above the similarity threshold.
type Match struct {
	ContentID string  `json:"content_id"`
	Score     float64 `json:"score"`
}

// Matcher ranks content against words.
type Matcher struct {
	embedder embedding.Embedder
	index    VectorIndex
	defaults MatchOptions
}

// New creates a Matcher. Non-positive defaults are replaced by
// DefaultLimit and DefaultThreshold.
func New(embedder embedding.Embedder, index VectorIndex, defaults MatchOptions) *Matcher {
	if defaults.Limit <= 0 {
		defaults.Limit = DefaultLimit
	}
	if defaults.Threshold <= 0 {
		defaults.Threshold = DefaultThreshold
	}
	return &Matcher{embedder: embedder, index: index, defaults: defaults}
}

// Defaults returns the options applied when a caller passes zero values.
func (m *Matcher) Defaults() MatchOptions {
	return m.defaults
}

// Match embeds word and returns up to opts.Limit content items whose cosine
// similarity is at least opts.Threshold, highest score first. Equal scores
// keep the index order. No qualifying item yields an empty slice.
//
// Embedding and index failures are returned as *embedding.ProviderError.
func (m *Matcher) Match(ctx context.Context, word string, opts MatchOptions) ([]Match, error) {
	if opts.Limit <= 0 {
		opts.Limit = m.defaults.Limit
	}
	if opts.Threshold <= 0 {
		opts.Threshold = m.defaults.Threshold
	}

	vec, err := m.embedder.Embed(ctx, word)
	if err != nil {
		if embedding.IsProviderError(err) {
			return nil, err
		}
		return nil, &embedding.ProviderError{Op: "embed", Err: err}
	}

	candidates, err := m.index.QueryNearest(ctx, vec, opts.Limit)
	if err != nil {
		return nil, &embedding.ProviderError{Op: "vector index", Err: err}
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if math.IsNaN(c.Score) || c.Score < opts.Threshold {
			continue
		}
		matches = append(matches, Match{ContentID: c.ContentID, Score: c.Score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	metrics.MatcherResults.Observe(float64(len(matches)))
	return matches, nil
}
