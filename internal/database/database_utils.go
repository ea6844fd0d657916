// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package database

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/tomtom215/sieve/internal/metrics"
)

const (
	defaultQueryTimeout = 30 * time.Second
	maxConflictRetries  = 3
)

// ensureContext adds a 30s timeout when ctx has no deadline.
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// schemaContext bounds schema creation.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// Checkpoint forces a WAL checkpoint.
func (db *DB) Checkpoint(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	return nil
}

// withConflictRetry runs fn, retrying DuckDB optimistic-concurrency
// conflicts with a short linear backoff.
func withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err = fn(); !isTransactionConflict(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
	return err
}

// observe records query latency for operation on table.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// vectorLiteral renders v as a DuckDB list literal ("[0.1,0.2]") that is cast
// to FLOAT[] inside the query. Non-finite components are rejected because
// they have no literal form.
func vectorLiteral(v []float32) (string, error) {
	if len(v) == 0 {
		return "", fmt.Errorf("empty vector")
	}
	buf := make([]byte, 0, len(v)*10+2)
	buf = append(buf, '[')
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return "", fmt.Errorf("vector component %d is not finite", i)
		}
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, float64(f), 'g', -1, 32)
	}
	buf = append(buf, ']')
	return string(buf), nil
}
