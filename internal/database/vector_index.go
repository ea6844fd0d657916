// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sieve/internal/models"
)

// nearestQuery ranks stored embeddings by cosine similarity to the query
// vector. The CASE guard keeps list_cosine_similarity away from rows with a
// different dimension. NaN scores (zero-norm vectors) are dropped because
// DuckDB sorts NaN above every number.
const nearestQuery = `
	SELECT id, score FROM (
		SELECT id,
			CASE WHEN len(embedding) = ?
				THEN CAST(list_cosine_similarity(embedding, CAST(? AS FLOAT[])) AS DOUBLE)
			END AS score
		FROM content_items
		WHERE embedding IS NOT NULL
	)
	WHERE score IS NOT NULL AND NOT isnan(score)
	ORDER BY score DESC, id ASC
	LIMIT ?`

// QueryNearest returns up to limit content items whose embeddings are most
// similar to vec, best first.
func (db *DB) QueryNearest(ctx context.Context, vec []float32, limit int) ([]models.ContentScore, error) {
	if limit <= 0 {
		return []models.ContentScore{}, nil
	}
	lit, err := vectorLiteral(vec)
	if err != nil {
		return nil, fmt.Errorf("invalid query vector: %w", err)
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, nearestQuery, len(vec), lit, limit)
	if err != nil {
		observe("vector_search", "content_items", start, err)
		return nil, fmt.Errorf("failed to query nearest content: %w", err)
	}
	defer closeWithLog(rows, "rows")

	results := make([]models.ContentScore, 0, limit)
	for rows.Next() {
		var cs models.ContentScore
		if err := rows.Scan(&cs.ContentID, &cs.Score); err != nil {
			return nil, fmt.Errorf("failed to scan nearest content: %w", err)
		}
		results = append(results, cs)
	}
	err = rows.Err()
	observe("vector_search", "content_items", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate nearest content: %w", err)
	}
	return results, nil
}
