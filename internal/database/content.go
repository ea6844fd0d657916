// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sieve/internal/models"
)

// InsertContentItem stores item and, when embedding is non-empty, its vector.
// Items without an embedding are served by the feed but never matched.
func (db *DB) InsertContentItem(ctx context.Context, item models.ContentItem, embedding []float32) (string, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	var vec any
	if len(embedding) > 0 {
		lit, err := vectorLiteral(embedding)
		if err != nil {
			return "", persistErr("encode embedding", err)
		}
		vec = lit
	}

	err := withConflictRetry(ctx, func() error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO content_items
				(id, channel_id, external_id, title, description, thumbnail_url, created_at, embedding)
			VALUES (?, ?, ?, ?, ?, ?, ?, CAST(? AS FLOAT[]))`,
			item.ID, item.ChannelID, item.ExternalID, item.Title,
			item.Description, item.ThumbnailURL, item.CreatedAt, vec)
		return err
	})
	observe("insert", "content_items", start, err)
	if err != nil {
		return "", persistErr("insert content item", err)
	}
	return item.ID, nil
}

// SetContentEmbedding replaces the stored vector of content item id.
func (db *DB) SetContentEmbedding(ctx context.Context, id string, embedding []float32) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	lit, err := vectorLiteral(embedding)
	if err != nil {
		return persistErr("encode embedding", err)
	}
	res, err := db.conn.ExecContext(ctx,
		`UPDATE content_items SET embedding = CAST(? AS FLOAT[]) WHERE id = ?`, lit, id)
	if err != nil {
		return persistErr("update embedding", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountContentItems returns the catalog size.
func (db *DB) CountContentItems(ctx context.Context) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM content_items`).Scan(&n); err != nil {
		return 0, persistErr("count content items", err)
	}
	return n, nil
}
