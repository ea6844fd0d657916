// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package database

import (
	"context"
	"time"

	"github.com/tomtom215/sieve/internal/models"
)

// allowedFilter excludes items of channels the user blocks and items matched
// to any keyword the user blocks. Both placeholders take the user ID.
const allowedFilter = `
	WHERE NOT EXISTS (
		SELECT 1 FROM blocked_channels bc
		WHERE bc.user_id = ? AND bc.channel_id = c.channel_id
	)
	AND NOT EXISTS (
		SELECT 1 FROM keyword_content_matches m
		JOIN blocked_keywords bk ON bk.keyword_id = m.keyword_id
		WHERE bk.user_id = ? AND m.content_id = c.id
	)`

// AllowedContent returns one page of the items visible to userID, newest
// first with ties broken by id.
func (db *DB) AllowedContent(ctx context.Context, userID string, limit, offset int) ([]models.FeedItem, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	query := `
		SELECT c.id, c.external_id, c.title, COALESCE(c.description, ''),
			c.channel_id, COALESCE(ch.name, ''), COALESCE(c.thumbnail_url, ''), c.created_at
		FROM content_items c
		LEFT JOIN channels ch ON ch.id = c.channel_id` + allowedFilter + `
		ORDER BY c.created_at DESC, c.id ASC
		LIMIT ? OFFSET ?`

	rows, err := db.conn.QueryContext(ctx, query, userID, userID, limit, offset)
	if err != nil {
		observe("select", "content_items", start, err)
		return nil, persistErr("query feed", err)
	}
	defer closeWithLog(rows, "rows")

	items := make([]models.FeedItem, 0, limit)
	for rows.Next() {
		var it models.FeedItem
		if err := rows.Scan(&it.VideoID, &it.ExternalID, &it.Title, &it.Description,
			&it.ChannelID, &it.ChannelName, &it.ThumbnailURL, &it.CreatedAt); err != nil {
			return nil, persistErr("scan feed item", err)
		}
		items = append(items, it)
	}
	err = rows.Err()
	observe("select", "content_items", start, err)
	if err != nil {
		return nil, persistErr("iterate feed", err)
	}
	return items, nil
}

// CountAllowedContent returns how many items are visible to userID.
func (db *DB) CountAllowedContent(ctx context.Context, userID string) (int, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM content_items c`+allowedFilter, userID, userID,
	).Scan(&n)
	observe("count", "content_items", start, err)
	if err != nil {
		return 0, persistErr("count feed", err)
	}
	return n, nil
}
