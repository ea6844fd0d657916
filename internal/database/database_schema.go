// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package database

import (
	"context"
	"fmt"
)

// schemaQueries create every table and index. All statements are idempotent.
var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS channels (
		id VARCHAR PRIMARY KEY,
		external_id VARCHAR NOT NULL,
		name VARCHAR NOT NULL,
		description VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS content_items (
		id VARCHAR PRIMARY KEY,
		channel_id VARCHAR NOT NULL,
		external_id VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		description VARCHAR,
		thumbnail_url VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		embedding FLOAT[]
	)`,
	`CREATE TABLE IF NOT EXISTS keywords (
		id VARCHAR PRIMARY KEY,
		word VARCHAR NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS blocked_keywords (
		user_id VARCHAR NOT NULL,
		keyword_id VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		PRIMARY KEY (user_id, keyword_id)
	)`,
	`CREATE TABLE IF NOT EXISTS keyword_content_matches (
		keyword_id VARCHAR NOT NULL,
		content_id VARCHAR NOT NULL,
		similarity_score DOUBLE NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		PRIMARY KEY (keyword_id, content_id)
	)`,
	`CREATE TABLE IF NOT EXISTS blocked_channels (
		user_id VARCHAR NOT NULL,
		channel_id VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		PRIMARY KEY (user_id, channel_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_content_items_channel ON content_items(channel_id)`,
	`CREATE INDEX IF NOT EXISTS idx_content_items_created ON content_items(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_keyword_matches_content ON keyword_content_matches(content_id)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, query := range schemaQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
