// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sieve/internal/models"
)

// UpsertChannel inserts ch or updates the existing row with the same ID.
// An empty ID is assigned a new UUID. The stored ID is returned.
func (db *DB) UpsertChannel(ctx context.Context, ch models.Channel) (string, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	if ch.ID == "" {
		ch.ID = uuid.New().String()
	}
	if ch.CreatedAt.IsZero() {
		ch.CreatedAt = time.Now().UTC()
	}

	err := withConflictRetry(ctx, func() error {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO channels (id, external_id, name, description, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				external_id = excluded.external_id,
				name = excluded.name,
				description = excluded.description`,
			ch.ID, ch.ExternalID, ch.Name, ch.Description, ch.CreatedAt)
		return err
	})
	observe("upsert", "channels", start, err)
	if err != nil {
		return "", persistErr("upsert channel", err)
	}
	return ch.ID, nil
}

// ChannelExists reports whether a channel with id is stored.
func (db *DB) ChannelExists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var one int
	err := db.conn.QueryRowContext(ctx, `SELECT 1 FROM channels WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, persistErr("lookup channel", err)
	}
	return true, nil
}

// ListChannelsForUser returns every channel flagged with whether userID
// blocks it, ordered by name.
func (db *DB) ListChannelsForUser(ctx context.Context, userID string) ([]models.ChannelWithBlock, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.external_id, c.name, COALESCE(c.description, ''), c.created_at,
			bc.channel_id IS NOT NULL AS is_blocked
		FROM channels c
		LEFT JOIN blocked_channels bc ON bc.channel_id = c.id AND bc.user_id = ?
		ORDER BY c.name ASC, c.id ASC`, userID)
	if err != nil {
		observe("select", "channels", start, err)
		return nil, persistErr("list channels", err)
	}
	defer closeWithLog(rows, "rows")

	channels := make([]models.ChannelWithBlock, 0)
	for rows.Next() {
		var ch models.ChannelWithBlock
		if err := rows.Scan(&ch.ID, &ch.ExternalID, &ch.Name, &ch.Description, &ch.CreatedAt, &ch.IsBlocked); err != nil {
			return nil, persistErr("scan channel", err)
		}
		channels = append(channels, ch)
	}
	err = rows.Err()
	observe("select", "channels", start, err)
	if err != nil {
		return nil, persistErr("iterate channels", err)
	}
	return channels, nil
}

// BlockChannel hides channelID from userID's feed and reports whether a new
// block was created. Blocking an already blocked channel succeeds with
// false. ErrNotFound is returned for unknown channels.
func (db *DB) BlockChannel(ctx context.Context, userID, channelID string) (bool, error) {
	exists, err := db.ChannelExists(ctx, channelID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrNotFound
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	var created bool
	err = withConflictRetry(ctx, func() error {
		res, err := db.conn.ExecContext(ctx,
			`INSERT INTO blocked_channels (user_id, channel_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			userID, channelID)
		if err != nil {
			if isConstraintViolation(err) {
				created = false
				return nil
			}
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		created = n > 0
		return nil
	})
	observe("insert", "blocked_channels", start, err)
	if err != nil {
		return false, persistErr("block channel", err)
	}
	return created, nil
}

// UnblockChannel removes the block and reports whether one existed.
func (db *DB) UnblockChannel(ctx context.Context, userID, channelID string) (bool, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	var removed bool
	err := withConflictRetry(ctx, func() error {
		res, err := db.conn.ExecContext(ctx,
			`DELETE FROM blocked_channels WHERE user_id = ? AND channel_id = ?`, userID, channelID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = n > 0
		return nil
	})
	observe("delete", "blocked_channels", start, err)
	if err != nil {
		return false, persistErr("unblock channel", err)
	}
	return removed, nil
}
