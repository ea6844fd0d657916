// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sieve/internal/models"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// GetOrCreateKeyword returns the keyword row for word, inserting it on first
// use. Words are compared exactly; no normalization is applied.
func (db *DB) GetOrCreateKeyword(ctx context.Context, word string) (models.Keyword, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	err := withConflictRetry(ctx, func() error {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO keywords (id, word) VALUES (?, ?) ON CONFLICT (word) DO NOTHING`,
			uuid.New().String(), word)
		if isConstraintViolation(err) {
			// A concurrent writer inserted the same word first.
			return nil
		}
		return err
	})
	if err != nil {
		observe("insert", "keywords", start, err)
		return models.Keyword{}, persistErr("create keyword", err)
	}

	var kw models.Keyword
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, word, created_at FROM keywords WHERE word = ?`, word,
	).Scan(&kw.ID, &kw.Word, &kw.CreatedAt)
	observe("upsert", "keywords", start, err)
	if err != nil {
		return models.Keyword{}, persistErr("load keyword", err)
	}
	return kw, nil
}

// LinkBlockedKeyword records that userID blocks keywordID. It reports false
// without error when the link already exists.
func (db *DB) LinkBlockedKeyword(ctx context.Context, userID, keywordID string) (bool, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	var created bool
	err := withConflictRetry(ctx, func() error {
		res, err := db.conn.ExecContext(ctx,
			`INSERT INTO blocked_keywords (user_id, keyword_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			userID, keywordID)
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
	observe("insert", "blocked_keywords", start, err)
	if err != nil {
		return false, persistErr("link blocked keyword", err)
	}
	return created, nil
}

// ListBlockedKeywords returns the user's blocked keywords, oldest first.
func (db *DB) ListBlockedKeywords(ctx context.Context, userID string) ([]models.BlockedKeyword, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT k.id, k.word, bk.user_id
		FROM blocked_keywords bk
		JOIN keywords k ON k.id = bk.keyword_id
		WHERE bk.user_id = ?
		ORDER BY bk.created_at ASC, k.word ASC`, userID)
	if err != nil {
		observe("select", "blocked_keywords", start, err)
		return nil, persistErr("list blocked keywords", err)
	}
	defer closeWithLog(rows, "rows")

	keywords := make([]models.BlockedKeyword, 0)
	for rows.Next() {
		var bk models.BlockedKeyword
		if err := rows.Scan(&bk.ID, &bk.Word, &bk.UserID); err != nil {
			return nil, persistErr("scan blocked keyword", err)
		}
		keywords = append(keywords, bk)
	}
	err = rows.Err()
	observe("select", "blocked_keywords", start, err)
	if err != nil {
		return nil, persistErr("iterate blocked keywords", err)
	}
	return keywords, nil
}

// DeleteBlockedKeyword removes the user's link to keywordID and returns the
// linked word. The Keyword row and its matches are left untouched. It
// reports false when no link existed.
func (db *DB) DeleteBlockedKeyword(ctx context.Context, userID, keywordID string) (string, bool, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	var (
		word    string
		deleted bool
	)
	err := withConflictRetry(ctx, func() error {
		word, deleted = "", false
		err := db.conn.QueryRowContext(ctx, `
			SELECT k.word
			FROM blocked_keywords b
			JOIN keywords k ON k.id = b.keyword_id
			WHERE b.user_id = ? AND b.keyword_id = ?`, userID, keywordID).Scan(&word)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		res, err := db.conn.ExecContext(ctx,
			`DELETE FROM blocked_keywords WHERE user_id = ? AND keyword_id = ?`, userID, keywordID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	observe("delete", "blocked_keywords", start, err)
	if err != nil {
		return "", false, persistErr("delete blocked keyword", err)
	}
	if !deleted {
		return "", false, nil
	}
	return word, true, nil
}

// InsertKeywordMatches stores matches for keywordID in one transaction.
// Pairs that already exist are skipped.
func (db *DB) InsertKeywordMatches(ctx context.Context, keywordID string, matches []models.ContentScore) error {
	if len(matches) == 0 {
		return nil
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()
	start := time.Now()

	err := withConflictRetry(ctx, func() error {
		return db.insertMatchesTx(ctx, keywordID, matches)
	})
	observe("insert", "keyword_content_matches", start, err)
	if err != nil {
		return persistErr("insert keyword matches", err)
	}
	return nil
}

func (db *DB) insertMatchesTx(ctx context.Context, keywordID string, matches []models.ContentScore) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO keyword_content_matches (keyword_id, content_id, similarity_score)
		VALUES (?, ?, ?) ON CONFLICT DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer closeQuietly(stmt)

	for _, m := range matches {
		if _, err := stmt.ExecContext(ctx, keywordID, m.ContentID, m.Score); err != nil {
			return fmt.Errorf("failed to insert match %s: %w", m.ContentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit matches: %w", err)
	}
	committed = true
	return nil
}

// KeywordMatches returns the stored matches of keywordID, best first.
func (db *DB) KeywordMatches(ctx context.Context, keywordID string) ([]models.KeywordMatch, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT keyword_id, content_id, similarity_score
		FROM keyword_content_matches
		WHERE keyword_id = ?
		ORDER BY similarity_score DESC, content_id ASC`, keywordID)
	if err != nil {
		return nil, persistErr("list keyword matches", err)
	}
	defer closeWithLog(rows, "rows")

	var matches []models.KeywordMatch
	for rows.Next() {
		var m models.KeywordMatch
		if err := rows.Scan(&m.KeywordID, &m.ContentID, &m.SimilarityScore); err != nil {
			return nil, persistErr("scan keyword match", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate keyword matches", err)
	}
	return matches, nil
}

// KeywordByWord looks up a keyword without creating it.
func (db *DB) KeywordByWord(ctx context.Context, word string) (models.Keyword, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var kw models.Keyword
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, word, created_at FROM keywords WHERE word = ?`, word,
	).Scan(&kw.ID, &kw.Word, &kw.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Keyword{}, ErrNotFound
	}
	if err != nil {
		return models.Keyword{}, persistErr("load keyword", err)
	}
	return kw, nil
}
