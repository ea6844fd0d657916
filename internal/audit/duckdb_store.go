// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/sieve/internal/logging"
)

// DuckDBStore persists events in the audit_events table of the main database.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a store on db. Call CreateTable once at startup.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTable creates the audit_events table and its indexes.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			user_id TEXT NOT NULL,
			action TEXT NOT NULL,
			outcome TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id TEXT,
			description TEXT NOT NULL,
			metadata TEXT,
			correlation_id TEXT,
			request_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_user_time ON audit_events(user_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_events(action)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute audit schema statement: %w", err)
		}
	}
	logging.Debug().Msg("Audit events table created/verified")
	return nil
}

// Save inserts event.
func (s *DuckDBStore) Save(ctx context.Context, event *Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	var metadata *string
	if len(event.Metadata) > 0 {
		m := string(event.Metadata)
		metadata = &m
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, timestamp, user_id, action, outcome, target_type, target_id,
			description, metadata, correlation_id, request_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp, event.UserID, string(event.Action), string(event.Outcome),
		event.TargetType, nullIfEmpty(event.TargetID), event.Description, metadata,
		nullIfEmpty(event.CorrelationID), nullIfEmpty(event.RequestID))
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

// Query returns matching events, newest first.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	where, args := buildFilterConditions(filter)
	query := `
		SELECT id, timestamp, user_id, action, outcome, target_type,
			COALESCE(target_id, ''), description, COALESCE(metadata, ''),
			COALESCE(correlation_id, ''), COALESCE(request_id, '')
		FROM audit_events` + where + `
		ORDER BY timestamp DESC, id ASC`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e               Event
			action, outcome string
			metadata        string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.UserID, &action, &outcome, &e.TargetType,
			&e.TargetID, &e.Description, &metadata, &e.CorrelationID, &e.RequestID); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Action = Action(action)
		e.Outcome = Outcome(outcome)
		if metadata != "" {
			e.Metadata = []byte(metadata)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// Count returns the number of matching events.
func (s *DuckDBStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	where, args := buildFilterConditions(filter)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return count, nil
}

// Delete removes events older than olderThan.
func (s *DuckDBStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit events: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}
	return count, nil
}

func buildFilterConditions(filter QueryFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if len(filter.Actions) > 0 {
		placeholders := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			placeholders[i] = "?"
			args = append(args, string(a))
		}
		conditions = append(conditions, "action IN ("+strings.Join(placeholders, ",")+")")
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.Since)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
