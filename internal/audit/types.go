// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

// Package audit records each user's moderation history: keyword
// submissions and deletions, channel blocks, and the outcome of every
// background keyword run. Events are written asynchronously and never block
// the request that produced them.
package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// Action names a moderation event.
type Action string

const (
	ActionKeywordSubmitted Action = "keyword.submitted"
	ActionKeywordProcessed Action = "keyword.processed"
	ActionKeywordDeleted   Action = "keyword.deleted"
	ActionChannelBlocked   Action = "channel.blocked"
	ActionChannelUnblocked Action = "channel.unblocked"
)

// Outcome indicates whether the action succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Target types.
const (
	TargetKeyword = "keyword"
	TargetChannel = "channel"
)

// Event is one entry of a user's moderation history.
type Event struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id"`
	Action     Action    `json:"action"`
	Outcome    Outcome   `json:"outcome"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id,omitempty"`

	// Description is a short human-readable summary.
	Description string `json:"description"`

	// Metadata holds action-specific details as a JSON object.
	Metadata json.RawMessage `json:"metadata,omitempty"`

	CorrelationID string `json:"correlation_id,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
}

// QueryFilter selects events. Results are newest first.
type QueryFilter struct {
	UserID  string
	Actions []Action
	Since   time.Time
	Limit   int
	Offset  int
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)
	Count(ctx context.Context, filter QueryFilter) (int64, error)
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}
