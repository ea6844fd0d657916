// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

import (
	"context"
	"time"

	"github.com/tomtom215/sieve/internal/audit"
	"github.com/tomtom215/sieve/internal/models"
	"github.com/tomtom215/sieve/internal/visibility"
)

// Store is the persistence surface used by the handlers.
type Store interface {
	ListBlockedKeywords(ctx context.Context, userID string) ([]models.BlockedKeyword, error)
	DeleteBlockedKeyword(ctx context.Context, userID, keywordID string) (string, bool, error)
	ListChannelsForUser(ctx context.Context, userID string) ([]models.ChannelWithBlock, error)
	BlockChannel(ctx context.Context, userID, channelID string) (bool, error)
	UnblockChannel(ctx context.Context, userID, channelID string) (bool, error)
	Ping(ctx context.Context) error
}

// Submitter hands keyword submissions to the background pipeline.
type Submitter interface {
	Submit(ctx context.Context, word, userID string) error
	// Forget drops any suppression of a repeated (word, userID) submission.
	Forget(word, userID string)
}

// FeedResolver serves filtered feeds.
type FeedResolver interface {
	Feed(ctx context.Context, userID string, page, pageSize int) (visibility.FeedPage, error)
	DefaultPageSize() int
}

// AuditTrail records moderation actions and serves a user's history.
type AuditTrail interface {
	LogKeywordSubmitted(ctx context.Context, userID, word string)
	LogKeywordDeleted(ctx context.Context, userID, keywordID string)
	LogChannelBlocked(ctx context.Context, userID, channelID string)
	LogChannelUnblocked(ctx context.Context, userID, channelID string, changed bool)
	History(ctx context.Context, userID string, limit, offset int) ([]audit.Event, int64, error)
}

// Handler holds the dependencies of every API endpoint.
type Handler struct {
	store     Store
	submitter Submitter
	resolver  FeedResolver
	audit     AuditTrail
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(store Store, submitter Submitter, resolver FeedResolver) *Handler {
	return &Handler{
		store:     store,
		submitter: submitter,
		resolver:  resolver,
		startTime: time.Now(),
	}
}

// WithAuditTrail enables moderation history recording and the audit endpoint.
func (h *Handler) WithAuditTrail(trail AuditTrail) *Handler {
	h.audit = trail
	return h
}
