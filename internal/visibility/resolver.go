// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

// Package visibility computes the content feed a user is allowed to see:
// every catalog item minus items of channels the user blocks minus items
// matched to any keyword the user blocks.
package visibility

import (
	"context"

	"github.com/tomtom215/sieve/internal/database"
	"github.com/tomtom215/sieve/internal/models"
	"github.com/tomtom215/sieve/internal/validation"
)

// Pagination bounds used when Config leaves them unset.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Store reads the filtered catalog.
type Store interface {
	AllowedContent(ctx context.Context, userID string, limit, offset int) ([]models.FeedItem, error)
	CountAllowedContent(ctx context.Context, userID string) (int, error)
}

// Config holds pagination bounds.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// FeedPage is one page of visible items.
type FeedPage struct {
	Items    []models.FeedItem `json:"items"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int               `json:"total"`
	HasMore  bool              `json:"has_more"`
}

// Resolver serves feeds. It only reads and takes no locks.
type Resolver struct {
	store Store
	cfg   Config
}

// NewResolver creates a Resolver.
func NewResolver(store Store, cfg Config) *Resolver {
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = MaxPageSize
	}
	if cfg.DefaultPageSize <= 0 || cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = min(DefaultPageSize, cfg.MaxPageSize)
	}
	return &Resolver{store: store, cfg: cfg}
}

// DefaultPageSize returns the page size used when a request omits it.
func (r *Resolver) DefaultPageSize() int {
	return r.cfg.DefaultPageSize
}

// MaxPageSize returns the largest accepted page size.
func (r *Resolver) MaxPageSize() int {
	return r.cfg.MaxPageSize
}

// Feed returns page (1-based) of the items visible to userID, newest first.
// Out-of-range paging returns a *validation.RequestValidationError; store
// failures return a *database.PersistenceError and no items.
func (r *Resolver) Feed(ctx context.Context, userID string, page, pageSize int) (FeedPage, error) {
	if err := r.validate(userID, page, pageSize); err != nil {
		return FeedPage{}, err
	}

	offset := validation.PageOffset(page, pageSize)
	items, err := r.store.AllowedContent(ctx, userID, pageSize, offset)
	if err != nil {
		return FeedPage{}, asPersistenceError("feed", err)
	}
	total, err := r.store.CountAllowedContent(ctx, userID)
	if err != nil {
		return FeedPage{}, asPersistenceError("feed count", err)
	}
	if items == nil {
		items = []models.FeedItem{}
	}

	return FeedPage{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		HasMore:  offset+len(items) < total,
	}, nil
}

func (r *Resolver) validate(userID string, page, pageSize int) error {
	if userID == "" {
		return validation.NewFieldError("user_id", "required", userID, "user_id is required")
	}
	return validation.ValidatePaging(page, pageSize, r.cfg.MaxPageSize)
}

func asPersistenceError(op string, err error) error {
	if database.IsPersistenceError(err) {
		return err
	}
	return &database.PersistenceError{Op: op, Err: err}
}
