// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package services

import (
	"context"
	"time"

	"github.com/tomtom215/sieve/internal/logging"
)

// Pruner is satisfied by *audit.Logger.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// AuditRetentionService periodically deletes audit events past retention.
// It prunes once at startup and then every interval.
type AuditRetentionService struct {
	pruner   Pruner
	interval time.Duration
	timeout  time.Duration
	name     string
}

// NewAuditRetentionService creates the service. A non-positive interval
// becomes 24 hours.
func NewAuditRetentionService(pruner Pruner, interval time.Duration) *AuditRetentionService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &AuditRetentionService{
		pruner:   pruner,
		interval: interval,
		timeout:  time.Minute,
		name:     "audit-retention",
	}
}

// Serve implements suture.Service.
func (s *AuditRetentionService) Serve(ctx context.Context) error {
	s.pruneOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.pruneOnce(ctx)
		}
	}
}

func (s *AuditRetentionService) pruneOnce(ctx context.Context) {
	pruneCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.pruner.Prune(pruneCtx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Audit retention cleanup failed")
	}
}

// String implements fmt.Stringer.
func (s *AuditRetentionService) String() string {
	return s.name
}
