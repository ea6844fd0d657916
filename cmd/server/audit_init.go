// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sieve/internal/audit"
	"github.com/tomtom215/sieve/internal/config"
	"github.com/tomtom215/sieve/internal/database"
	"github.com/tomtom215/sieve/internal/logging"
)

// initAudit creates the moderation audit trail on the main database.
// It returns nil when auditing is disabled.
func initAudit(cfg *config.Config, db *database.DB) (*audit.Logger, error) {
	if !cfg.Audit.Enabled {
		logging.Info().Msg("Audit trail disabled")
		return nil, nil
	}

	store := audit.NewDuckDBStore(db.Conn())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.CreateTable(ctx); err != nil {
		return nil, fmt.Errorf("audit schema: %w", err)
	}

	logger := audit.NewLogger(store, audit.Config{
		Enabled:       true,
		RetentionDays: cfg.Audit.RetentionDays,
		BufferSize:    cfg.Audit.BufferSize,
	})

	logging.Info().
		Int("retention_days", cfg.Audit.RetentionDays).
		Dur("cleanup_interval", cfg.Audit.CleanupInterval).
		Msg("Audit trail initialized")
	return logger, nil
}
