// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/sieve/internal/logging"
)

// HealthLive handles GET /health/live. The process answering is enough.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status": "alive",
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /health/ready. Ready means the database answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
		rw.ServiceUnavailable("Database not ready")
		return
	}
	rw.Success(map[string]interface{}{
		"status":   "ready",
		"database": "ok",
	})
}
