// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

import (
	"net/http"

	"github.com/tomtom215/sieve/internal/audit"
	"github.com/tomtom215/sieve/internal/auth"
	"github.com/tomtom215/sieve/internal/validation"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 100
)

// AuditHistory handles GET /api/v1/audit?page=&page_size=. Callers only see
// their own moderation history, newest first.
func (h *Handler) AuditHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.audit == nil {
		rw.ServiceUnavailable("Audit trail is disabled")
		return
	}
	userID := auth.UserIDFromContext(r.Context())

	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(rw, err)
		return
	}
	pageSize, err := intParam(r, "page_size", defaultAuditPageSize)
	if err != nil {
		writeError(rw, err)
		return
	}
	if err := validation.ValidatePaging(page, pageSize, maxAuditPageSize); err != nil {
		writeError(rw, err)
		return
	}

	events, total, err := h.audit.History(r.Context(), userID, pageSize, validation.PageOffset(page, pageSize))
	if err != nil {
		writeError(rw, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	rw.SuccessWithPagination(events, &PaginationMeta{
		Page:     page,
		PageSize: pageSize,
		Count:    len(events),
		Total:    int(total),
		HasMore:  int64(page*pageSize) < total,
	})
}
