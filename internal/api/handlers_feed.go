// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tomtom215/sieve/internal/auth"
	"github.com/tomtom215/sieve/internal/validation"
)

// Feed handles GET /api/v1/videos/feed?page=&page_size=.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := auth.UserIDFromContext(r.Context())

	page, err := intParam(r, "page", 1)
	if err != nil {
		writeError(rw, err)
		return
	}
	pageSize, err := intParam(r, "page_size", h.resolver.DefaultPageSize())
	if err != nil {
		writeError(rw, err)
		return
	}

	result, err := h.resolver.Feed(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(rw, err)
		return
	}

	rw.SuccessWithPagination(result.Items, &PaginationMeta{
		Page:     result.Page,
		PageSize: result.PageSize,
		Count:    len(result.Items),
		Total:    result.Total,
		HasMore:  result.HasMore,
	})
}

// intParam reads an integer query parameter. An absent or empty parameter
// yields def; anything unparsable is a validation error.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.NewFieldError(name, "numeric", raw, fmt.Sprintf("%s must be an integer", name))
	}
	return v, nil
}
