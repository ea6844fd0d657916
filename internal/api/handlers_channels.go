// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sieve/internal/auth"
	"github.com/tomtom215/sieve/internal/models"
)

// ChannelList handles GET /api/v1/channels.
func (h *Handler) ChannelList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	channels, err := h.store.ListChannelsForUser(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(rw, err)
		return
	}
	if channels == nil {
		channels = []models.ChannelWithBlock{}
	}
	rw.Success(channels)
}

// ChannelBlock handles POST /api/v1/channels/block/{channelID}.
// Blocking an already blocked channel succeeds.
func (h *Handler) ChannelBlock(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := auth.UserIDFromContext(r.Context())
	channelID := chi.URLParam(r, "channelID")

	created, err := h.store.BlockChannel(r.Context(), userID, channelID)
	if err != nil {
		writeError(rw, err)
		return
	}
	if h.audit != nil {
		h.audit.LogChannelBlocked(r.Context(), userID, channelID)
	}
	rw.Success(ChannelBlockResult{ChannelID: channelID, Blocked: true, Changed: created})
}

// ChannelUnblock handles POST /api/v1/channels/unblock/{channelID}.
// Changed is false when the channel was not blocked.
func (h *Handler) ChannelUnblock(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := auth.UserIDFromContext(r.Context())
	channelID := chi.URLParam(r, "channelID")

	removed, err := h.store.UnblockChannel(r.Context(), userID, channelID)
	if err != nil {
		writeError(rw, err)
		return
	}
	if h.audit != nil {
		h.audit.LogChannelUnblocked(r.Context(), userID, channelID, removed)
	}
	rw.Success(ChannelBlockResult{ChannelID: channelID, Blocked: false, Changed: removed})
}
