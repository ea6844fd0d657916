// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sieve/internal/auth"
	"github.com/tomtom215/sieve/internal/database"
	"github.com/tomtom215/sieve/internal/logging"
	"github.com/tomtom215/sieve/internal/models"
	"github.com/tomtom215/sieve/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 10

// KeywordSubmit handles POST /api/v1/keywords.
//
// The word is published to the moderation pipeline and the request returns
// 202 before matching starts. Matching and persistence outcomes are only
// logged.
func (h *Handler) KeywordSubmit(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := auth.UserIDFromContext(r.Context())

	var req KeywordRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(rw, verr)
		return
	}

	if err := h.submitter.Submit(r.Context(), req.Word, userID); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("word", req.Word).Msg("Failed to dispatch keyword")
		writeError(rw, err)
		return
	}

	if h.audit != nil {
		h.audit.LogKeywordSubmitted(r.Context(), userID, req.Word)
	}
	rw.Accepted(KeywordAccepted{Status: "processing", Word: req.Word})
}

// KeywordList handles GET /api/v1/keywords.
func (h *Handler) KeywordList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := auth.UserIDFromContext(r.Context())

	keywords, err := h.store.ListBlockedKeywords(r.Context(), userID)
	if err != nil {
		writeError(rw, err)
		return
	}
	if keywords == nil {
		keywords = []models.BlockedKeyword{}
	}
	rw.Success(keywords)
}

// KeywordDelete handles DELETE /api/v1/keywords/{keywordID}.
// Only the caller's link is removed; the keyword and its matches stay for
// other users.
func (h *Handler) KeywordDelete(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := auth.UserIDFromContext(r.Context())
	keywordID := chi.URLParam(r, "keywordID")

	word, deleted, err := h.store.DeleteBlockedKeyword(r.Context(), userID, keywordID)
	if err != nil {
		writeError(rw, err)
		return
	}
	if !deleted {
		writeError(rw, database.ErrNotFound)
		return
	}
	// an immediate re-block of the same word must reach the pipeline
	h.submitter.Forget(word, userID)
	if h.audit != nil {
		h.audit.LogKeywordDeleted(r.Context(), userID, keywordID)
	}
	rw.Success(map[string]string{"id": keywordID, "status": "deleted"})
}
