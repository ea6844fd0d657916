// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/sieve/internal/database"
	"github.com/tomtom215/sieve/internal/embedding"
	"github.com/tomtom215/sieve/internal/ratelimit"
	"github.com/tomtom215/sieve/internal/validation"
)

// writeError maps an engine error onto the response envelope:
//
//	*validation.RequestValidationError -> 400 VALIDATION_ERROR
//	database.ErrNotFound               -> 404 NOT_FOUND
//	ratelimit.ErrRejected              -> 429 TOO_MANY_REQUESTS
//	*embedding.ProviderError           -> 502 EXTERNAL_SERVICE_FAILED
//	*database.PersistenceError         -> 500 DATABASE_ERROR
//
// Anything else is a 500 INTERNAL_ERROR.
func writeError(rw *ResponseWriter, err error) {
	var ve *validation.RequestValidationError
	switch {
	case errors.As(err, &ve):
		apiErr := ve.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
	case errors.Is(err, database.ErrNotFound):
		rw.NotFound("Resource not found")
	case errors.Is(err, ratelimit.ErrRejected):
		rw.TooManyRequests("Rate limit exceeded")
	case embedding.IsProviderError(err):
		rw.ExternalServiceError("embedding", err)
	case database.IsPersistenceError(err):
		rw.DatabaseError(err)
	default:
		rw.InternalError("An unexpected error occurred")
	}
}

// Unauthorized is passed to auth.NewMiddleware so that 401 responses use
// the standard envelope.
func Unauthorized(w http.ResponseWriter, r *http.Request, _ error) {
	NewResponseWriter(w, r).Unauthorized("Authentication required")
}
