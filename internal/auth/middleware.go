// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/sieve/internal/logging"
)

// UserIDHeader carries the caller's ID when AuthModeNone is active.
const UserIDHeader = "X-User-ID"

// ErrUnauthenticated is returned when no usable credential was presented.
var ErrUnauthenticated = errors.New("authentication required")

// Middleware authenticates requests and stores the AuthSubject in the context.
type Middleware struct {
	mode       AuthMode
	jwtManager *JWTManager

	// onUnauthorized writes the 401 response. Injected by the API layer so
	// that failures use the standard response envelope.
	onUnauthorized func(w http.ResponseWriter, r *http.Request, err error)
}

// NewMiddleware creates an authentication middleware. jwtManager may be nil
// only in AuthModeNone.
func NewMiddleware(mode AuthMode, jwtManager *JWTManager, onUnauthorized func(http.ResponseWriter, *http.Request, error)) *Middleware {
	if onUnauthorized == nil {
		onUnauthorized = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
	}
	return &Middleware{mode: mode, jwtManager: jwtManager, onUnauthorized: onUnauthorized}
}

// Identify attaches the AuthSubject when the request carries valid
// credentials and lets every request through. Admission control runs after
// it so that authenticated callers are keyed by user ID.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subject, err := m.authenticate(r); err == nil {
			ctx := ContextWithSubject(r.Context(), subject)
			ctx = logging.ContextWithUserID(ctx, subject.ID)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticate rejects unauthenticated requests with 401. A subject already
// attached by Identify is trusted.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SubjectFromContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		subject, err := m.authenticate(r)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")
			m.onUnauthorized(w, r, err)
			return
		}

		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithUserID(ctx, subject.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*AuthSubject, error) {
	if m.mode == AuthModeNone {
		id := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if id == "" {
			return nil, ErrUnauthenticated
		}
		return &AuthSubject{ID: id, Mode: AuthModeNone}, nil
	}

	token := extractToken(r)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &AuthSubject{ID: claims.Subject, Email: claims.Email, Mode: AuthModeJWT}, nil
}

// extractToken reads a bearer token from the Authorization header, falling
// back to the "token" cookie.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}
