// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package auth

import "context"

// AuthMode selects how requests are authenticated.
type AuthMode string

const (
	// AuthModeJWT requires a valid bearer token.
	AuthModeJWT AuthMode = "jwt"

	// AuthModeNone trusts the X-User-ID header. Development only.
	AuthModeNone AuthMode = "none"
)

// AuthSubject is the authenticated caller.
type AuthSubject struct {
	ID    string
	Email string
	Mode  AuthMode
}

type subjectContextKey struct{}

// ContextWithSubject stores the subject in ctx.
func ContextWithSubject(ctx context.Context, s *AuthSubject) context.Context {
	return context.WithValue(ctx, subjectContextKey{}, s)
}

// SubjectFromContext returns the authenticated subject, or nil.
func SubjectFromContext(ctx context.Context) *AuthSubject {
	s, _ := ctx.Value(subjectContextKey{}).(*AuthSubject)
	return s
}

// UserIDFromContext returns the authenticated user ID, or "".
func UserIDFromContext(ctx context.Context) string {
	if s := SubjectFromContext(ctx); s != nil {
		return s.ID
	}
	return ""
}
