// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/sieve/internal/auth"
	"github.com/tomtom215/sieve/internal/logging"
	"github.com/tomtom215/sieve/internal/metrics"
	"github.com/tomtom215/sieve/internal/ratelimit"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter         = "Retry-After"
)

// ChiMiddlewareConfig holds configuration for the API middleware stack.
type ChiMiddlewareConfig struct {
	// CORS configuration
	CORSOrigins []string

	// Limiter is nil when rate limiting is disabled.
	Limiter *ratelimit.Limiter

	// TrustProxyHeaders keys anonymous callers by X-Forwarded-For/X-Real-IP
	// instead of the socket address. Only safe behind a proxy that sets them.
	TrustProxyHeaders bool
}

// ChiMiddleware bundles the configured middleware handlers.
type ChiMiddleware struct {
	cfg     ChiMiddlewareConfig
	now     func() time.Time
	corsMux func(http.Handler) http.Handler
}

// NewChiMiddleware builds the middleware stack from cfg.
func NewChiMiddleware(cfg ChiMiddlewareConfig) *ChiMiddleware {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			// browsers reject credentials with a wildcard origin
			allowCredentials = false
			break
		}
	}

	return &ChiMiddleware{
		cfg: cfg,
		now: time.Now,
		corsMux: cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", auth.UserIDHeader},
			ExposedHeaders:   []string{"X-Request-ID", HeaderRateLimitLimit, HeaderRateLimitRemaining, HeaderRetryAfter},
			AllowCredentials: allowCredentials,
			MaxAge:           300,
		}),
	}
}

// TrustsProxyHeaders reports whether forwarded client IP headers are honored.
func (m *ChiMiddleware) TrustsProxyHeaders() bool {
	return m.cfg.TrustProxyHeaders
}

// CORS returns the CORS middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.corsMux
}

// Admission applies the sliding-window limiter. Authenticated callers are
// keyed by user ID, anonymous callers by client IP. Rejected requests get a
// 429 with Retry-After and never reach the handler.
func (m *ChiMiddleware) Admission() func(http.Handler) http.Handler {
	limiter := m.cfg.Limiter
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.InScope(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			identity := admissionIdentity(r, m.cfg.TrustProxyHeaders)
			decision := limiter.Admit(identity, r.URL.Path, m.now())
			metrics.RecordRateLimitDecision(decision.Allowed)

			w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(limiter.Config().MaxRequests))
			w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				w.Header().Set(HeaderRetryAfter, strconv.Itoa(retryAfterSeconds(decision.RetryAfter)))
				logging.Ctx(r.Context()).Debug().
					Str("identity", identity).
					Str("path", r.URL.Path).
					Dur("retry_after", decision.RetryAfter).
					Msg("Request rejected by rate limiter")
				writeError(NewResponseWriter(w, r), ratelimit.ErrRejected)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// admissionIdentity returns "user:<id>" for authenticated callers and
// "ip:<addr>" otherwise. Forwarded headers are only read when trustProxy is
// set; without it a caller could rotate them to get a fresh window.
func admissionIdentity(r *http.Request, trustProxy bool) string {
	if userID := auth.UserIDFromContext(r.Context()); userID != "" {
		return "user:" + userID
	}
	if trustProxy {
		if ip, err := httprate.KeyByRealIP(r); err == nil && ip != "" {
			return "ip:" + ip
		}
	}
	if ip, err := httprate.KeyByIP(r); err == nil && ip != "" {
		return "ip:" + ip
	}
	return "ip:" + r.RemoteAddr
}

// retryAfterSeconds rounds up so clients never retry inside the window.
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// APISecurityHeaders sets the security headers for JSON API responses.
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Cache-Control", "no-store")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
