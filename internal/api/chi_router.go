// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sieve/internal/auth"
	"github.com/tomtom215/sieve/internal/middleware"
)

// RouterConfig holds everything NewRouter wires together.
type RouterConfig struct {
	Handler    *Handler
	Auth       *auth.Middleware
	Middleware *ChiMiddleware
}

// NewRouter builds the chi router.
//
// Middleware order on /api/v1:
//
//	Identify -> Admission -> APISecurityHeaders -> PrometheusMetrics -> Authenticate
//
// Identify runs first so that admission is keyed by user ID whenever the
// caller presented valid credentials, and a rejected request never reaches
// authentication or the handlers.
func NewRouter(cfg RouterConfig) chi.Router {
	h := cfg.Handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.Middleware.TrustsProxyHeaders() {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(cfg.Middleware.CORS())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).NotFound("Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cfg.Auth.Identify)
		r.Use(cfg.Middleware.Admission())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(cfg.Auth.Authenticate)

		r.Route("/keywords", func(r chi.Router) {
			r.Post("/", h.KeywordSubmit)
			r.Get("/", h.KeywordList)
			r.Delete("/{keywordID}", h.KeywordDelete)
		})

		r.Get("/videos/feed", h.Feed)

		r.Route("/channels", func(r chi.Router) {
			r.Get("/", h.ChannelList)
			r.Post("/block/{channelID}", h.ChannelBlock)
			r.Post("/unblock/{channelID}", h.ChannelUnblock)
		})

		r.Get("/audit", h.AuditHistory)
	})

	return r
}
