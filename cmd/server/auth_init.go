// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package main

import (
	"fmt"

	"github.com/tomtom215/sieve/internal/api"
	"github.com/tomtom215/sieve/internal/auth"
	"github.com/tomtom215/sieve/internal/config"
	"github.com/tomtom215/sieve/internal/logging"
)

// initAuth builds the authentication middleware for cfg.Security.AuthMode.
func initAuth(cfg *config.Config) (*auth.Middleware, error) {
	switch auth.AuthMode(cfg.Security.AuthMode) {
	case auth.AuthModeJWT:
		jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("jwt manager: %w", err)
		}
		logging.Info().Msg("JWT authentication enabled")
		return auth.NewMiddleware(auth.AuthModeJWT, jwtManager, api.Unauthorized), nil

	case auth.AuthModeNone:
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  The X-User-ID header is trusted as the caller's identity.")
		logging.Warn().Msg("  Use this mode only for local development and tests.")
		logging.Warn().Msg("============================================================")
		return auth.NewMiddleware(auth.AuthModeNone, nil, api.Unauthorized), nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Security.AuthMode)
	}
}
