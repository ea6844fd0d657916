// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/sieve/internal/api"
	"github.com/tomtom215/sieve/internal/config"
	"github.com/tomtom215/sieve/internal/database"
	"github.com/tomtom215/sieve/internal/embedding"
	"github.com/tomtom215/sieve/internal/logging"
	"github.com/tomtom215/sieve/internal/matcher"
	"github.com/tomtom215/sieve/internal/pipeline"
	"github.com/tomtom215/sieve/internal/ratelimit"
	"github.com/tomtom215/sieve/internal/supervisor"
	"github.com/tomtom215/sieve/internal/supervisor/services"
	"github.com/tomtom215/sieve/internal/visibility"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("pipeline_transport", cfg.Pipeline.Transport).
		Str("embedding_model", cfg.Embedding.Model).
		Msg("Starting Sieve")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	embedder := embedding.NewClient(cfg.Embedding)

	if cfg.Database.SeedDemoData {
		seedCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		n, err := db.SeedDemoData(seedCtx, embedder.Embed)
		cancel()
		if err != nil {
			logging.Error().Err(err).Msg("Failed to seed demo data")
		} else if n > 0 {
			logging.Info().Int("items", n).Msg("Seeded demo catalog")
		}
	}

	m := matcher.New(embedder, db, matcher.MatchOptions{
		Limit:     cfg.Matching.Limit,
		Threshold: cfg.Matching.SimilarityThreshold,
	})

	kp, err := initPipeline(cfg, m, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize keyword pipeline")
	}
	defer func() {
		if err := kp.transport.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing pipeline transport")
		}
	}()

	auditLogger, err := initAudit(cfg, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize audit trail")
	}
	if auditLogger != nil {
		defer func() {
			if err := auditLogger.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing audit logger")
			}
		}()
		kp.consumer.OnOutcome = chainOutcomeHooks(kp.consumer.OnOutcome,
			func(ctx context.Context, evt pipeline.KeywordSubmitted, out pipeline.Outcome) {
				auditLogger.LogKeywordProcessed(ctx, evt.UserID, evt.Word, out.KeywordID, out.AffectedCount, out.Err)
			})
	}

	resolver := visibility.NewResolver(db, visibility.Config{
		DefaultPageSize: cfg.API.DefaultPageSize,
		MaxPageSize:     cfg.API.MaxPageSize,
	})

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Disabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	} else {
		limiter, err = ratelimit.New(ratelimit.Config{
			Window:       cfg.RateLimit.Window(),
			MaxRequests:  cfg.RateLimit.MaxRequests,
			PathPrefixes: cfg.RateLimit.Paths,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize rate limiter")
		}
	}

	authMiddleware, err := initAuth(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authentication")
	}

	handler := api.NewHandler(db, kp.dispatcher, resolver)
	if auditLogger != nil {
		handler.WithAuditTrail(auditLogger)
	}

	router := api.NewRouter(api.RouterConfig{
		Handler: handler,
		Auth:    authMiddleware,
		Middleware: api.NewChiMiddleware(api.ChiMiddlewareConfig{
			CORSOrigins:       cfg.Security.CORSOrigins,
			Limiter:           limiter,
			TrustProxyHeaders: cfg.Security.TrustProxyHeaders,
		}),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if limiter != nil {
		tree.AddDataService(services.NewRateLimitSweepService(limiter, cfg.RateLimit.SweepInterval))
	}
	if auditLogger != nil && cfg.Audit.CleanupInterval > 0 {
		tree.AddDataService(services.NewAuditRetentionService(auditLogger, cfg.Audit.CleanupInterval))
	}
	tree.AddMessagingService(services.NewKeywordConsumerService(kp.consumer))

	httpSvc := services.NewHTTPServerService(server, 10*time.Second)
	httpSvc.WaitFor(kp.consumer.Ready())
	tree.AddAPIService(httpSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	<-ctx.Done()
	logging.Info().Msg("Shutdown signal received, stopping services")

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}
	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Sieve stopped")
}
