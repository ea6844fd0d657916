// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package main

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/sieve/internal/config"
	"github.com/tomtom215/sieve/internal/logging"
	"github.com/tomtom215/sieve/internal/matcher"
	"github.com/tomtom215/sieve/internal/pipeline"
)

// keywordPipeline groups the pieces of the detached keyword flow.
type keywordPipeline struct {
	transport  *pipeline.Transport
	dispatcher *pipeline.Dispatcher
	consumer   *pipeline.Consumer
}

// initPipeline wires transport, dispatcher and consumer around one Pipeline.
func initPipeline(cfg *config.Config, m *matcher.Matcher, store pipeline.Store) (*keywordPipeline, error) {
	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger())

	transport, err := pipeline.NewTransport(cfg.Pipeline, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("pipeline transport: %w", err)
	}

	p := pipeline.New(m, store, matcher.MatchOptions{
		Limit:     cfg.Matching.Limit,
		Threshold: cfg.Matching.SimilarityThreshold,
	})

	consumer := pipeline.NewConsumer(p, transport.Subscriber, pipeline.ConsumerConfig{
		Topic:        cfg.Pipeline.Topic,
		Timeout:      cfg.Pipeline.Timeout,
		CloseTimeout: cfg.Pipeline.CloseTimeout,
	}, wmLogger)

	logging.Info().
		Str("transport", transport.Name()).
		Str("topic", cfg.Pipeline.Topic).
		Msg("Keyword pipeline initialized")

	dispatcher := pipeline.NewDispatcher(transport.Publisher, cfg.Pipeline.Topic).WithDedup(cfg.Pipeline.DedupWindow)
	consumer.OnOutcome = dispatcher.ReleaseFailed

	return &keywordPipeline{
		transport:  transport,
		dispatcher: dispatcher,
		consumer:   consumer,
	}, nil
}

type outcomeHook = func(context.Context, pipeline.KeywordSubmitted, pipeline.Outcome)

// chainOutcomeHooks runs every non-nil hook in order.
func chainOutcomeHooks(hooks ...outcomeHook) outcomeHook {
	var set []outcomeHook
	for _, h := range hooks {
		if h != nil {
			set = append(set, h)
		}
	}
	return func(ctx context.Context, evt pipeline.KeywordSubmitted, out pipeline.Outcome) {
		for _, h := range set {
			h(ctx, evt, out)
		}
	}
}
