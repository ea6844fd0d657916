// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/sieve/internal/logging"
)

const handlerName = "keyword-moderation"

// ConsumerConfig configures the background consumer.
type ConsumerConfig struct {
	Topic string
	// Timeout bounds one pipeline run.
	Timeout      time.Duration
	CloseTimeout time.Duration
}

// Consumer runs the pipeline for every KeywordSubmitted message.
//
// Every message is acked, including malformed ones and failed runs. A
// failure is logged and counted, never redelivered.
type Consumer struct {
	pipeline   *Pipeline
	subscriber message.Subscriber
	cfg        ConsumerConfig
	logger     watermill.LoggerAdapter

	// OnOutcome, when set, observes every finished run.
	OnOutcome func(context.Context, KeywordSubmitted, Outcome)

	readyOnce sync.Once
	ready     chan struct{}
}

// NewConsumer creates a Consumer.
func NewConsumer(p *Pipeline, subscriber message.Subscriber, cfg ConsumerConfig, logger watermill.LoggerAdapter) *Consumer {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 30 * time.Second
	}
	return &Consumer{
		pipeline:   p,
		subscriber: subscriber,
		cfg:        cfg,
		logger:     logger,
		ready:      make(chan struct{}),
	}
}

// Ready is closed once the consumer is subscribed for the first time.
func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

// Run subscribes and processes messages until ctx is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: c.cfg.CloseTimeout}, c.logger)
	if err != nil {
		return fmt.Errorf("create watermill router: %w", err)
	}

	// Order matters: ackAlways must wrap Recoverer so a recovered panic is
	// still acked instead of redelivered.
	router.AddMiddleware(
		ackAlways,
		middleware.Recoverer,
		middleware.Timeout(c.cfg.Timeout),
	)
	router.AddConsumerHandler(handlerName, c.cfg.Topic, c.subscriber, c.handle)

	go func() {
		select {
		case <-router.Running():
			c.readyOnce.Do(func() { close(c.ready) })
		case <-ctx.Done():
		}
	}()

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("keyword consumer router: %w", err)
	}
	return ctx.Err()
}

func (c *Consumer) handle(msg *message.Message) error {
	ctx := msg.Context()
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	evt, err := decodeMessage(msg)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed keyword submission")
		return nil
	}
	ctx = logging.ContextWithUserID(ctx, evt.UserID)

	out := c.pipeline.Process(ctx, evt.Word, evt.UserID)
	if c.OnOutcome != nil {
		c.OnOutcome(ctx, evt, out)
	}
	return nil
}

// ackAlways converts handler errors into acks.
func ackAlways(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		produced, err := h(msg)
		if err != nil {
			logging.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Keyword submission handler failed")
			return nil, nil
		}
		return produced, nil
	}
}
