// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/sieve/internal/cache"
	"github.com/tomtom215/sieve/internal/logging"
	"github.com/tomtom215/sieve/internal/metrics"
)

// Dispatcher hands keyword submissions to the background consumer.
type Dispatcher struct {
	publisher message.Publisher
	topic     string
	recent    *cache.LRU // nil disables dedup
	now       func() time.Time
}

// dedupCapacity bounds the number of remembered (user, word) pairs.
const dedupCapacity = 10000

// NewDispatcher creates a Dispatcher publishing on topic.
func NewDispatcher(publisher message.Publisher, topic string) *Dispatcher {
	return &Dispatcher{publisher: publisher, topic: topic, now: time.Now}
}

// WithDedup makes Submit skip publishing a (user, word) pair already
// published within window. A pair is released early by Forget, which callers
// use when the user's link is deleted or the background run failed, so a
// suppressed repeat only ever duplicates a run that is pending or succeeded.
// A non-positive window leaves dedup off.
func (d *Dispatcher) WithDedup(window time.Duration) *Dispatcher {
	if window > 0 {
		d.recent = cache.NewLRU(dedupCapacity, window)
	}
	return d
}

// Submit publishes a KeywordSubmitted message and returns without waiting
// for processing. The request's correlation ID travels in the metadata.
func (d *Dispatcher) Submit(ctx context.Context, word, userID string) error {
	evt := KeywordSubmitted{Word: word, UserID: userID, SubmittedAt: d.now().UTC()}
	if err := evt.Validate(); err != nil {
		return err
	}

	key := dedupKey(word, userID)
	if d.recent != nil && d.recent.SeenWithin(key, evt.SubmittedAt) {
		metrics.PipelineDuplicates.Inc()
		logging.Ctx(ctx).Debug().Str("word", word).Msg("Duplicate keyword submission suppressed")
		return nil
	}

	msg, err := newMessage(evt, logging.CorrelationIDFromContext(ctx))
	if err != nil {
		d.forget(key)
		return err
	}
	if err := d.publisher.Publish(d.topic, msg); err != nil {
		// a failed publish must not suppress the caller's retry
		d.forget(key)
		return fmt.Errorf("publish keyword submission: %w", err)
	}

	metrics.PipelineSubmissions.Inc()
	logging.Ctx(ctx).Debug().Str("message_uuid", msg.UUID).Str("word", word).Msg("Keyword submission published")
	return nil
}

// Forget releases the (word, userID) pair so the next Submit publishes.
func (d *Dispatcher) Forget(word, userID string) {
	d.forget(dedupKey(word, userID))
}

// ReleaseFailed is a Consumer.OnOutcome hook: a run that ended in an error
// must not suppress the client's retry.
func (d *Dispatcher) ReleaseFailed(_ context.Context, evt KeywordSubmitted, out Outcome) {
	if out.Err != nil {
		d.Forget(evt.Word, evt.UserID)
	}
}

func dedupKey(word, userID string) string {
	return userID + "\x00" + word
}

func (d *Dispatcher) forget(key string) {
	if d.recent != nil {
		d.recent.Forget(key)
	}
}
