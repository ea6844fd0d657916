// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package audit

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/sieve/internal/logging"
)

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether events are recorded at all.
	Enabled bool

	// RetentionDays is how long events are kept.
	RetentionDays int

	// BufferSize is the capacity of the async write buffer. Events logged
	// while it is full are dropped.
	BufferSize int
}

// DefaultConfig returns the defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		RetentionDays: 90,
		BufferSize:    1000,
	}
}

// Logger buffers events and writes them to the Store on its own goroutine.
type Logger struct {
	config    Config
	store     Store
	eventChan chan *Event
	stopOnce  sync.Once
	stopChan  chan struct{}
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewLogger creates a Logger and starts its writer. Close stops it.
func NewLogger(store Store, config Config) *Logger {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = DefaultConfig().RetentionDays
	}

	l := &Logger{
		config:    config,
		store:     store,
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}

	l.wg.Add(1)
	go l.asyncWriter()
	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// drain what was accepted before Close
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
	}
}

// Log queues event. It never blocks; a full buffer drops the event.
func (l *Logger) Log(event *Event) {
	if !l.config.Enabled {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now().UTC()
	}

	select {
	case <-l.stopChan:
		return
	default:
	}

	select {
	case l.eventChan <- event:
	default:
		logging.Warn().Str("event_id", event.ID).Str("action", string(event.Action)).
			Msg("Audit event buffer full, dropping event")
	}
}

// Close stops the writer after draining queued events.
func (l *Logger) Close() error {
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.wg.Wait()
	return nil
}

// Prune deletes events past the retention period.
func (l *Logger) Prune(ctx context.Context) (int64, error) {
	cutoff := l.now().AddDate(0, 0, -l.config.RetentionDays)
	count, err := l.store.Delete(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logging.Info().Int64("count", count).Time("older_than", cutoff).Msg("Pruned old audit events")
	}
	return count, nil
}

// History returns userID's events, newest first, and their total count.
func (l *Logger) History(ctx context.Context, userID string, limit, offset int) ([]Event, int64, error) {
	filter := QueryFilter{UserID: userID, Limit: limit, Offset: offset}
	events, err := l.store.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := l.store.Count(ctx, QueryFilter{UserID: userID})
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// LogKeywordSubmitted records a keyword handed to the pipeline.
func (l *Logger) LogKeywordSubmitted(ctx context.Context, userID, word string) {
	l.Log(newEvent(ctx, userID, ActionKeywordSubmitted, OutcomeSuccess, TargetKeyword, "",
		"Keyword submitted for moderation", map[string]interface{}{"word": word}))
}

// LogKeywordProcessed records the result of a background keyword run.
// keywordID is empty when the run failed before the keyword was stored.
func (l *Logger) LogKeywordProcessed(ctx context.Context, userID, word, keywordID string, affected int, runErr error) {
	meta := map[string]interface{}{"word": word, "affected_count": affected}
	outcome, desc := OutcomeSuccess, "Keyword blocked"
	if runErr != nil {
		outcome, desc = OutcomeFailure, "Keyword moderation failed"
		meta["error"] = runErr.Error()
	}
	l.Log(newEvent(ctx, userID, ActionKeywordProcessed, outcome, TargetKeyword, keywordID, desc, meta))
}

// LogKeywordDeleted records the removal of a user's keyword link.
func (l *Logger) LogKeywordDeleted(ctx context.Context, userID, keywordID string) {
	l.Log(newEvent(ctx, userID, ActionKeywordDeleted, OutcomeSuccess, TargetKeyword, keywordID,
		"Keyword unblocked", nil))
}

// LogChannelBlocked records a channel block.
func (l *Logger) LogChannelBlocked(ctx context.Context, userID, channelID string) {
	l.Log(newEvent(ctx, userID, ActionChannelBlocked, OutcomeSuccess, TargetChannel, channelID,
		"Channel blocked", nil))
}

// LogChannelUnblocked records a channel unblock. changed is false when the
// channel was not blocked.
func (l *Logger) LogChannelUnblocked(ctx context.Context, userID, channelID string, changed bool) {
	l.Log(newEvent(ctx, userID, ActionChannelUnblocked, OutcomeSuccess, TargetChannel, channelID,
		"Channel unblocked", map[string]interface{}{"changed": changed}))
}

func newEvent(ctx context.Context, userID string, action Action, outcome Outcome, targetType, targetID, desc string, meta map[string]interface{}) *Event {
	e := &Event{
		UserID:        userID,
		Action:        action,
		Outcome:       outcome,
		TargetType:    targetType,
		TargetID:      targetID,
		Description:   desc,
		CorrelationID: logging.CorrelationIDFromContext(ctx),
		RequestID:     logging.RequestIDFromContext(ctx),
	}
	if len(meta) > 0 {
		if data, err := json.Marshal(meta); err == nil {
			e.Metadata = data
		}
	}
	return e
}
