// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package audit

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps events in memory. Used in tests and when no database
// is available; data is lost on restart.
type MemoryStore struct {
	events []Event
	mu     sync.RWMutex
	maxLen int
}

// NewMemoryStore creates a MemoryStore holding at most maxLen events.
func NewMemoryStore(maxLen int) *MemoryStore {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &MemoryStore{maxLen: maxLen}
}

// Save appends event, dropping the oldest tenth when full.
func (s *MemoryStore) Save(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) >= s.maxLen {
		s.events = s.events[max(1, s.maxLen/10):]
	}
	s.events = append(s.events, *event)
	return nil
}

// Query returns matching events, newest first.
func (s *MemoryStore) Query(_ context.Context, filter QueryFilter) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []Event
	skipped := 0
	for i := len(s.events) - 1; i >= 0; i-- {
		if !matches(&s.events[i], &filter) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		results = append(results, s.events[i])
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}

// Count returns the number of matching events.
func (s *MemoryStore) Count(_ context.Context, filter QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for i := range s.events {
		if matches(&s.events[i], &filter) {
			n++
		}
	}
	return n, nil
}

// Delete removes events older than olderThan.
func (s *MemoryStore) Delete(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.events)
	s.events = slices.DeleteFunc(s.events, func(e Event) bool {
		return e.Timestamp.Before(olderThan)
	})
	return int64(before - len(s.events)), nil
}

func matches(event *Event, filter *QueryFilter) bool {
	if filter.UserID != "" && event.UserID != filter.UserID {
		return false
	}
	if len(filter.Actions) > 0 && !slices.Contains(filter.Actions, event.Action) {
		return false
	}
	if !filter.Since.IsZero() && event.Timestamp.Before(filter.Since) {
		return false
	}
	return true
}
