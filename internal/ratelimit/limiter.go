// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

// Package ratelimit implements exact sliding-window admission control.
//
// Every identity (authenticated user ID or client IP) owns a log of the
// timestamps of its admitted requests. On each call the log is pruned to the
// trailing window and the request is admitted only while the log holds fewer
// than MaxRequests entries. Rejected requests are not recorded.
//
// Complexity:
//   - Admit: O(w) where w = requests admitted in the window (bounded by MaxRequests)
//   - Sweep: O(n*w) over all identities
//   - Memory: O(n*w)
//
// The identity map is split into shards keyed by xxhash so that unrelated
// identities never contend on the same lock; each window carries its own
// mutex for the check-and-append critical section.
package ratelimit

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrRejected is returned when an identity exhausted its window.
var ErrRejected = errors.New("rate limit exceeded")

const numShards = 64

// Config configures a Limiter.
type Config struct {
	// Window is the trailing duration over which requests are counted.
	Window time.Duration

	// MaxRequests is the number of requests admitted per Window.
	MaxRequests int

	// PathPrefixes restricts limiting to matching request paths.
	// An empty list limits every path.
	PathPrefixes []string
}

// Decision is the outcome of an admission check.
type Decision struct {
	// Allowed is false only when the request must be rejected with 429.
	Allowed bool

	// Scoped is false when the path bypassed the limiter.
	Scoped bool

	// Remaining is the number of requests still admissible in the window.
	Remaining int

	// RetryAfter is how long until the oldest recorded request leaves the
	// window. Zero when Allowed.
	RetryAfter time.Duration
}

// window is the timestamp log of one identity.
type window struct {
	mu         sync.Mutex
	timestamps []time.Time // oldest first
	removed    bool        // set by Sweep once the window left the shard map
}

// prune drops timestamps that are no longer inside the window ending at now.
// Must be called with w.mu held.
func (w *window) prune(now time.Time, size time.Duration) {
	cutoff := 0
	for cutoff < len(w.timestamps) && now.Sub(w.timestamps[cutoff]) >= size {
		cutoff++
	}
	if cutoff == 0 {
		return
	}
	// shift in place so the backing array is reused
	n := copy(w.timestamps, w.timestamps[cutoff:])
	clear(w.timestamps[n:])
	w.timestamps = w.timestamps[:n]
}

type shard struct {
	mu      sync.RWMutex
	windows map[string]*window
}

// Limiter is a concurrency-safe exact sliding-window rate limiter.
type Limiter struct {
	cfg    Config
	shards [numShards]*shard
}

// New creates a Limiter. Window and MaxRequests must be positive.
func New(cfg Config) (*Limiter, error) {
	if cfg.Window <= 0 {
		return nil, errors.New("ratelimit: window must be positive")
	}
	if cfg.MaxRequests < 1 {
		return nil, errors.New("ratelimit: max requests must be at least 1")
	}

	l := &Limiter{cfg: cfg}
	for i := range l.shards {
		l.shards[i] = &shard{windows: make(map[string]*window)}
	}
	return l, nil
}

// Config returns the limiter configuration.
func (l *Limiter) Config() Config {
	return l.cfg
}

// InScope reports whether path is subject to rate limiting.
func (l *Limiter) InScope(path string) bool {
	if len(l.cfg.PathPrefixes) == 0 {
		return true
	}
	for _, prefix := range l.cfg.PathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Admit records a request for identity on path at time now and reports
// whether it may proceed. Paths outside the configured prefixes are always
// allowed and leave no trace.
func (l *Limiter) Admit(identity, path string, now time.Time) Decision {
	if !l.InScope(path) {
		return Decision{Allowed: true, Scoped: false, Remaining: l.cfg.MaxRequests}
	}

	for {
		w := l.getOrCreate(identity)

		w.mu.Lock()
		if w.removed {
			// lost a race with Sweep; the next lookup creates a fresh window
			w.mu.Unlock()
			continue
		}

		w.prune(now, l.cfg.Window)

		if len(w.timestamps) >= l.cfg.MaxRequests {
			retry := l.cfg.Window - now.Sub(w.timestamps[0])
			w.mu.Unlock()
			return Decision{Allowed: false, Scoped: true, Remaining: 0, RetryAfter: retry}
		}

		w.timestamps = append(w.timestamps, now)
		remaining := l.cfg.MaxRequests - len(w.timestamps)
		w.mu.Unlock()

		return Decision{Allowed: true, Scoped: true, Remaining: remaining}
	}
}

// Count returns the number of requests recorded for identity inside the
// window ending at now.
func (l *Limiter) Count(identity string, now time.Time) int {
	s := l.shardFor(identity)
	s.mu.RLock()
	w, ok := s.windows[identity]
	s.mu.RUnlock()
	if !ok {
		return 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(now, l.cfg.Window)
	return len(w.timestamps)
}

// Sweep prunes every window and drops identities whose window is empty.
// It returns the number of identities removed.
func (l *Limiter) Sweep(now time.Time) int {
	removed := 0
	for _, s := range l.shards {
		s.mu.Lock()
		for identity, w := range s.windows {
			w.mu.Lock()
			w.prune(now, l.cfg.Window)
			if len(w.timestamps) == 0 {
				w.removed = true
				delete(s.windows, identity)
				removed++
			}
			w.mu.Unlock()
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked identities.
func (l *Limiter) Len() int {
	total := 0
	for _, s := range l.shards {
		s.mu.RLock()
		total += len(s.windows)
		s.mu.RUnlock()
	}
	return total
}

func (l *Limiter) shardFor(identity string) *shard {
	return l.shards[xxhash.Sum64String(identity)%numShards]
}

func (l *Limiter) getOrCreate(identity string) *window {
	s := l.shardFor(identity)

	s.mu.RLock()
	w, ok := s.windows[identity]
	s.mu.RUnlock()
	if ok {
		return w
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok = s.windows[identity]; ok {
		return w
	}
	w = &window{timestamps: make([]time.Time, 0, l.cfg.MaxRequests)}
	s.windows[identity] = w
	return w
}
