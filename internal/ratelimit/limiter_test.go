// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestLimiter(t *testing.T, window time.Duration, maxRequests int, prefixes ...string) *Limiter {
	t.Helper()
	l, err := New(Config{Window: window, MaxRequests: maxRequests, PathPrefixes: prefixes})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Window: 0, MaxRequests: 1}); err == nil {
		t.Error("expected error for zero window")
	}
	if _, err := New(Config{Window: time.Second, MaxRequests: 0}); err == nil {
		t.Error("expected error for zero max requests")
	}
}

func TestAdmitSlidesInsteadOfResetting(t *testing.T) {
	t.Parallel()

	l := newTestLimiter(t, 60*time.Second, 1)

	steps := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{30 * time.Second, false},
		{59 * time.Second, false},
		{61 * time.Second, true},
		{90 * time.Second, false},
	}

	for _, step := range steps {
		got := l.Admit("10.0.0.1", "/api/v1/keywords", epoch.Add(step.offset))
		if got.Allowed != step.want {
			t.Errorf("Admit at t=%v: Allowed = %v, want %v", step.offset, got.Allowed, step.want)
		}
	}
}

func TestAdmitRejectsAfterMaxRequests(t *testing.T) {
	t.Parallel()

	l := newTestLimiter(t, time.Minute, 3)

	for i := 0; i < 3; i++ {
		d := l.Admit("user-1", "/api/v1/videos/feed", epoch.Add(time.Duration(i)*time.Second))
		if !d.Allowed {
			t.Fatalf("request %d rejected, want allowed", i+1)
		}
		if d.Remaining != 2-i {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, d.Remaining, 2-i)
		}
	}

	d := l.Admit("user-1", "/api/v1/videos/feed", epoch.Add(10*time.Second))
	if d.Allowed {
		t.Fatal("4th request allowed, want rejected")
	}
	if d.RetryAfter != 50*time.Second {
		t.Errorf("RetryAfter = %v, want 50s", d.RetryAfter)
	}

	// rejected requests are not recorded
	if got := l.Count("user-1", epoch.Add(10*time.Second)); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}

	// first timestamp ages out exactly at t=60s
	if d := l.Admit("user-1", "/api/v1/videos/feed", epoch.Add(60*time.Second)); !d.Allowed {
		t.Error("request at t=60s rejected, want allowed")
	}
}

func TestAdmitIsolatesIdentities(t *testing.T) {
	t.Parallel()

	l := newTestLimiter(t, time.Minute, 1)

	if d := l.Admit("alice", "/api/v1/keywords", epoch); !d.Allowed {
		t.Fatal("alice first request rejected")
	}
	if d := l.Admit("alice", "/api/v1/keywords", epoch); d.Allowed {
		t.Fatal("alice second request allowed")
	}
	if d := l.Admit("bob", "/api/v1/keywords", epoch); !d.Allowed {
		t.Error("bob rejected because of alice's window")
	}
}

func TestAdmitUnscopedPathsBypass(t *testing.T) {
	t.Parallel()

	l := newTestLimiter(t, time.Minute, 1, "/api/v1/keywords")

	for i := 0; i < 100; i++ {
		d := l.Admit("client", "/api/v1/channels", epoch)
		if !d.Allowed || d.Scoped {
			t.Fatalf("unscoped request %d: Allowed=%v Scoped=%v", i, d.Allowed, d.Scoped)
		}
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (no bookkeeping for unscoped paths)", l.Len())
	}

	if d := l.Admit("client", "/api/v1/keywords/abc", epoch); !d.Allowed || !d.Scoped {
		t.Errorf("scoped request: Allowed=%v Scoped=%v, want true/true", d.Allowed, d.Scoped)
	}
}

func TestInScopeEmptyPrefixesLimitsEverything(t *testing.T) {
	t.Parallel()

	l := newTestLimiter(t, time.Minute, 1)
	for _, p := range []string{"/", "/health/live", "/api/v1/keywords"} {
		if !l.InScope(p) {
			t.Errorf("InScope(%q) = false, want true", p)
		}
	}
}

func TestAdmitConcurrentSameIdentity(t *testing.T) {
	t.Parallel()

	const maxRequests = 10
	l := newTestLimiter(t, time.Minute, maxRequests)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("shared", "/api/v1/keywords", epoch).Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != maxRequests {
		t.Errorf("allowed = %d, want exactly %d", got, maxRequests)
	}
}

func TestSweepRemovesIdleIdentities(t *testing.T) {
	t.Parallel()

	l := newTestLimiter(t, time.Minute, 5)

	for i := 0; i < 10; i++ {
		l.Admit(fmt.Sprintf("idle-%d", i), "/x", epoch)
	}
	l.Admit("active", "/x", epoch.Add(90*time.Second))

	if l.Len() != 11 {
		t.Fatalf("Len() = %d, want 11", l.Len())
	}

	removed := l.Sweep(epoch.Add(100 * time.Second))
	if removed != 10 {
		t.Errorf("Sweep() removed %d, want 10", removed)
	}
	if l.Len() != 1 {
		t.Errorf("Len() after sweep = %d, want 1", l.Len())
	}
	if got := l.Count("active", epoch.Add(100*time.Second)); got != 1 {
		t.Errorf("Count(active) = %d, want 1", got)
	}
}

func TestSweepConcurrentWithAdmit(t *testing.T) {
	t.Parallel()

	l := newTestLimiter(t, time.Millisecond, 1000)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				l.Sweep(time.Now())
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		l.Admit(fmt.Sprintf("id-%d", i%17), "/x", time.Now())
	}
	close(stop)
	wg.Wait()
}
