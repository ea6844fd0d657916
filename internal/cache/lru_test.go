// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestLRUSeenWithinWindow(t *testing.T) {
	t.Parallel()
	c := NewLRU(10, 5*time.Second)

	if c.SeenWithin("user-1\x00crypto", t0) {
		t.Fatal("first sighting reported as duplicate")
	}
	if !c.SeenWithin("user-1\x00crypto", t0.Add(4*time.Second)) {
		t.Error("repeat inside the window not reported")
	}
	if c.SeenWithin("user-2\x00crypto", t0.Add(time.Second)) {
		t.Error("different key reported as duplicate")
	}

	// the window is anchored at the first sighting
	if c.SeenWithin("user-1\x00crypto", t0.Add(5*time.Second)) {
		t.Error("expired entry reported as duplicate")
	}
	if !c.SeenWithin("user-1\x00crypto", t0.Add(6*time.Second)) {
		t.Error("re-recorded entry not reported")
	}

	hits, misses, size := c.Stats()
	if hits != 2 || misses != 3 || size != 2 {
		t.Errorf("Stats() = %d, %d, %d; want 2, 3, 2", hits, misses, size)
	}
}

func TestLRUEvictsLeastRecentlySeen(t *testing.T) {
	t.Parallel()
	c := NewLRU(3, time.Minute)

	c.SeenWithin("a", t0)
	c.SeenWithin("b", t0)
	c.SeenWithin("c", t0)
	c.SeenWithin("a", t0) // a becomes most recent
	c.SeenWithin("d", t0) // evicts b

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if c.SeenWithin("b", t0) {
		t.Error("b should have been evicted")
	}
	if !c.SeenWithin("a", t0) {
		t.Error("a should still be present")
	}
}

func TestLRUForget(t *testing.T) {
	t.Parallel()
	c := NewLRU(0, 0)

	if c.capacity != 10000 || c.ttl != 5*time.Second {
		t.Errorf("defaults = %d, %v", c.capacity, c.ttl)
	}

	c.SeenWithin("k", t0)
	if !c.Forget("k") {
		t.Error("Forget() = false for present key")
	}
	if c.Forget("k") {
		t.Error("Forget() = true for absent key")
	}
	if c.SeenWithin("k", t0) {
		t.Error("forgotten key reported as duplicate")
	}
}

func TestLRUConcurrentFirstSighting(t *testing.T) {
	t.Parallel()
	c := NewLRU(100, time.Minute)

	var fresh atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if !c.SeenWithin("shared", t0) {
				fresh.Add(1)
			}
			c.SeenWithin(fmt.Sprintf("own-%d", i), t0)
		}(i)
	}
	wg.Wait()

	if fresh.Load() != 1 {
		t.Errorf("first sightings of shared key = %d, want exactly 1", fresh.Load())
	}
	if c.Len() != 51 {
		t.Errorf("Len() = %d, want 51", c.Len())
	}
}
