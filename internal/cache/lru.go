// Sieve - Content Visibility and Moderation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sieve

// Package cache provides a bounded LRU with per-entry TTL, used to suppress
// duplicate keyword submissions.
package cache

import (
	"sync"
	"time"
)

type lruEntry struct {
	key       string
	expiresAt time.Time
	prev      *lruEntry
	next      *lruEntry
}

// LRU is a thread-safe set of recently seen keys. Entries expire after the
// TTL; when full, the least recently seen key is evicted.
//
// All operations are O(1): a map locates entries and a doubly-linked list
// between two sentinels keeps them in recency order.
type LRU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*lruEntry

	// head.next is the most recently seen, tail.prev the least
	head *lruEntry
	tail *lruEntry

	hits   int64
	misses int64
}

// NewLRU creates an LRU. Non-positive arguments fall back to 10000 entries
// and a five second TTL.
func NewLRU(capacity int, ttl time.Duration) *LRU {
	if capacity <= 0 {
		capacity = 10000
	}
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	c := &LRU{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruEntry, min(capacity, 1024)),
		head:     &lruEntry{},
		tail:     &lruEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// SeenWithin reports whether key was recorded less than the TTL before now.
// A key that was not seen, or whose entry expired, is recorded at now and
// reported as new.
func (c *LRU) SeenWithin(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		if now.Before(entry.expiresAt) {
			// the first sighting bounds the window, so expiresAt is not extended
			c.moveToFront(entry)
			c.hits++
			return true
		}
		c.removeEntry(entry)
	}

	entry := &lruEntry{key: key, expiresAt: now.Add(c.ttl)}
	c.addToFront(entry)
	c.items[key] = entry
	for len(c.items) > c.capacity {
		c.evictOldest()
	}

	c.misses++
	return false
}

// Forget removes key. It reports whether key was present.
func (c *LRU) Forget(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		c.removeEntry(entry)
		return true
	}
	return false
}

// Len returns the number of entries, expired ones included.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns duplicate hits, first sightings and the current size.
func (c *LRU) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Must be called with c.mu held.
func (c *LRU) addToFront(entry *lruEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *LRU) moveToFront(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *LRU) removeEntry(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

func (c *LRU) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
