// Package throttle suppresses repeat notifications for the same
// (user, subject) pair within a minimum interval. The cache is volatile by
// design: losing it on restart only risks one extra notification per pair,
// and the notification log remains the durable truth.
package throttle

import (
	"sync"
	"time"
)

// Cache is consulted before a throttled dispatch path sends, and updated
// after a successful dispatch. The check and the record are two calls, not
// one atomic operation; two racing dispatches for the same key may both pass,
// which is an accepted bounded-duplication risk.
type Cache interface {
	// ShouldSend reports whether at least minInterval has elapsed since the
	// last recorded send for (userID, subjectID). An absent key always allows.
	ShouldSend(userID, subjectID int64, minInterval time.Duration) bool

	// RecordSent stores the time of a successful dispatch. Last write wins.
	RecordSent(userID, subjectID int64, sentAt time.Time)
}

type key struct {
	userID    int64
	subjectID int64
}

// MemoryCache is the in-process Cache implementation. Safe for concurrent
// use. A Redis-backed implementation can replace it once multiple dispatcher
// instances run concurrently.
type MemoryCache struct {
	mu       sync.RWMutex
	lastSent map[key]time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		lastSent: make(map[key]time.Time),
	}
}

func (c *MemoryCache) ShouldSend(userID, subjectID int64, minInterval time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	last, ok := c.lastSent[key{userID, subjectID}]
	if !ok {
		return true
	}
	return time.Since(last) >= minInterval
}

func (c *MemoryCache) RecordSent(userID, subjectID int64, sentAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSent[key{userID, subjectID}] = sentAt
}

// Len returns the number of tracked pairs.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lastSent)
}
