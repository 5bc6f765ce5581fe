package cache

import (
	"sync"
	"time"
)

// Single holds at most one entry with a fixed TTL. It is meant for the
// common "primary device" case where there is exactly one snapshot to
// keep warm.
//
// An expired entry is not removed on read: it expires in place and is
// reported as a miss until the next Set overwrites it. HasEntry still
// reports true for such stale entries, which distinguishes "has stale
// data" from "never populated".
type Single[T any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	entry *Entry[T]
}

// NewSingle returns an empty single-entry cache with the given TTL.
func NewSingle[T any](ttl time.Duration) *Single[T] {
	return &Single[T]{ttl: ttl}
}

// Get returns the cached value if an entry exists and is within its
// TTL. A hit increments the entry's access counter; misses (absent or
// expired) return the zero value and false, never an error.
func (c *Single[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil || !c.entry.Valid(c.ttl) {
		var zero T
		return zero, false
	}
	c.entry.recordAccess()
	return c.entry.value, true
}

// Set unconditionally replaces any existing entry with a fresh one
// wrapping value. The new entry starts with a zero access count.
func (c *Single[T]) Set(value T) {
	c.mu.Lock()
	c.entry = NewEntry(value)
	c.mu.Unlock()
}

// HasEntry reports whether an entry is present, valid or not.
func (c *Single[T]) HasEntry() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry != nil
}

// Age returns the age of the current entry, or false when the cache
// has never been populated.
func (c *Single[T]) Age() (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return 0, false
	}
	return c.entry.Age(), true
}

// Clear drops the entry, if any.
func (c *Single[T]) Clear() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

// TTL returns the cache's configured time-to-live.
func (c *Single[T]) TTL() time.Duration {
	return c.ttl
}
