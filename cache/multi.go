package cache

import (
	"sync"
	"time"
)

// Multi maps keys (device indexes, route names, ...) to cached entries
// sharing one TTL, with an optional bound on the number of entries.
//
// Reads take a shared lock and writes an exclusive one, so many
// concurrent readers do not serialize behind each other. For a single
// key, Set operations are linearizable: the last Set to complete is
// the one subsequent Gets observe. There is no ordering guarantee
// across distinct keys.
//
// Entries past their TTL are logically absent on Get but stay in the
// table until CleanupExpired, Delete, Clear, or replacement; Stats
// still counts them.
type Multi[K comparable, T any] struct {
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	entries    map[K]*Entry[T]
}

// NewMulti returns an unbounded multi-key cache with the given TTL.
func NewMulti[K comparable, T any](ttl time.Duration) *Multi[K, T] {
	return NewMultiBounded[K, T](ttl, 0)
}

// NewMultiBounded returns a multi-key cache holding at most maxEntries
// entries. A maxEntries of 0 disables the bound entirely (it is the
// unbounded sentinel, not a zero-capacity cache); this matches the
// zero value NewMulti delegates with.
func NewMultiBounded[K comparable, T any](ttl time.Duration, maxEntries int) *Multi[K, T] {
	return &Multi[K, T]{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[K]*Entry[T]),
	}
}

// Get returns the cached value for key if present and within TTL. A
// hit increments the entry's access counter. Expired entries are left
// in place and reported as a miss.
func (c *Multi[K, T]) Get(key K) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !e.Valid(c.ttl) {
		var zero T
		return zero, false
	}
	e.recordAccess()
	return e.value, true
}

// Set inserts or replaces the entry for key. When the cache is bounded
// and key is new, the oldest entries by creation time are evicted
// first so the bound holds after insertion. Replacing an existing key
// never evicts.
func (c *Multi[K, T]) Set(key K, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxEntries > 0 {
		if _, exists := c.entries[key]; !exists {
			for len(c.entries) >= c.maxEntries {
				c.evictOldestLocked()
			}
		}
	}
	c.entries[key] = NewEntry(value)
}

// evictOldestLocked removes the entry with the earliest creation time.
// Caller holds the write lock.
func (c *Multi[K, T]) evictOldestLocked() {
	var (
		oldestKey K
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.createdAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.createdAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// GetOrCompute returns the cached value for key, or calls produce,
// stores its result, and returns it. The producer error is returned
// untouched and nothing is cached on failure, leaving any stale entry
// in place for a later retry.
//
// The lock is not held across the produce call, so a slow producer for
// one key does not block access to others. The flip side: two
// goroutines racing on the same missing key may both invoke produce,
// and the last Set wins. Production is best-effort, not exactly-once.
func (c *Multi[K, T]) GetOrCompute(key K, produce func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := produce()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// Has reports whether an entry exists for key, valid or expired.
func (c *Multi[K, T]) Has(key K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Len returns the number of held entries, expired ones included.
func (c *Multi[K, T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// IsEmpty reports whether the cache holds no entries at all.
func (c *Multi[K, T]) IsEmpty() bool {
	return c.Len() == 0
}

// Delete removes the entry for key, if any, regardless of validity.
func (c *Multi[K, T]) Delete(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all entries.
func (c *Multi[K, T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[K]*Entry[T])
	c.mu.Unlock()
}

// CleanupExpired removes every entry past its TTL and returns how many
// were dropped. The cache never schedules this itself.
func (c *Multi[K, T]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if !e.Valid(c.ttl) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Stats computes aggregate statistics over all held entries, expired
// or not. An empty cache yields the zero Stats value.
func (c *Multi[K, T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var s Stats
	s.TotalEntries = len(c.entries)
	var oldest time.Time
	for _, e := range c.entries {
		s.TotalAccesses += e.Accesses()
		if oldest.IsZero() || e.createdAt.Before(oldest) {
			oldest = e.createdAt
		}
	}
	if !oldest.IsZero() {
		s.OldestEntryAge = time.Since(oldest)
	}
	return s
}

// TTL returns the cache's configured time-to-live.
func (c *Multi[K, T]) TTL() time.Duration {
	return c.ttl
}
