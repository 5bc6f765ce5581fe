// Package cache provides small TTL-based caches for expensive hardware
// snapshots: a single-entry cache for "the primary device", a multi-key
// cache with optional capacity-bound eviction, and derived statistics.
//
// The caches are passive data structures: expiry is evaluated lazily at
// read time and no background goroutines or timers are owned by the
// cache itself. Callers that want expired entries physically removed
// schedule CleanupExpired themselves.
//
// All caches are safe for concurrent use by multiple goroutines.
package cache

import "time"

// Stats is a point-in-time view over a Multi cache, computed across all
// physically present entries, including ones past their TTL that have
// not been cleaned up yet.
type Stats struct {
	// TotalEntries is the number of entries currently held.
	TotalEntries int `json:"total_entries"`
	// TotalAccesses is the sum of every entry's hit counter.
	TotalAccesses uint64 `json:"total_accesses"`
	// OldestEntryAge is the age of the oldest held entry, or zero
	// when the cache is empty.
	OldestEntryAge time.Duration `json:"oldest_entry_age"`
}
