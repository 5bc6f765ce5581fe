package cache

import (
	"sync/atomic"
	"time"
)

// Entry is one cached snapshot together with its creation time and a
// hit counter. Entries are created by Set operations and replaced
// wholesale; the counter is never reset in place.
type Entry[T any] struct {
	value     T
	createdAt time.Time
	accesses  atomic.Uint64
}

// NewEntry wraps value in a fresh entry stamped with the current time
// and a zero access count.
func NewEntry[T any](value T) *Entry[T] {
	return &Entry[T]{value: value, createdAt: time.Now()}
}

// Valid reports whether the entry is still within its TTL. It is a
// pure function of wall-clock time and does not touch the hit counter.
func (e *Entry[T]) Valid(ttl time.Duration) bool {
	return time.Since(e.createdAt) < ttl
}

// Age returns how long ago the entry was created.
func (e *Entry[T]) Age() time.Duration {
	return time.Since(e.createdAt)
}

// Accesses returns the number of successful reads served by this entry.
func (e *Entry[T]) Accesses() uint64 {
	return e.accesses.Load()
}

// recordAccess counts one successful read. The counter is atomic so
// cache hits can be served under a shared (read) lock.
func (e *Entry[T]) recordAccess() {
	e.accesses.Add(1)
}
