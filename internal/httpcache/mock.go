package httpcache

import (
	"sync"
	"time"
)

// MockCache is a deterministic in-memory Cache for handler tests. It
// honors TTLs and counts hits and misses, so tests can assert that an
// endpoint was served from cache rather than recomputed. Unlike the
// ristretto-backed cache it admits every Set synchronously.
type MockCache struct {
	mu      sync.Mutex
	entries map[string]mockEntry
	hits    uint64
	misses  uint64
}

type mockEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string]mockEntry)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || (!e.expiresAt.IsZero() && time.Now().After(e.expiresAt)) {
		delete(m.entries, key)
		m.misses++
		return nil, false
	}
	m.hits++
	return e.value, true
}

func (m *MockCache) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := mockEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.entries[key] = e
}

func (m *MockCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]mockEntry)
}

func (m *MockCache) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Hits:   m.hits,
		Misses: m.misses,
		Items:  int64(len(m.entries)),
	}
}
