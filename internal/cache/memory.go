// Package cache provides the rate table cache backends used by the
// aggregator: an in-process TTL map and a Redis-backed variant sharing the
// same contract. Get never returns an expired entry.
package cache

import (
	"context"
	"sync"
	"time"

	"arbscan/internal/market"
)

type entry struct {
	table     *market.RateTable
	expiresAt time.Time
}

// Memory is the in-process cache. Entries are evicted lazily: an expired
// entry is dropped by the read that observes it, never by a background
// sweeper. Access is serialized internally.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the table cached under key if present and fresh.
func (m *Memory) Get(_ context.Context, key string) (*market.RateTable, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		// re-check: the entry may have been refreshed since the read lock
		if cur, still := m.entries[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.table, true
}

// Set stores table under key for ttl. A non-positive ttl drops the key.
func (m *Memory) Set(_ context.Context, key string, table *market.RateTable, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl <= 0 {
		delete(m.entries, key)
		return
	}
	m.entries[key] = entry{table: table, expiresAt: m.now().Add(ttl)}
}

// Len reports the number of entries currently held, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
