// Package ratelimit provides fixed-window request limiting keyed by client
// identifier. The counter lives behind the CounterStore interface so a
// multi-instance deployment can swap the in-process store for a shared
// external cache.
package ratelimit

import (
	"sync"
	"time"
)

// CounterStore counts hits per key within a fixed window. Incr records a
// hit and returns the count accumulated in the key's current window.
type CounterStore interface {
	Incr(key string, window time.Duration) int
}

// Limiter allows max hits per key per window.
type Limiter struct {
	store  CounterStore
	max    int
	window time.Duration
}

// New creates a Limiter over the given store.
func New(store CounterStore, max int, window time.Duration) *Limiter {
	return &Limiter{store: store, max: max, window: window}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	return l.store.Incr(key, l.window) <= l.max
}

type windowEntry struct {
	count int
	reset time.Time
}

// Memory is the in-process CounterStore. Counters reset when their window
// expires and on process restart; adequate for a single-instance
// deployment only.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
}

// NewMemory creates a Memory store and starts a background sweeper that
// drops expired windows.
func NewMemory() *Memory {
	m := &Memory{entries: make(map[string]*windowEntry)}
	go m.sweep()
	return m
}

// Incr implements CounterStore.
func (m *Memory) Incr(key string, window time.Duration) int {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entries[key]
	if e == nil || now.After(e.reset) {
		e = &windowEntry{reset: now.Add(window)}
		m.entries[key] = e
	}
	e.count++
	return e.count
}

func (m *Memory) sweep() {
	ticker := time.NewTicker(time.Minute)
	for range ticker.C {
		now := time.Now()
		m.mu.Lock()
		for key, e := range m.entries {
			if now.After(e.reset) {
				delete(m.entries, key)
			}
		}
		m.mu.Unlock()
	}
}
