package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	failures  int
	expiresAt time.Time
}

// Memory is a process-local Limiter for single-instance deployments and tests.
type Memory struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*entry
	now     func() time.Time
}

func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// current returns the live entry for key, dropping it if expired.
// Callers hold m.mu.
func (m *Memory) current(key string) *entry {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil
	}
	return e
}

func (m *Memory) Check(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.current(keyPrefix + key)
	if e == nil || e.failures < m.limit {
		return Decision{}, nil
	}
	return Decision{Locked: true, Remaining: e.expiresAt.Sub(m.now())}, nil
}

func (m *Memory) RecordFailure(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := keyPrefix + key
	e := m.current(k)
	if e == nil {
		e = &entry{expiresAt: m.now().Add(m.window)}
		m.entries[k] = e
	}
	e.failures++
	return nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, keyPrefix+key)
	return nil
}
