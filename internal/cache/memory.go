package cache

import (
	"context"
	"sync"
	"time"

	"github.com/JakeFAU/mission-site/internal/mission"
)

type entry struct {
	jobs    []mission.Job
	expires time.Time
}

// Memory is an in-process TTL cache. A zero TTL never expires.
type Memory struct {
	mu      sync.RWMutex
	clock   mission.Clock
	entries map[string]entry
}

var _ Cache = (*Memory)(nil)

// NewMemory returns an empty Memory cache reading time from clock.
func NewMemory(clock mission.Clock) *Memory {
	return &Memory{clock: clock, entries: make(map[string]entry)}
}

// Get returns a copy of the entry when it has not expired.
func (m *Memory) Get(_ context.Context, key string) ([]mission.Job, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.clock.Now().Before(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return append([]mission.Job(nil), e.jobs...), true, nil
}

// Set stores a copy of jobs.
func (m *Memory) Set(_ context.Context, key string, jobs []mission.Job, ttl time.Duration) error {
	e := entry{jobs: append([]mission.Job(nil), jobs...)}
	if ttl > 0 {
		e.expires = m.clock.Now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}
