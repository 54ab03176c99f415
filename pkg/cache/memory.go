package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/turnosapp/turnos/pkg/metrics"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a process-local driver. Values go through JSON like the Redis
// driver so both behave the same for callers.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string, dest any) bool {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || (!e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)) {
		metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()
		return false
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()
		return false
	}

	metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
	return true
}

// Set stores value; a ttl <= 0 never expires.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	e := entry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}
