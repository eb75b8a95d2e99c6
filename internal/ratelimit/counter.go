package ratelimit

import (
	"context"
	"sync"
	"time"
)

// WindowedCounter is the one shared mutable resource in the pipeline. Hit must
// be atomic across concurrent callers of the same key: it records one request
// at now, drops requests older than now-window, and reports the surviving
// count (including the request just recorded) plus the oldest surviving
// request time.
type WindowedCounter interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration) (count int64, oldest time.Time, err error)
}

// MemoryCounter is an in-process WindowedCounter for tests and single-instance
// deployments. A single mutex gives the same atomicity the Redis script does.
type MemoryCounter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{hits: make(map[string][]time.Time)}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, now time.Time, window time.Duration) (int64, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-window)
	kept := m.hits[key][:0]
	for _, t := range m.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	m.hits[key] = kept
	return int64(len(kept)), kept[0], nil
}
