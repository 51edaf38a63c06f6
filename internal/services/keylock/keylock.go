// Package keylock serializes work per key while letting different keys run
// in parallel.
package keylock

import (
	"context"
	"sync"
)

type entry struct {
	sem      chan struct{}
	refCount int
}

// Map hands out one lock per key. Entries are dropped when no holder or
// waiter references them.
type Map struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty lock map
func New() *Map {
	return &Map{entries: make(map[string]*entry)}
}

func (m *Map) acquire(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refCount++
	return e
}

func (m *Map) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.refCount--
	if e.refCount == 0 {
		delete(m.entries, key)
	}
}

// Lock blocks until key is free or ctx is done. The returned function
// releases the lock and must be called exactly once.
func (m *Map) Lock(ctx context.Context, key string) (func(), error) {
	e := m.acquire(key)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			m.release(key, e)
		})
	}, nil
}

// Len returns the number of keys currently held or waited on
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
