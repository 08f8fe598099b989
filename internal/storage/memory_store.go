package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/catalog-client/internal/domain"
)

type memoryEntry struct {
	snap   domain.Snapshot
	expiry time.Time
}

// memoryStore keeps snapshots for the life of the process. A restart
// republishes every watched listing once.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	cadence *cleanupCadence
	now     func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     opts.SnapshotTTL,
		cadence: newCleanupCadence(opts.CleanupInterval, time.Now()),
		now:     time.Now,
	}
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) Get(key string) (domain.Snapshot, bool, error) {
	now := m.now()
	_ = m.cadence.run(now, m.sweep)

	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !e.expiry.After(now) {
		return domain.Snapshot{}, false, nil
	}
	return e.snap, true, nil
}

func (m *memoryStore) Put(snap domain.Snapshot) error {
	if snap.Key == "" {
		return fmt.Errorf("snapshot key is empty")
	}
	now := m.now()
	_ = m.cadence.run(now, m.sweep)
	if snap.SeenAt.IsZero() {
		snap.SeenAt = now
	}

	m.mu.Lock()
	m.entries[snap.Key] = memoryEntry{snap: snap, expiry: now.Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) sweep(now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, e := range m.entries {
		if !e.expiry.After(now) {
			delete(m.entries, k)
		}
	}
	return nil
}

func (m *memoryStore) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
