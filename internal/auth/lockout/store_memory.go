package lockout

import (
	"context"
	"sync"
)

// MemoryStore keeps lockout records in process memory. Records are
// overwritten when the same pair fails again and deleted on successful
// login, so the map stays proportional to recently failing pairs.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]*Record
}

// NewMemoryStore creates an empty in-memory lockout store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]*Record)}
}

// Get returns a copy of the record for the key, or (nil, nil) when absent.
func (m *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.recs[key]
	if !ok {
		return nil, nil
	}
	return cloneRecord(rec), nil
}

// Put stores a copy of the record under its key.
func (m *MemoryStore) Put(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recs[rec.Key] = cloneRecord(rec)
	return nil
}

// Delete removes the record for the key. Deleting an absent key is a no-op.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.recs, key)
	return nil
}

func cloneRecord(rec *Record) *Record {
	clone := *rec
	if rec.LockedUntil != nil {
		until := *rec.LockedUntil
		clone.LockedUntil = &until
	}
	return &clone
}
