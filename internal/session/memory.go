package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an ephemeral, thread-safe session store. Suitable for a
// single process; sessions are lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	values    map[string]any
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, id string) (map[string]any, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, false, nil
	}
	if !rec.expiresAt.IsZero() && time.Now().After(rec.expiresAt) {
		delete(m.records, id)
		return nil, false, nil
	}

	// Copy so the caller can mutate freely.
	values := make(map[string]any, len(rec.values))
	for k, v := range rec.values {
		values[k] = v
	}
	return values, true, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, id string, values map[string]any, ttl time.Duration) error {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}

	var expiresAt time.Time
	if ttl != 0 {
		expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.records[id] = memoryRecord{values: copied, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.records, id)
	m.mu.Unlock()
	return nil
}
