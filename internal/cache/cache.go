// Package cache provides the per-application cache manager exposed to
// request handlers by the caching feature. The manager hands out named
// regions, each a thread-safe in-memory key/value store with a TTL.
package cache

import (
	"context"
	"sync"
	"time"
)

// Manager owns the cache regions of one application instance.
type Manager struct {
	mu         sync.Mutex
	regions    map[string]*Region
	defaultTTL time.Duration
	regionTTLs map[string]time.Duration
}

// NewManager creates a manager whose regions default to the given TTL.
// Per-region TTLs override the default for the named regions.
func NewManager(defaultTTL time.Duration, regionTTLs map[string]time.Duration) *Manager {
	return &Manager{
		regions:    make(map[string]*Region),
		defaultTTL: defaultTTL,
		regionTTLs: regionTTLs,
	}
}

// Region returns the named region, creating it on first use.
func (m *Manager) Region(name string) *Region {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.regions[name]; ok {
		return r
	}
	ttl := m.defaultTTL
	if override, ok := m.regionTTLs[name]; ok {
		ttl = override
	}
	r := &Region{ttl: ttl, entries: make(map[string]entry)}
	m.regions[name] = r
	return r
}

// Region is a thread-safe key/value store with per-entry expiry.
type Region struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

type entry struct {
	value     any
	expiresAt time.Time // zero means no expiry
}

// Get returns the cached value for key, if present and not expired.
func (r *Region) Get(key string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(r.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the region's TTL.
func (r *Region) Set(key string, value any) {
	var expiresAt time.Time
	if r.ttl != 0 {
		expiresAt = time.Now().Add(r.ttl)
	}

	r.mu.Lock()
	r.entries[key] = entry{value: value, expiresAt: expiresAt}
	r.mu.Unlock()
}

// GetOrCreate returns the cached value for key, computing and storing it
// with fn on a miss. The callback runs outside the region lock; concurrent
// misses may compute the value more than once, last write wins.
func (r *Region) GetOrCreate(key string, fn func() (any, error)) (any, error) {
	if v, ok := r.Get(key); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return nil, err
	}
	r.Set(key, v)
	return v, nil
}

// Invalidate removes the entry for key.
func (r *Region) Invalidate(key string) {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
}

type ctxKey struct{}

// WithManager returns a context carrying the application's cache manager.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// FromContext extracts the cache manager placed by the caching middleware.
// The boolean is false when the caching feature is not configured.
func FromContext(ctx context.Context) (*Manager, bool) {
	m, ok := ctx.Value(ctxKey{}).(*Manager)
	return m, ok
}
