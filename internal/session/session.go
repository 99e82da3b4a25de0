// Package session provides the HTTP session object and its storage backends.
// Sessions are lazy: nothing is loaded from the store until the first value
// access, and nothing is persisted unless the session was accessed.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is a per-request, lazily loaded bag of values identified by a
// client cookie. It is used from a single goroutine serving the request.
type Session struct {
	id       string
	store    Store
	ttl      time.Duration
	values   map[string]any
	isNew    bool
	loaded   bool
	accessed bool
}

// New creates a session bound to the given store. An empty id starts a fresh
// session with a generated identifier.
func New(store Store, id string, ttl time.Duration) *Session {
	s := &Session{store: store, id: id, ttl: ttl}
	if id == "" {
		s.id = uuid.NewString()
		s.isNew = true
	}
	return s
}

// ID returns the session identifier sent back to the client.
func (s *Session) ID() string { return s.id }

// IsNew reports whether the identifier was generated for this request rather
// than received from the client.
func (s *Session) IsNew() bool { return s.isNew }

// Accessed reports whether any value was read or written. Only accessed
// sessions are persisted and only accessed new sessions earn a cookie.
func (s *Session) Accessed() bool { return s.accessed }

// Get returns the value stored under key, loading the session on first use.
func (s *Session) Get(ctx context.Context, key string) (any, bool) {
	s.load(ctx)
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value under key, loading the session on first use.
func (s *Session) Set(ctx context.Context, key string, value any) {
	s.load(ctx)
	s.values[key] = value
}

// Delete removes the value stored under key.
func (s *Session) Delete(ctx context.Context, key string) {
	s.load(ctx)
	delete(s.values, key)
}

// Invalidate discards all values and removes the session from the store.
func (s *Session) Invalidate(ctx context.Context) error {
	s.accessed = true
	s.loaded = true
	s.values = make(map[string]any)
	return s.store.Delete(ctx, s.id)
}

// Save persists the session values to the store.
func (s *Session) Save(ctx context.Context) error {
	if !s.loaded {
		return nil
	}
	return s.store.Save(ctx, s.id, s.values, s.ttl)
}

// load fetches the stored values once. A missing or corrupt record starts an
// empty session instead of failing the request.
func (s *Session) load(ctx context.Context) {
	s.accessed = true
	if s.loaded {
		return
	}
	s.loaded = true

	values, found, err := s.store.Load(ctx, s.id)
	if err != nil || !found || values == nil {
		s.values = make(map[string]any)
		if !found {
			s.isNew = true
		}
		return
	}
	s.values = values
}

type ctxKey struct{}

// WithSession returns a context carrying the request's session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session placed by the session middleware. The
// boolean is false when the session feature is not configured.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}
