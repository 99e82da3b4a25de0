// Package registry provides the request-scoped value registry feature. It
// makes a per-request Scope available to handlers through the request
// context and recovers handler panics according to the debug setting.
package registry

import (
	"bytes"
	"context"
	"net/http"
	"sync"

	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/configurator"
	"github.com/vk/girder/internal/ctxlog"
)

// FeatureKind is the precedence key other features can attach after.
const FeatureKind = "registry"

// Feature implements the configurator.Feature interface for this package.
type Feature struct {
	configurator.Base
}

// New creates the registry feature.
func New() *Feature {
	return &Feature{}
}

// Kind implements configurator.Feature.
func (f *Feature) Kind() string { return FeatureKind }

// Namespace implements configurator.Feature.
func (f *Feature) Namespace() string { return "registry." }

// Defaults implements configurator.Feature.
func (f *Feature) Defaults() map[string]any {
	return map[string]any{"streaming": true}
}

// Converters implements configurator.Feature.
func (f *Feature) Converters() map[string]config.Converter {
	return map[string]config.Converter{"streaming": config.AsBool}
}

// Configure migrates the deprecated flat registry_streaming key into the
// registry namespace.
func (f *Feature) Configure(ctx context.Context, settings config.Settings) error {
	if legacy, ok := settings["registry_streaming"]; ok {
		ctxlog.FromContext(ctx).Warn("registry_streaming is deprecated in favor of registry.streaming")
		value, err := config.AsBool(legacy)
		if err != nil {
			return configurator.Errorf("invalid registry_streaming value: %v", err)
		}
		settings["registry.streaming"] = value
	}
	return nil
}

// Middleware injects a fresh Scope into each request and recovers panics.
// With debug enabled panics propagate so the operator sees the full crash;
// otherwise the client gets a 500. With streaming disabled the response body
// is buffered until the handler returns, so a late panic still produces a
// clean error response.
func (f *Feature) Middleware(settings config.Settings, next http.Handler) http.Handler {
	streaming := settings.Bool("registry.streaming", true)
	preserveExceptions := settings.Bool("debug", false)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(WithScope(r.Context(), NewScope()))

		out := w
		var buf *bufferedWriter
		if !streaming {
			buf = &bufferedWriter{inner: w}
			out = buf
		}

		defer func() {
			if rec := recover(); rec != nil {
				if preserveExceptions {
					panic(rec)
				}
				ctxlog.FromContext(r.Context()).Error("Request handler panicked.",
					"panic", rec, "method", r.Method, "path", r.URL.Path)
				if buf != nil {
					buf.discard()
				}
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if buf != nil {
				buf.flush()
			}
		}()

		next.ServeHTTP(out, r)
	})
}

// Scope is a per-request key/value store, the process-wide analog of a
// request-local registry. Safe for use from helper goroutines spawned by a
// handler.
type Scope struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{values: make(map[string]any)}
}

// Get returns the value stored under key.
func (s *Scope) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value under key.
func (s *Scope) Set(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

type ctxKey struct{}

// WithScope returns a context carrying the request scope.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the scope placed by the registry middleware. The
// boolean is false when the registry feature is not configured.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Scope)
	return s, ok
}

// bufferedWriter holds back the response until the handler finishes, so a
// panic mid-handler never leaks a partial body.
type bufferedWriter struct {
	inner  http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (b *bufferedWriter) Header() http.Header { return b.inner.Header() }

func (b *bufferedWriter) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedWriter) flush() {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	b.inner.WriteHeader(b.status)
	_, _ = b.inner.Write(b.body.Bytes())
}

func (b *bufferedWriter) discard() {
	b.body.Reset()
	b.status = 0
}
