// Package hooks lets applications observe and alter the handler assembly at
// named points of the bootstrap. Wrap hooks receive the handler built so far
// and return a replacement, typically the same handler wrapped once more.
package hooks

import (
	"net/http"

	"github.com/vk/girder/internal/config"
)

// Hook names fired by the configurator during handler assembly.
const (
	BeforeConfig = "before_config"
	AfterConfig  = "after_config"
)

// WrapFunc is a hook callback that may replace the handler under assembly.
type WrapFunc func(h http.Handler, settings config.Settings) http.Handler

// Registry keeps wrap hooks by name. Registration happens at configuration
// time on a single goroutine; no locking is needed.
type Registry struct {
	wraps map[string][]WrapFunc
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{wraps: make(map[string][]WrapFunc)}
}

// RegisterWrap appends fn to the hooks fired under name, preserving
// registration order.
func (r *Registry) RegisterWrap(name string, fn WrapFunc) {
	r.wraps[name] = append(r.wraps[name], fn)
}

// NotifyWithValue threads the handler through every hook registered under
// name and returns the final value. With no hooks registered the handler is
// returned unchanged.
func (r *Registry) NotifyWithValue(name string, h http.Handler, settings config.Settings) http.Handler {
	for _, fn := range r.wraps[name] {
		if wrapped := fn(h, settings); wrapped != nil {
			h = wrapped
		}
	}
	return h
}
