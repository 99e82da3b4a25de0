// Package caching provides the application cache feature. It builds the
// cache manager from the cache.* options and makes it reachable from every
// request through the context.
package caching

import (
	"context"
	"net/http"
	"time"

	"github.com/vk/girder/internal/cache"
	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/ctxlog"
)

// FeatureKind is the precedence key other features can attach after.
const FeatureKind = "caching"

// Feature implements the configurator.Feature interface for this package.
type Feature struct {
	manager *cache.Manager
}

// New creates the caching feature.
func New() *Feature {
	return &Feature{}
}

// Kind implements configurator.Feature.
func (f *Feature) Kind() string { return FeatureKind }

// Namespace implements configurator.Feature.
func (f *Feature) Namespace() string { return "cache." }

// Defaults implements configurator.Feature.
func (f *Feature) Defaults() map[string]any {
	return map[string]any{
		"expire": 600,
	}
}

// Converters implements configurator.Feature.
func (f *Feature) Converters() map[string]config.Converter {
	return map[string]config.Converter{
		"expire": config.AsInt,
	}
}

// Configure implements configurator.Feature.
func (f *Feature) Configure(context.Context, config.Settings) error { return nil }

// Setup builds the cache manager. Per-region lifetimes come from
// cache.regions.<name> options, in seconds, overriding cache.expire.
func (f *Feature) Setup(ctx context.Context, settings config.Settings) error {
	defaultTTL := time.Duration(settings.Int("cache.expire", 600)) * time.Second

	regionTTLs := make(map[string]time.Duration)
	for name := range settings.Cut("cache.regions.") {
		seconds := settings.Int("cache.regions."+name, 0)
		regionTTLs[name] = time.Duration(seconds) * time.Second
	}

	f.manager = cache.NewManager(defaultTTL, regionTTLs)
	settings["cache.manager"] = f.manager
	ctxlog.FromContext(ctx).Debug("Cache manager ready.", "expire", defaultTTL, "regions", len(regionTTLs))
	return nil
}

// Middleware puts the cache manager into every request context.
func (f *Feature) Middleware(_ config.Settings, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(cache.WithManager(r.Context(), f.manager)))
	})
}

// Manager returns the cache manager built during Setup.
func (f *Feature) Manager() *cache.Manager { return f.manager }
