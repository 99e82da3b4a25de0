// Package configurator assembles an application from configuration features.
// Features are registered with optional precedence constraints, merged
// settings are pushed through each feature's configure and setup steps in a
// deterministic order, and the resulting middleware stack is wrapped around
// the application's root handler.
package configurator

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/ctxlog"
	"github.com/vk/girder/internal/hooks"
	"github.com/vk/girder/internal/ordering"
)

// Configurator aggregates configuration features into a single running
// http.Handler. It is used on a single goroutine at application startup.
type Configurator struct {
	features   *ordering.List
	settings   config.Settings
	hooks      *hooks.Registry
	configured bool
}

// New creates a configurator holding the given features. The default feature
// set is an explicit argument rather than baked into the constructor, so
// tests and embedders can assemble applications from any subset.
func New(regs ...Registration) (*Configurator, error) {
	c := &Configurator{
		features: ordering.New(),
		settings: config.Settings{"debug": false},
		hooks:    hooks.NewRegistry(),
	}
	for _, reg := range regs {
		if err := c.AddFeature(reg.Feature, reg.After); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddFeature registers a feature, optionally attaching it after the named
// feature kind. The feature's defaults are injected into the settings
// immediately, so later merges of user configuration override them.
func (c *Configurator) AddFeature(f Feature, after string) error {
	ns := f.Namespace()
	if ns == "" || !strings.HasSuffix(ns, ".") {
		return Errorf("feature %q must have a namespace in the form \"namespace.\", got %q", f.Kind(), ns)
	}

	for name, value := range f.Defaults() {
		c.settings[ns+name] = copyValue(value)
	}

	c.features.Add(f, after)
	return nil
}

// Settings returns the live settings dictionary.
func (c *Configurator) Settings() config.Settings {
	return c.settings
}

// Hooks returns the hook registry fired during handler assembly.
func (c *Configurator) Hooks() *hooks.Registry {
	return c.hooks
}

// Features returns the features in their resolved precedence order.
func (c *Configurator) Features() []Feature {
	items := c.features.Items()
	out := make([]Feature, 0, len(items))
	for _, item := range items {
		out = append(out, item.(Feature))
	}
	return out
}

// Configure merges the application and environment configuration over the
// accumulated defaults, coerces each feature's options, and runs every
// feature's Configure step in precedence order.
func (c *Configurator) Configure(ctx context.Context, appCfg, envCfg map[string]any) error {
	logger := ctxlog.FromContext(ctx)

	c.settings.Merge(appCfg)
	c.settings.Merge(envCfg)

	for _, item := range c.features.Unreachable() {
		// An unreachable feature is dropped from processing, matching the
		// registry semantics, but the operator should hear about it.
		logger.Warn("Feature is unreachable and will be skipped.",
			"kind", item.Kind(), "hint", "its 'after' target was never registered")
	}

	for _, f := range c.Features() {
		if err := c.settings.Coerce(f.Namespace(), f.Converters()); err != nil {
			return fmt.Errorf("feature %s: %w", f.Kind(), err)
		}
		if err := f.Configure(ctx, c.settings); err != nil {
			return fmt.Errorf("feature %s failed to configure: %w", f.Kind(), err)
		}
	}

	c.configured = true
	logger.Debug("All features configured.", "count", c.features.Len())
	return nil
}

// Setup runs every feature's Setup step in precedence order. Configure must
// have completed first.
func (c *Configurator) Setup(ctx context.Context) error {
	if !c.configured {
		return Errorf("setup called before configure")
	}

	for _, f := range c.Features() {
		if err := f.Setup(ctx, c.settings); err != nil {
			return fmt.Errorf("feature %s failed to set up: %w", f.Kind(), err)
		}
	}

	ctxlog.FromContext(ctx).Debug("All features set up.")
	return nil
}

// MakeHandler runs the full bootstrap sequence and returns the application
// handler: merge and configure, set up, fire the before-config hooks, wrap
// each feature's middleware in precedence order, fire the after-config hooks.
func (c *Configurator) MakeHandler(ctx context.Context, root http.Handler, appCfg, envCfg map[string]any) (http.Handler, error) {
	if err := c.Configure(ctx, appCfg, envCfg); err != nil {
		return nil, err
	}
	if err := c.Setup(ctx); err != nil {
		return nil, err
	}

	h := c.hooks.NotifyWithValue(hooks.BeforeConfig, root, c.settings)
	for _, f := range c.Features() {
		h = f.Middleware(c.settings, h)
	}
	h = c.hooks.NotifyWithValue(hooks.AfterConfig, h, c.settings)

	ctxlog.FromContext(ctx).Debug("Application handler assembled.", "features", c.features.Len())
	return h, nil
}

// copyValue clones one level of maps and slices so shared default literals
// are never mutated through the settings.
func copyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return maps.Clone(tv)
	case []string:
		return slices.Clone(tv)
	case []any:
		return slices.Clone(tv)
	}
	return v
}
