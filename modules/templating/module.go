// Package templating provides the template engine registration feature. It
// owns the renderer engine registry, instantiates the requested engines at
// setup time, and publishes the resulting render functions through the
// settings for handlers to use.
package templating

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/configurator"
	"github.com/vk/girder/internal/ctxlog"
	"github.com/vk/girder/internal/render"
)

// FeatureKind is the precedence key other features can attach after.
const FeatureKind = "templating"

// Feature implements the configurator.Feature interface for this package.
type Feature struct {
	configurator.Base

	engines *render.EngineSet
}

// New creates the templating feature with an empty engine registry.
func New() *Feature {
	return &Feature{engines: render.NewEngineSet()}
}

// Kind implements configurator.Feature.
func (f *Feature) Kind() string { return FeatureKind }

// Namespace implements configurator.Feature.
func (f *Feature) Namespace() string { return "templating." }

// Defaults implements configurator.Feature.
func (f *Feature) Defaults() map[string]any {
	return map[string]any{
		"auto_reload": true,
		"renderers":   []string{},
		"default":     "html",
		"path":        "",
	}
}

// Converters implements configurator.Feature.
func (f *Feature) Converters() map[string]config.Converter {
	return map[string]config.Converter{
		"auto_reload": config.AsBool,
		"renderers":   config.AsList,
	}
}

// Configure registers the built-in engine factories, guarantees the json
// renderer is always available, and falls back to the first requested
// renderer when the configured default is not among them.
func (f *Feature) Configure(ctx context.Context, settings config.Settings) error {
	f.engines.Add(render.JSONFactory{})
	f.engines.Add(render.HTMLFactory{})
	f.engines.Add(render.CBORFactory{})
	settings["templating.engines"] = f.engines

	renderers := settings.StringList("templating.renderers")
	if !slices.Contains(renderers, "json") {
		renderers = append(renderers, "json")
	}
	settings["templating.renderers"] = renderers

	def := settings.String("templating.default", "html")
	if !slices.Contains(renderers, def) {
		first := renderers[0]
		ctxlog.FromContext(ctx).Warn("Default renderer not in renderers, automatically switching.",
			"default", def, "using", first)
		settings["templating.default"] = first
	}
	return nil
}

// Setup instantiates the requested engines. An engine that reports itself
// unavailable is removed with an error log; a renderer with no registered
// factory is a configuration error.
func (f *Feature) Setup(ctx context.Context, settings config.Settings) error {
	logger := ctxlog.FromContext(ctx)

	renderFuncs := make(map[string]render.Func)
	var kept []string

	for _, name := range settings.StringList("templating.renderers") {
		factory, ok := f.engines.Factory(name)
		if !ok {
			return configurator.Errorf("this configuration does not support the %s renderer", name)
		}

		funcs, err := factory.Create(ctx, settings)
		if err != nil {
			return fmt.Errorf("failed to initialize %s template engine: %w", name, err)
		}
		if funcs == nil {
			logger.Error("Failed to initialize template engine, removing it.", "engine", name)
			continue
		}

		for engine, fn := range funcs {
			renderFuncs[engine] = fn
		}
		kept = append(kept, name)
	}

	settings["templating.renderers"] = kept
	settings["templating.render_functions"] = renderFuncs
	logger.Debug("Render functions ready.", "renderers", kept)
	return nil
}

// Renderer returns the named render function set up by this feature.
func Renderer(settings config.Settings, name string) (render.Func, bool) {
	funcs, _ := settings["templating.render_functions"].(map[string]render.Func)
	fn, ok := funcs[name]
	return fn, ok
}

// DefaultRenderer returns the configured default render function, falling
// back to json when the default engine turned out to be unavailable.
func DefaultRenderer(settings config.Settings) (render.Func, bool) {
	if fn, ok := Renderer(settings, settings.String("templating.default", "")); ok {
		return fn, true
	}
	return Renderer(settings, "json")
}
