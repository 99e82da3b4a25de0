package configurator

import (
	"context"
	"net/http"

	"github.com/vk/girder/internal/config"
)

// Feature is one self-contained configuration step applied during
// application startup. A feature owns a settings namespace, contributes
// defaults and option coercions for it, and may wrap the application handler
// with middleware.
//
// Kind doubles as the precedence key: a later feature registered with
// After equal to this kind is processed immediately after it, regardless of
// which instance of the kind was registered first.
type Feature interface {
	// Kind is the stable identifier of this feature's category.
	Kind() string

	// Namespace is the settings prefix owned by the feature. It must end
	// with a dot, e.g. "session.".
	Namespace() string

	// Defaults returns the initial values injected under the namespace when
	// the feature is added, before any user configuration is merged.
	Defaults() map[string]any

	// Converters maps option names (without the namespace prefix) to the
	// coercions applied to user-supplied values.
	Converters() map[string]config.Converter

	// Configure runs after all configuration has been merged and coerced.
	Configure(ctx context.Context, settings config.Settings) error

	// Setup runs after every feature has been configured, for work that
	// depends on the final configuration, such as opening backends.
	Setup(ctx context.Context, settings config.Settings) error

	// Middleware may wrap the handler under assembly. Features without
	// middleware return next unchanged.
	Middleware(settings config.Settings, next http.Handler) http.Handler
}

// Registration pairs a feature with its optional precedence constraint for
// batch registration. An empty After places the feature at the root level.
type Registration struct {
	Feature Feature
	After   string
}

// Base provides no-op implementations of the optional Feature methods.
// Features embed it and override what they need; Kind and Namespace must
// always be provided by the feature itself.
type Base struct{}

// Defaults implements Feature.
func (Base) Defaults() map[string]any { return nil }

// Converters implements Feature.
func (Base) Converters() map[string]config.Converter { return nil }

// Configure implements Feature.
func (Base) Configure(context.Context, config.Settings) error { return nil }

// Setup implements Feature.
func (Base) Setup(context.Context, config.Settings) error { return nil }

// Middleware implements Feature.
func (Base) Middleware(_ config.Settings, next http.Handler) http.Handler { return next }
