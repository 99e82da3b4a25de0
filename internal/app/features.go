package app

import (
	"github.com/vk/girder/internal/configurator"
	"github.com/vk/girder/modules/caching"
	"github.com/vk/girder/modules/i18n"
	"github.com/vk/girder/modules/registry"
	"github.com/vk/girder/modules/session"
	"github.com/vk/girder/modules/templating"
)

// CoreFeatures is the definitive feature set compiled into the girder binary.
// The registry feature is attached after templating so its middleware wraps
// outside the rendering layer and catches panics raised during rendering.
func CoreFeatures() []configurator.Registration {
	return []configurator.Registration{
		{Feature: i18n.New()},
		{Feature: templating.New()},
		{Feature: registry.New(), After: templating.FeatureKind},
		{Feature: session.New()},
		{Feature: caching.New()},
	}
}
