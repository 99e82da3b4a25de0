// Package render provides the rendering engine registry and the built-in
// renderer factories. Features register factories into an EngineSet during
// configuration; during setup each requested engine is instantiated into a
// render function that writes a response body.
package render

import (
	"context"
	"net/http"

	"github.com/vk/girder/internal/config"
)

// Func renders the named template (or, for data renderers, the data itself)
// to the response writer.
type Func func(w http.ResponseWriter, name string, data any) error

// Factory creates the render functions for one or more engines. Create
// returns a nil map when the engine cannot be initialized from the current
// settings but the condition is not fatal; the caller drops the engine.
type Factory interface {
	// Engines lists the engine names this factory provides.
	Engines() []string

	// Create builds the render functions, keyed by engine name.
	Create(ctx context.Context, settings config.Settings) (map[string]Func, error)
}

// EngineSet is the registry of renderer factories available to an
// application. It is populated once at configuration time.
type EngineSet struct {
	factories map[string]Factory
}

// NewEngineSet creates an empty engine registry.
func NewEngineSet() *EngineSet {
	return &EngineSet{factories: make(map[string]Factory)}
}

// Add registers a factory for every engine it provides. A later registration
// for the same engine name replaces the earlier one.
func (e *EngineSet) Add(factory Factory) {
	for _, engine := range factory.Engines() {
		e.factories[engine] = factory
	}
}

// Factory returns the factory registered for the given engine name.
func (e *EngineSet) Factory(engine string) (Factory, bool) {
	f, ok := e.factories[engine]
	return f, ok
}

// Has reports whether an engine name is registered.
func (e *EngineSet) Has(engine string) bool {
	_, ok := e.factories[engine]
	return ok
}
