package render

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vk/girder/internal/config"
)

// JSONFactory builds the "json" engine. It ignores the template name and
// serializes the data value directly, which makes it the default renderer
// for API-style responses.
type JSONFactory struct{}

// Engines implements Factory.
func (JSONFactory) Engines() []string { return []string{"json"} }

// Create implements Factory.
func (JSONFactory) Create(_ context.Context, _ config.Settings) (map[string]Func, error) {
	fn := func(w http.ResponseWriter, _ string, data any) error {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		return enc.Encode(data)
	}
	return map[string]Func{"json": fn}, nil
}
