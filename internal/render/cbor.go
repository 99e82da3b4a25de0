package render

import (
	"context"
	"net/http"

	"github.com/fxamacker/cbor/v2"

	"github.com/vk/girder/internal/config"
)

// CBORFactory builds the "cbor" engine for binary API responses. Like the
// JSON engine it ignores the template name and serializes the data value.
type CBORFactory struct{}

// Engines implements Factory.
func (CBORFactory) Engines() []string { return []string{"cbor"} }

// Create implements Factory.
func (CBORFactory) Create(_ context.Context, _ config.Settings) (map[string]Func, error) {
	fn := func(w http.ResponseWriter, _ string, data any) error {
		w.Header().Set("Content-Type", "application/cbor")
		raw, err := cbor.Marshal(data)
		if err != nil {
			return err
		}
		_, err = w.Write(raw)
		return err
	}
	return map[string]Func{"cbor": fn}, nil
}
