// Package yaml implements the config.Loader interface for YAML files.
// Nested mappings are flattened into the dot-namespaced Settings model, so
// `session: {secret: x}` yields the key "session.secret".
package yaml

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/ctxlog"
	"github.com/vk/girder/internal/fsutil"
)

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .yaml and .yml file reachable from the given paths and
// merges the flattened results into a single Settings dictionary. Later files
// overwrite earlier ones on key collisions.
func (l *Loader) Load(ctx context.Context, paths ...string) (config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.FindByExtension(paths, ".yaml")
	if err != nil {
		return nil, err
	}
	ymlFiles, err := fsutil.FindByExtension(paths, ".yml")
	if err != nil {
		return nil, err
	}
	files = append(files, ymlFiles...)
	logger.Debug("Discovered YAML files.", "count", len(files))

	settings := config.New()
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading YAML file %s: %w", file, err)
		}

		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML file %s: %w", file, err)
		}

		flatten(doc, "", settings)
	}

	logger.Debug("YAML loading complete.", "files", len(files), "keys", len(settings))
	return settings, nil
}

// flatten walks nested mappings, joining keys with dots. Sequences and
// scalars are stored as-is; only string-keyed mappings recurse.
func flatten(doc map[string]any, prefix string, into config.Settings) {
	for key, value := range doc {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(nested, full, into)
			continue
		}
		into[full] = value
	}
}
