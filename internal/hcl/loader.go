package hcl

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/ctxlog"
	"github.com/vk/girder/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from the given paths and merges the
// flattened results into a single Settings dictionary. Later files overwrite
// earlier ones on key collisions.
func (l *Loader) Load(ctx context.Context, paths ...string) (config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindByExtension(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	settings := config.New()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		body, ok := hclFile.Body.(*hclsyntax.Body)
		if !ok {
			return nil, fmt.Errorf("unexpected body type in HCL file %s", file)
		}

		if err := flattenBody(body, "", settings); err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.", "files", len(files), "keys", len(settings))
	return settings, nil
}

// flattenBody evaluates every attribute in the body and recurses into nested
// blocks, joining names with dots to build the namespaced settings keys.
func flattenBody(body *hclsyntax.Body, prefix string, into config.Settings) error {
	for name, attr := range body.Attributes {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("failed to evaluate attribute %s: %w", joinKey(prefix, name), diags)
		}
		native, err := ctyToNative(value)
		if err != nil {
			return fmt.Errorf("attribute %s: %w", joinKey(prefix, name), err)
		}
		into[joinKey(prefix, name)] = native
	}

	for _, block := range body.Blocks {
		key := block.Type
		if len(block.Labels) > 0 {
			key += "." + strings.Join(block.Labels, ".")
		}
		if err := flattenBody(block.Body, joinKey(prefix, key), into); err != nil {
			return err
		}
	}
	return nil
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
