package render

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/ctxlog"
)

// HTMLFactory builds the "html" engine on top of html/template. Templates
// are parsed from the directory named by "templating.path" using the
// "*.html.tmpl" pattern. With "templating.auto_reload" enabled the directory
// is re-parsed on every render, so template edits show up without a restart.
type HTMLFactory struct{}

// Engines implements Factory.
func (HTMLFactory) Engines() []string { return []string{"html"} }

// Create implements Factory. It returns a nil map when no template directory
// is configured or the directory does not exist, which drops the engine
// without failing setup.
func (HTMLFactory) Create(ctx context.Context, settings config.Settings) (map[string]Func, error) {
	logger := ctxlog.FromContext(ctx)

	dir := settings.String("templating.path", "")
	if dir == "" {
		logger.Debug("No template directory configured, html engine unavailable.")
		return nil, nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Debug("Template directory not usable, html engine unavailable.", "dir", dir)
		return nil, nil
	}

	pattern := filepath.Join(dir, "*.html.tmpl")
	autoReload := settings.Bool("templating.auto_reload", true)

	parse := func() (*template.Template, error) {
		tmpl, err := template.ParseGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates from %s: %w", dir, err)
		}
		return tmpl, nil
	}

	// Parse eagerly so broken templates fail setup, not the first request.
	cached, err := parse()
	if err != nil {
		return nil, err
	}
	var mu sync.Mutex

	fn := func(w http.ResponseWriter, name string, data any) error {
		mu.Lock()
		tmpl := cached
		if autoReload {
			fresh, err := parse()
			if err != nil {
				mu.Unlock()
				return err
			}
			cached = fresh
			tmpl = fresh
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		return tmpl.ExecuteTemplate(w, name+".html.tmpl", data)
	}

	return map[string]Func{"html": fn}, nil
}
