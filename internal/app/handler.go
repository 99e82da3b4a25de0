package app

import (
	"net/http"

	"github.com/vk/girder/internal/ctxlog"
	"github.com/vk/girder/internal/session"
	"github.com/vk/girder/modules/i18n"
	"github.com/vk/girder/modules/templating"
)

// routes builds the application's root handler. Features wrap their
// middleware around it during handler assembly.
func (a *App) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /{$}", a.handleIndex)
	return mux
}

// handleIndex renders the landing page through the configured default
// renderer, counting visits in the session.
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := map[string]any{}

	if sess, ok := session.FromContext(ctx); ok {
		visits := 0
		if v, ok := sess.Get(ctx, "visits"); ok {
			visits = asInt(v)
		}
		visits++
		sess.Set(ctx, "visits", visits)
		data["visits"] = visits
	}

	if tag, ok := i18n.LanguageFromContext(ctx); ok {
		data["language"] = tag.String()
	}

	a.render(w, r, "index", data)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	fn, ok := templating.Renderer(a.configurator.Settings(), "json")
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := fn(w, "", map[string]any{"status": "ok"}); err != nil {
		ctxlog.FromContext(r.Context()).Error("Failed to render health response.", "error", err)
	}
}

func (a *App) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	fn, ok := templating.DefaultRenderer(a.configurator.Settings())
	if !ok {
		http.Error(w, "no renderer configured", http.StatusInternalServerError)
		return
	}
	if err := fn(w, name, data); err != nil {
		ctxlog.FromContext(r.Context()).Error("Failed to render response.", "template", name, "error", err)
		http.Error(w, "failed to render response", http.StatusInternalServerError)
	}
}

// asInt normalizes the integer types a session value can come back as after
// a round trip through a serializing store.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
