// Package session provides the HTTP session feature. It attaches a lazily
// loaded session to every request, persists accessed sessions when the
// response starts, and issues the session cookie for new sessions.
package session

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/configurator"
	"github.com/vk/girder/internal/ctxlog"
	"github.com/vk/girder/internal/session"
)

// FeatureKind is the precedence key other features can attach after.
const FeatureKind = "session"

// Feature implements the configurator.Feature interface for this package.
type Feature struct {
	configurator.Base

	store session.Store
	key   string
	ttl   time.Duration
}

// New creates the session feature.
func New() *Feature {
	return &Feature{}
}

// Kind implements configurator.Feature.
func (f *Feature) Kind() string { return FeatureKind }

// Namespace implements configurator.Feature.
func (f *Feature) Namespace() string { return "session." }

// Defaults implements configurator.Feature.
func (f *Feature) Defaults() map[string]any {
	return map[string]any{
		"type":     "memory",
		"key":      "girder.session.id",
		"timeout":  1800,
		"data_dir": "",
	}
}

// Converters implements configurator.Feature.
func (f *Feature) Converters() map[string]config.Converter {
	return map[string]config.Converter{
		"timeout": config.AsInt,
	}
}

// Setup builds the session store named by session.type. The sqlite backend
// needs session.data_dir to know where to put the database file.
func (f *Feature) Setup(ctx context.Context, settings config.Settings) error {
	f.key = settings.String("session.key", "girder.session.id")
	f.ttl = time.Duration(settings.Int("session.timeout", 1800)) * time.Second

	storeType := settings.String("session.type", "memory")
	switch storeType {
	case "memory":
		f.store = session.NewMemoryStore()
	case "sqlite":
		dataDir := settings.String("session.data_dir", "")
		if dataDir == "" {
			return configurator.Errorf("the sqlite session store requires session.data_dir")
		}
		store, err := session.OpenSQLiteStore(filepath.Join(dataDir, "sessions.db"))
		if err != nil {
			return err
		}
		f.store = store
	default:
		return configurator.Errorf("unknown session store type %q", storeType)
	}

	settings["session.store"] = f.store
	ctxlog.FromContext(ctx).Debug("Session store ready.", "type", storeType, "timeout", f.ttl)
	return nil
}

// Middleware attaches a session to the request and persists it when the
// response starts. Persisting before the first byte keeps the Set-Cookie
// header valid even for streaming handlers.
func (f *Feature) Middleware(_ config.Settings, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.New(f.store, cookieValue(r, f.key), f.ttl)

		pw := &persistingWriter{ResponseWriter: w, feature: f, session: sess, ctx: r.Context()}
		next.ServeHTTP(pw, r.WithContext(session.WithSession(r.Context(), sess)))

		// Handlers that produce no output still get their session saved.
		pw.finish()
	})
}

// Store returns the backend built during Setup, mainly so the application can
// close it on shutdown.
func (f *Feature) Store() session.Store { return f.store }

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// persistingWriter saves the session and emits the cookie right before the
// first header or body byte goes out, while headers can still be written.
type persistingWriter struct {
	http.ResponseWriter

	feature *Feature
	session *session.Session
	ctx     context.Context
	done    bool
}

func (w *persistingWriter) WriteHeader(code int) {
	w.finish()
	w.ResponseWriter.WriteHeader(code)
}

func (w *persistingWriter) Write(b []byte) (int, error) {
	w.finish()
	return w.ResponseWriter.Write(b)
}

func (w *persistingWriter) finish() {
	if w.done {
		return
	}
	w.done = true

	if !w.session.Accessed() {
		return
	}
	if err := w.session.Save(w.ctx); err != nil {
		ctxlog.FromContext(w.ctx).Error("Failed to save session.", "id", w.session.ID(), "error", err)
		return
	}
	if w.session.IsNew() {
		http.SetCookie(w.ResponseWriter, &http.Cookie{
			Name:     w.feature.key,
			Value:    w.session.ID(),
			Path:     "/",
			HttpOnly: true,
			MaxAge:   int(w.feature.ttl.Seconds()),
		})
	}
}
