package registry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/girder/internal/config"
)

func TestScopeAvailableInRequest(t *testing.T) {
	f := New()
	settings := config.Settings{"registry.streaming": true, "debug": false}

	var sawScope bool
	h := f.Middleware(settings, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ok := FromContext(r.Context())
		require.True(t, ok)
		scope.Set("user", "ada")
		v, ok := scope.Get("user")
		require.True(t, ok)
		assert.Equal(t, "ada", v)
		sawScope = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, sawScope)
}

func TestScopeIsPerRequest(t *testing.T) {
	f := New()
	settings := config.Settings{"registry.streaming": true, "debug": false}

	h := f.Middleware(settings, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, _ := FromContext(r.Context())
		if _, ok := scope.Get("seen"); ok {
			t.Error("scope leaked between requests")
		}
		scope.Set("seen", true)
	}))

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
}

func TestPanicBecomes500(t *testing.T) {
	f := New()
	settings := config.Settings{"registry.streaming": true, "debug": false}

	h := f.Middleware(settings, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPanicPropagatesInDebug(t *testing.T) {
	f := New()
	settings := config.Settings{"registry.streaming": true, "debug": true}

	h := f.Middleware(settings, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler exploded")
	}))

	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestBufferedPanicDiscardsPartialBody(t *testing.T) {
	f := New()
	settings := config.Settings{"registry.streaming": false, "debug": false}

	h := f.Middleware(settings, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("partial output"))
		panic("after writing")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "partial output")
}

func TestBufferedResponseIsFlushed(t *testing.T) {
	f := New()
	settings := config.Settings{"registry.streaming": false, "debug": false}

	h := f.Middleware(settings, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("body"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "body", rec.Body.String())
}

func TestLegacyKeyMigration(t *testing.T) {
	f := New()
	settings := config.Settings{"registry.streaming": true, "registry_streaming": "false"}

	require.NoError(t, f.Configure(t.Context(), settings))
	assert.Equal(t, false, settings["registry.streaming"])
}
