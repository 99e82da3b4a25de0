package configurator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/girder/internal/config"
	"github.com/vk/girder/internal/hooks"
)

// fakeFeature records which lifecycle steps ran, in which order, via a
// shared trace slice.
type fakeFeature struct {
	Base
	kind       string
	namespace  string
	defaults   map[string]any
	converters map[string]config.Converter
	trace      *[]string
	configErr  error
	setupErr   error
	wrap       bool
}

func (f *fakeFeature) Kind() string      { return f.kind }
func (f *fakeFeature) Namespace() string { return f.namespace }

func (f *fakeFeature) Defaults() map[string]any { return f.defaults }

func (f *fakeFeature) Converters() map[string]config.Converter { return f.converters }

func (f *fakeFeature) Configure(context.Context, config.Settings) error {
	if f.trace != nil {
		*f.trace = append(*f.trace, "configure:"+f.kind)
	}
	return f.configErr
}

func (f *fakeFeature) Setup(context.Context, config.Settings) error {
	if f.trace != nil {
		*f.trace = append(*f.trace, "setup:"+f.kind)
	}
	return f.setupErr
}

func (f *fakeFeature) Middleware(_ config.Settings, next http.Handler) http.Handler {
	if !f.wrap {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("X-Feature", f.kind)
		next.ServeHTTP(w, r)
	})
}

func feature(kind string, trace *[]string) *fakeFeature {
	return &fakeFeature{kind: kind, namespace: kind + ".", trace: trace}
}

func TestAddFeatureRejectsBadNamespace(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	err = c.AddFeature(&fakeFeature{kind: "broken", namespace: "broken"}, "")
	require.Error(t, err)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestDefaultsInjectedAtAddTime(t *testing.T) {
	f := feature("session", nil)
	f.defaults = map[string]any{"timeout": 1800, "key": "girder.session.id"}

	c, err := New(Registration{Feature: f})
	require.NoError(t, err)

	assert.Equal(t, 1800, c.Settings()["session.timeout"])
	assert.Equal(t, "girder.session.id", c.Settings()["session.key"])
}

func TestDefaultsAreCopied(t *testing.T) {
	shared := map[string]any{"a": 1}
	f := feature("x", nil)
	f.defaults = map[string]any{"m": shared}

	c, err := New(Registration{Feature: f})
	require.NoError(t, err)

	c.Settings()["x.m"].(map[string]any)["a"] = 2
	assert.Equal(t, 1, shared["a"])
}

func TestUserConfigOverridesDefaults(t *testing.T) {
	f := feature("session", nil)
	f.defaults = map[string]any{"timeout": 1800}

	c, err := New(Registration{Feature: f})
	require.NoError(t, err)

	require.NoError(t, c.Configure(context.Background(), map[string]any{"session.timeout": 60}, nil))
	assert.Equal(t, 60, c.Settings()["session.timeout"])
}

func TestEnvConfigOverridesAppConfig(t *testing.T) {
	c, err := New(Registration{Feature: feature("a", nil)})
	require.NoError(t, err)

	err = c.Configure(context.Background(),
		map[string]any{"debug": true},
		map[string]any{"debug": false})
	require.NoError(t, err)
	assert.Equal(t, false, c.Settings()["debug"])
}

func TestCoercionAppliedBeforeConfigure(t *testing.T) {
	f := feature("registry", nil)
	f.defaults = map[string]any{"streaming": true}
	f.converters = map[string]config.Converter{"streaming": config.AsBool}

	c, err := New(Registration{Feature: f})
	require.NoError(t, err)

	require.NoError(t, c.Configure(context.Background(), map[string]any{"registry.streaming": "false"}, nil))
	assert.Equal(t, false, c.Settings()["registry.streaming"])
}

func TestLifecycleRunsInPrecedenceOrder(t *testing.T) {
	var trace []string
	c, err := New(
		Registration{Feature: feature("i18n", &trace)},
		Registration{Feature: feature("templating", &trace)},
		Registration{Feature: feature("registry", &trace), After: "templating"},
	)
	require.NoError(t, err)

	require.NoError(t, c.Configure(context.Background(), nil, nil))
	require.NoError(t, c.Setup(context.Background()))

	assert.Equal(t, []string{
		"configure:i18n", "configure:templating", "configure:registry",
		"setup:i18n", "setup:templating", "setup:registry",
	}, trace)
}

func TestUnreachableFeatureIsSkipped(t *testing.T) {
	var trace []string
	orphan := feature("orphan", &trace)

	c, err := New(
		Registration{Feature: feature("a", &trace)},
		Registration{Feature: orphan, After: "never-registered"},
	)
	require.NoError(t, err)

	require.NoError(t, c.Configure(context.Background(), nil, nil))
	assert.Equal(t, []string{"configure:a"}, trace)
	assert.Len(t, c.Features(), 1)
}

func TestSetupBeforeConfigureFails(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	require.Error(t, c.Setup(context.Background()))
}

func TestConfigureErrorIsWrapped(t *testing.T) {
	f := feature("bad", nil)
	f.configErr = errors.New("boom")

	c, err := New(Registration{Feature: f})
	require.NoError(t, err)

	err = c.Configure(context.Background(), nil, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "feature bad")
	assert.ErrorContains(t, err, "boom")
}

func TestMakeHandlerWrapsMiddlewareInOrder(t *testing.T) {
	inner := feature("inner", nil)
	inner.wrap = true
	outer := feature("outer", nil)
	outer.wrap = true

	c, err := New(
		Registration{Feature: inner},
		Registration{Feature: outer},
	)
	require.NoError(t, err)

	root := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	h, err := c.MakeHandler(context.Background(), root, nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	// The later feature wraps the earlier one, so it runs first.
	assert.Equal(t, []string{"outer", "inner"}, rec.Header().Values("X-Feature"))
}

func TestMakeHandlerFiresHooks(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	var fired []string
	c.Hooks().RegisterWrap(hooks.BeforeConfig, func(h http.Handler, _ config.Settings) http.Handler {
		fired = append(fired, "before")
		return h
	})
	c.Hooks().RegisterWrap(hooks.AfterConfig, func(h http.Handler, _ config.Settings) http.Handler {
		fired = append(fired, "after")
		return h
	})

	root := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	_, err = c.MakeHandler(context.Background(), root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "after"}, fired)
}
