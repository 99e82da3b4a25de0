package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/girder/internal/hcl"
)

const testConfig = `
session {
  type = "memory"
  key  = "sid"
}

templating {
  default = "json"
}
`

func newTestApp(t *testing.T, configBody string) *App {
	t.Helper()

	path := ""
	if configBody != "" {
		path = filepath.Join(t.TempDir(), "app.hcl")
		require.NoError(t, os.WriteFile(path, []byte(configBody), 0600))
	}

	cfg, err := NewConfig(Config{ConfigPath: path, LogLevel: "error"})
	require.NoError(t, err)
	return NewApp(io.Discard, cfg, hcl.NewLoader())
}

func newTestServer(t *testing.T, a *App) (*httptest.Server, *http.Client) {
	t.Helper()

	handler, err := a.Handler(t.Context())
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func getJSON(t *testing.T, client *http.Client, url string) (map[string]any, *http.Response) {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body, resp
}

func TestVisitsCountedAcrossRequests(t *testing.T) {
	srv, client := newTestServer(t, newTestApp(t, testConfig))

	body, resp := getJSON(t, client, srv.URL+"/")
	assert.Equal(t, float64(1), body["visits"])

	var sawCookie bool
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			sawCookie = true
		}
	}
	assert.True(t, sawCookie, "first visit should set the session cookie")

	body, _ = getJSON(t, client, srv.URL+"/")
	assert.Equal(t, float64(2), body["visits"])
}

func TestHealthEndpoint(t *testing.T) {
	srv, client := newTestServer(t, newTestApp(t, testConfig))

	body, resp := getJSON(t, client, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestRunsWithoutConfigFile(t *testing.T) {
	// Every feature carries working defaults, so no config file is needed.
	srv, client := newTestServer(t, newTestApp(t, ""))

	body, resp := getJSON(t, client, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["visits"])
}

func TestEnvOverridesFileConfig(t *testing.T) {
	t.Setenv("GIRDER_SESSION__KEY", "envsid")

	srv, client := newTestServer(t, newTestApp(t, testConfig))

	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	var names []string
	for _, c := range resp.Cookies() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "envsid")
	assert.NotContains(t, names, "sid")
}

func TestNewAppPanicsOnBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`session {`), 0600))

	cfg, err := NewConfig(Config{ConfigPath: path, LogLevel: "error"})
	require.NoError(t, err)

	assert.Panics(t, func() {
		NewApp(io.Discard, cfg, hcl.NewLoader())
	})
}

func TestSettingsFromEnviron(t *testing.T) {
	settings := settingsFromEnviron([]string{
		"GIRDER_DEBUG=true",
		"GIRDER_TEMPLATING__AUTO_RELOAD=false",
		"PATH=/usr/bin",
		"MALFORMED",
	})

	assert.Equal(t, "true", settings["debug"])
	assert.Equal(t, "false", settings["templating.auto_reload"])
	assert.Len(t, settings, 2)
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := NewConfig(Config{})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)

	_, err = NewConfig(Config{Addr: "8080"})
	assert.Error(t, err)
}
