package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	cfg, shouldExit, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "", cfg.ConfigPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseConfigPathSources(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		args []string
	}{
		{"long flag", []string{"-config", "app.hcl"}},
		{"short flag", []string{"-c", "app.hcl"}},
		{"positional", []string{"app.hcl"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, _, err := Parse(tc.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, "app.hcl", cfg.ConfigPath)
		})
	}
}

func TestParseHelpExitsCleanly(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	_, shouldExit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseInvalidLogFormat(t *testing.T) {
	t.Parallel()

	_, _, err := Parse([]string{"-log-format", "xml"}, &bytes.Buffer{})
	require.Error(t, err)

	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseInvalidLogLevel(t *testing.T) {
	t.Parallel()

	_, _, err := Parse([]string{"-log-level", "loud"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log-level")
}

func TestParseInvalidAddr(t *testing.T) {
	t.Parallel()

	_, _, err := Parse([]string{"-addr", "8080"}, &bytes.Buffer{})
	require.Error(t, err)

	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
}
