package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsBool(t *testing.T) {
	for _, truthy := range []any{true, 1, "true", "Yes", "ON", "y", "t", "1"} {
		v, err := AsBool(truthy)
		require.NoError(t, err, "value %v", truthy)
		assert.Equal(t, true, v, "value %v", truthy)
	}
	for _, falsy := range []any{false, 0, "false", "No", "off", "n", "f", "0"} {
		v, err := AsBool(falsy)
		require.NoError(t, err, "value %v", falsy)
		assert.Equal(t, false, v, "value %v", falsy)
	}

	_, err := AsBool("maybe")
	assert.Error(t, err)
	_, err = AsBool([]string{"true"})
	assert.Error(t, err)
}

func TestAsInt(t *testing.T) {
	cases := map[any]int{
		3:        3,
		int64(4): 4,
		5.0:      5,
		" 42 ":   42,
	}
	for raw, want := range cases {
		v, err := AsInt(raw)
		require.NoError(t, err, "value %v", raw)
		assert.Equal(t, want, v)
	}

	_, err := AsInt("soon")
	assert.Error(t, err)
}

func TestAsList(t *testing.T) {
	t.Run("comma separated", func(t *testing.T) {
		v, err := AsList("json, html ,cbor")
		require.NoError(t, err)
		assert.Equal(t, []string{"json", "html", "cbor"}, v)
	})

	t.Run("whitespace separated", func(t *testing.T) {
		v, err := AsList("json html")
		require.NoError(t, err)
		assert.Equal(t, []string{"json", "html"}, v)
	})

	t.Run("generic slice", func(t *testing.T) {
		v, err := AsList([]any{"a", 1, true})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "1", "true"}, v)
	})

	t.Run("already strings", func(t *testing.T) {
		v, err := AsList([]string{"a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, v)
	})
}
