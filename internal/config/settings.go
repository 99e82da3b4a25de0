package config

import (
	"context"
	"strings"
)

// Settings is the unified configuration dictionary for an application.
// Keys are namespaced with dots; the portion up to the first dot is the
// owning feature's namespace.
type Settings map[string]any

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths and translates it into
	// the flat, format-agnostic Settings model.
	Load(ctx context.Context, paths ...string) (Settings, error)
}

// New creates an empty Settings dictionary.
func New() Settings {
	return make(Settings)
}

// Merge copies every entry of other into s, overwriting existing keys.
func (s Settings) Merge(other map[string]any) {
	for key, value := range other {
		s[key] = value
	}
}

// Cut returns the entries whose keys start with the given namespace prefix,
// with the prefix stripped. The prefix is normalized to end with a dot, so
// Cut("session") and Cut("session.") are equivalent.
func (s Settings) Cut(prefix string) Settings {
	if !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}

	out := make(Settings)
	for key, value := range s {
		if strings.HasPrefix(key, prefix) {
			out[key[len(prefix):]] = value
		}
	}
	return out
}

// Coerce applies the given converters to the namespaced options currently
// present in s. Only keys that exist are converted; missing options are left
// to their defaults. The first conversion failure aborts with an error.
func (s Settings) Coerce(prefix string, converters map[string]Converter) error {
	if !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}

	for option, convert := range converters {
		key := prefix + option
		raw, ok := s[key]
		if !ok {
			continue
		}
		value, err := convert(raw)
		if err != nil {
			return &Error{Key: key, Err: err}
		}
		s[key] = value
	}
	return nil
}

// Bool returns the value at key as a bool, or def when the key is absent or
// not coercible.
func (s Settings) Bool(key string, def bool) bool {
	raw, ok := s[key]
	if !ok {
		return def
	}
	v, err := AsBool(raw)
	if err != nil {
		return def
	}
	return v.(bool)
}

// Int returns the value at key as an int, or def when the key is absent or
// not coercible.
func (s Settings) Int(key string, def int) int {
	raw, ok := s[key]
	if !ok {
		return def
	}
	v, err := AsInt(raw)
	if err != nil {
		return def
	}
	return v.(int)
}

// String returns the value at key as a string, or def when the key is absent.
func (s Settings) String(key, def string) string {
	raw, ok := s[key]
	if !ok || raw == nil {
		return def
	}
	v, err := AsString(raw)
	if err != nil {
		return def
	}
	return v.(string)
}

// StringList returns the value at key as a list of strings. Absent keys
// yield nil.
func (s Settings) StringList(key string) []string {
	raw, ok := s[key]
	if !ok || raw == nil {
		return nil
	}
	v, err := AsList(raw)
	if err != nil {
		return nil
	}
	return v.([]string)
}
