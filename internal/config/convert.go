package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Error reports a configuration value that could not be coerced.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration value for %q: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Converter coerces a raw configuration value into its expected type.
type Converter func(any) (any, error)

// AsBool converts truthy and falsy spellings to a bool. Accepted strings are
// true/yes/on/y/t/1 and false/no/off/n/f/0, case-insensitive.
func AsBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "on", "y", "t", "1":
			return true, nil
		case "false", "no", "off", "n", "f", "0":
			return false, nil
		}
		return nil, fmt.Errorf("string %q is not a boolean", v)
	}
	return nil, fmt.Errorf("cannot convert %T to bool", raw)
}

// AsInt converts numeric values and numeric strings to an int.
func AsInt(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("string %q is not an integer", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("cannot convert %T to int", raw)
}

// AsString converts scalar values to their string form.
func AsString(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}
	return nil, fmt.Errorf("cannot convert %T to string", raw)
}

// AsList converts a value to a list of strings. A string is split on commas
// when present, otherwise on whitespace; existing lists have their elements
// converted with AsString.
func AsList(raw any) (any, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, err := AsString(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, s.(string))
		}
		return out, nil
	case string:
		var parts []string
		if strings.Contains(v, ",") {
			parts = strings.Split(v, ",")
		} else {
			parts = strings.Fields(v)
		}
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	case nil:
		return []string(nil), nil
	}
	return nil, fmt.Errorf("cannot convert %T to list", raw)
}
