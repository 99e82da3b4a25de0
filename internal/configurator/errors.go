package configurator

import "fmt"

// ConfigError reports invalid application or feature configuration detected
// during bootstrap.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// Errorf creates a ConfigError with a formatted message.
func Errorf(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}
