package analytics

import (
	"errors"
	"fmt"
)

// ConfigError marks a defect in scorer composition or activity-kind
// configuration: an out-of-range rubric level, an unmapped feedback action, a
// missing backend. These are not runtime conditions and are never retried.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return e.msg
}

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...interface{}) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is (or wraps) a configuration defect.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// UnknownKindError is returned when a request names an activity kind no
// resolver is registered for. Unlike ConfigError it originates from caller
// input, not scorer composition.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("no resolver registered for activity kind %q", e.Kind)
}

// IsUnknownKind reports whether err is (or wraps) an unknown-kind lookup.
func IsUnknownKind(err error) bool {
	var kindErr *UnknownKindError
	return errors.As(err, &kindErr)
}
