package template

import "fmt"

// ErrorKind classifies a ConfigurationError
type ErrorKind string

const (
	// KindNumberFormat means a numeric field did not parse as a base-10 integer
	KindNumberFormat ErrorKind = "number-format"
)

// ConfigurationError is returned by New when a raw field cannot be normalized.
type ConfigurationError struct {
	Kind  ErrorKind
	Field string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %q (%s): %v", e.Field, e.Value, e.Kind, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
