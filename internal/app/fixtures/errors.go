package fixtures

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed client query.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports a missing server-side setting, such as the
// upstream credential.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return e.Setting + " not set on server"
}

// AsValidationError unwraps err into a ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// AsConfigurationError unwraps err into a ConfigurationError.
func AsConfigurationError(err error) (*ConfigurationError, bool) {
	var c *ConfigurationError
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}
