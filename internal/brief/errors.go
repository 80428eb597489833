package brief

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError means live generation is impossible with the current
// configuration. It is always rendered as mock content.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "configuration: " + e.Reason }

// ValidationError reports content that stayed under the quality bar after
// the allowed attempts.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "content failed validation: " + strings.Join(e.Problems, "; ")
}

// OrchestratorError carries the step at which a run stopped. Partial holds
// coerced content from an earlier attempt, when there was one.
type OrchestratorError struct {
	Step    string
	Err     error
	Partial *Coercion
}

func (e *OrchestratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *OrchestratorError) Unwrap() error { return e.Err }

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
