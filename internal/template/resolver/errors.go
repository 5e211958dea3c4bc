package resolver

import (
	"errors"
	"fmt"
)

// Resolution error kinds, matchable with errors.Is.
var (
	ErrMissingValue      = errors.New("no value provided")
	ErrInvalidValue      = errors.New("invalid value")
	ErrCycle             = errors.New("cyclic visibility dependency")
	ErrMissingDependency = errors.New("condition references an unknown variable")
	ErrPrompt            = errors.New("prompt failed")
)

// ResolutionError reports a placeholder that could not be resolved.
type ResolutionError struct {
	// Kind is one of the Err* values above.
	Kind error
	// Placeholder is the placeholder being resolved.
	Placeholder string
	// Source names where the offending value came from, if any.
	Source string
	// Detail adds context.
	Detail string
	// Cause is the underlying error if any.
	Cause error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("placeholder %q: %v", e.Placeholder, e.Kind)
	if e.Source != "" {
		msg += " (from " + e.Source + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the error kind and the cause.
func (e *ResolutionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}
