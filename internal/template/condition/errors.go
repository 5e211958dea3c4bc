package condition

import "fmt"

// ConditionErrorType represents the type of condition error.
type ConditionErrorType int

const (
	// SyntaxError indicates the expression could not be parsed.
	SyntaxError ConditionErrorType = iota
	// MissingVariable indicates a referenced variable has no value.
	MissingVariable
	// EvalFailed indicates evaluation failed or did not yield a bool.
	EvalFailed
)

// ConditionError represents a condition parsing or evaluation error.
type ConditionError struct {
	// Type is the error type.
	Type ConditionErrorType
	// Expr is the expression as written.
	Expr string
	// Name is the variable involved, if any.
	Name string
	// Message is the error message.
	Message string
	// Cause is the underlying error if any.
	Cause error
}

// Error implements the error interface.
func (e *ConditionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("condition %q: %s: %v", e.Expr, e.Message, e.Cause)
	}
	return fmt.Sprintf("condition %q: %s", e.Expr, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ConditionError) Unwrap() error {
	return e.Cause
}

func newConditionError(typ ConditionErrorType, expr, name, message string, cause error) *ConditionError {
	return &ConditionError{
		Type:    typ,
		Expr:    expr,
		Name:    name,
		Message: message,
		Cause:   cause,
	}
}
