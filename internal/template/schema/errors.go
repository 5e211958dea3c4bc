package schema

import (
	"errors"
	"fmt"
)

// Schema error kinds. Every SchemaError wraps exactly one of these, so
// callers can match with errors.Is.
var (
	ErrReservedName        = errors.New("reserved placeholder name")
	ErrKeywordName         = errors.New("placeholder name is a keyword of the condition or template language")
	ErrInvalidFormat       = errors.New("placeholder must be a table")
	ErrInvalidType         = errors.New("type must be \"bool\" or \"string\"")
	ErrRegexOnBool         = errors.New("regex is not allowed on bool placeholders")
	ErrInvalidRegex        = errors.New("invalid regex")
	ErrChoicesOnBool       = errors.New("choices are not allowed on bool placeholders")
	ErrChoiceType          = errors.New("choices must be an array of strings")
	ErrEmptyChoices        = errors.New("choices must not be empty")
	ErrChoiceMismatch      = errors.New("choice does not match regex")
	ErrMissingPrompt       = errors.New("prompt is required and must be a string")
	ErrDefaultType         = errors.New("default does not match the placeholder type")
	ErrDefaultNotInChoices = errors.New("default is not one of the choices")
	ErrDefaultMismatch     = errors.New("default does not match regex")
	ErrDuplicateName       = errors.New("placeholder declared more than once")
	ErrInvalidCondition    = errors.New("invalid condition")
)

// SchemaError reports an invalid placeholder definition.
type SchemaError struct {
	// Placeholder is the offending placeholder name.
	Placeholder string
	// Kind is one of the Err* values above.
	Kind error
	// Detail adds context such as the offending value.
	Detail string
	// Cause is the underlying error if any.
	Cause error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("placeholder %q: %v", e.Placeholder, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the error kind and the cause.
func (e *SchemaError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newSchemaError(name string, kind error, detail string) *SchemaError {
	return &SchemaError{Placeholder: name, Kind: kind, Detail: detail}
}
