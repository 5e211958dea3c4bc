package app

import "fmt"

// AppErrorType identifies the generation stage that failed.
type AppErrorType int

const (
	// ConfigFailed indicates the app config or a favorite could not be used.
	ConfigFailed AppErrorType = iota
	// TemplateFetchFailed indicates the template could not be staged.
	TemplateFetchFailed
	// ValidationFailed indicates invalid options or an invalid template.
	ValidationFailed
	// VariableLoadFailed indicates defines or a values file could not be read.
	VariableLoadFailed
	// ResolutionFailed indicates a placeholder could not be resolved.
	ResolutionFailed
	// HookFailed indicates a hook script failed or aborted.
	HookFailed
	// ExpansionFailed indicates the template tree could not be expanded.
	ExpansionFailed
	// IOFailed indicates a filesystem operation outside expansion failed.
	IOFailed
	// VCSFailed indicates the destination repository could not be initialized.
	VCSFailed
)

var typeNames = map[AppErrorType]string{
	ConfigFailed:        "config",
	TemplateFetchFailed: "fetch",
	ValidationFailed:    "validation",
	VariableLoadFailed:  "values",
	ResolutionFailed:    "resolution",
	HookFailed:          "hook",
	ExpansionFailed:     "expansion",
	IOFailed:            "io",
	VCSFailed:           "vcs",
}

// String returns the stage name.
func (t AppErrorType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// AppError represents an application-layer error.
type AppError struct {
	// Type is the failed stage.
	Type AppErrorType
	// Message is the error message.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError.
func NewAppError(errType AppErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a config error.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ConfigFailed, message, cause)
}

// NewTemplateFetchError creates a template fetch error.
func NewTemplateFetchError(message string, cause error) *AppError {
	return NewAppError(TemplateFetchFailed, message, cause)
}

// NewValidationError creates a validation error.
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ValidationFailed, message, cause)
}

// NewVariableLoadError creates a variable load error.
func NewVariableLoadError(message string, cause error) *AppError {
	return NewAppError(VariableLoadFailed, message, cause)
}

// NewResolutionError creates a resolution error.
func NewResolutionError(message string, cause error) *AppError {
	return NewAppError(ResolutionFailed, message, cause)
}

// NewHookError creates a hook error.
func NewHookError(message string, cause error) *AppError {
	return NewAppError(HookFailed, message, cause)
}

// NewExpansionError creates an expansion error.
func NewExpansionError(message string, cause error) *AppError {
	return NewAppError(ExpansionFailed, message, cause)
}

// NewIOError creates an IO error.
func NewIOError(message string, cause error) *AppError {
	return NewAppError(IOFailed, message, cause)
}

// NewVCSError creates a VCS error.
func NewVCSError(message string, cause error) *AppError {
	return NewAppError(VCSFailed, message, cause)
}
