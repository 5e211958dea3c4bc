package provider

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every ProviderError of type ProviderNotFound.
var ErrNotFound = errors.New("template not found")

// ProviderErrorType represents the type of provider error.
type ProviderErrorType int

const (
	// ProviderFetchFailed indicates the template could not be fetched.
	ProviderFetchFailed ProviderErrorType = iota
	// ProviderNotFound indicates the template was not found at the source.
	ProviderNotFound
	// ProviderAuthFailed indicates authentication failed (e.g., private repo).
	ProviderAuthFailed
	// ProviderTimeout indicates the operation timed out.
	ProviderTimeout
	// ProviderInvalidURL indicates the URL format is invalid.
	ProviderInvalidURL
	// ProviderInvalidTemplate indicates the template structure is invalid.
	ProviderInvalidTemplate
)

var providerErrorNames = map[ProviderErrorType]string{
	ProviderFetchFailed:     "FetchFailed",
	ProviderNotFound:        "NotFound",
	ProviderAuthFailed:      "AuthFailed",
	ProviderTimeout:         "Timeout",
	ProviderInvalidURL:      "InvalidURL",
	ProviderInvalidTemplate: "InvalidTemplate",
}

func (t ProviderErrorType) String() string {
	if name, ok := providerErrorNames[t]; ok {
		return name
	}
	return "Unknown"
}

// ProviderError represents a provider-specific error.
type ProviderError struct {
	// Type is the error type classification.
	Type ProviderErrorType
	// Message is the human-readable error message.
	Message string
	// Provider is the provider name (e.g., "git", "local").
	Provider string
	// URL is the template location that caused the error.
	URL string
	// Cause is the underlying error, if any.
	Cause error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s template %s: %s", e.Provider, e.URL, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is reports ErrNotFound for not-found errors.
func (e *ProviderError) Is(target error) bool {
	return target == ErrNotFound && e.Type == ProviderNotFound
}

// Unwrap returns the underlying cause for error wrapping.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new ProviderError.
func NewProviderError(typ ProviderErrorType, provider, url, message string, cause error) *ProviderError {
	return &ProviderError{
		Type:     typ,
		Message:  message,
		Provider: provider,
		URL:      url,
		Cause:    cause,
	}
}

// NewFetchError creates a fetch failed error.
func NewFetchError(provider, url string, cause error) *ProviderError {
	return NewProviderError(ProviderFetchFailed, provider, url, "failed to fetch template", cause)
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(provider, url string) *ProviderError {
	return NewProviderError(ProviderNotFound, provider, url, "template not found", nil)
}

// NewAuthError creates an authentication failed error.
func NewAuthError(provider, url string) *ProviderError {
	return NewProviderError(ProviderAuthFailed, provider, url, "authentication failed; configure git credentials for this host", nil)
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(provider, url string) *ProviderError {
	return NewProviderError(ProviderTimeout, provider, url, "operation timed out", nil)
}

// NewInvalidURLError creates an invalid URL error.
func NewInvalidURLError(provider, url string, cause error) *ProviderError {
	return NewProviderError(ProviderInvalidURL, provider, url, "invalid URL format", cause)
}

// NewInvalidTemplateError creates an invalid template error.
func NewInvalidTemplateError(provider, url, message string, cause error) *ProviderError {
	return NewProviderError(ProviderInvalidTemplate, provider, url, message, cause)
}
