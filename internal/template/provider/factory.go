package provider

import (
	"fmt"

	"github.com/tacogips/projgen/internal/template/model"
)

// NewProvider creates the appropriate provider for location.
// Existing local paths win over git shorthands.
func NewProvider(location string) (Provider, error) {
	if location == "" {
		return nil, fmt.Errorf("template location cannot be empty")
	}

	if IsLocalPath(location) {
		return NewLocalProvider(), nil
	}
	if _, ok := ExpandGitURL(location); ok {
		return NewGitProvider(), nil
	}
	return nil, NewInvalidURLError("auto", location,
		fmt.Errorf("neither an existing directory nor a git URL"))
}

// ForRef returns the provider that produced ref.
func ForRef(ref model.TemplateRef) (Provider, error) {
	switch ref.Provider {
	case "local":
		return NewLocalProvider(), nil
	case "git":
		return NewGitProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", ref.Provider)
	}
}
