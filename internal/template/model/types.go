package model

import "strings"

// Special file and directory names used by projgen.
const (
	// ConfigFile is the template configuration file name in the template root.
	ConfigFile = "projgen.toml"
	// IgnoreFile lists gitignore-style patterns removed from the output after expansion.
	IgnoreFile = ".genignore"
	// OverrideSuffix marks a file as the authoritative version of its
	// non-suffixed sibling. The suffix is stripped from the destination name.
	OverrideSuffix = ".tmpl"
	// VCSDir is the version-control metadata directory never visited by the walker.
	VCSDir = ".git"
)

// Kind is the type of a placeholder value.
type Kind string

const (
	// KindString represents a string placeholder.
	KindString Kind = "string"
	// KindBool represents a boolean placeholder.
	KindBool Kind = "bool"
)

// TemplateRef represents a reference to a template source.
type TemplateRef struct {
	// Provider is the provider name ("local" or "git").
	Provider string
	// Location is the local path or clone URL.
	Location string
	// Branch is the git branch or tag to check out (git only).
	Branch string
	// Subfolder selects a template inside the fetched tree.
	Subfolder string
}

// Identifier returns name in a form usable as an identifier inside condition
// expressions and template tags, which do not accept hyphens.
// Names without hyphens are returned unchanged.
func Identifier(name string) string {
	if !strings.Contains(name, "-") {
		return name
	}
	return "_h_" + strings.ReplaceAll(name, "-", "_h_")
}
