// Package sandbox resolves user- and script-supplied paths against a boundary
// directory without touching the filesystem for the candidate itself.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscape is matched by every PathEscapeError via errors.Is.
var ErrPathEscape = errors.New("path escapes sandbox")

// PathEscapeError reports a candidate that normalizes outside its sandbox root.
type PathEscapeError struct {
	// Root is the canonical sandbox root.
	Root string
	// Candidate is the path as supplied by the caller.
	Candidate string
	// Resolved is the lexically normalized absolute candidate.
	Resolved string
}

// Error implements the error interface.
func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path must be inside %s: %q resolves to %s", e.Root, e.Candidate, e.Resolved)
}

// Is reports whether target is ErrPathEscape.
func (e *PathEscapeError) Is(target error) bool {
	return target == ErrPathEscape
}

// ToSandboxedAbsolute resolves candidate against root and guarantees the
// result is root itself or one of its descendants.
// Relative candidates are joined onto root; absolute candidates are normalized
// as-is. Normalization is purely lexical.
func ToSandboxedAbsolute(root, candidate string) (string, error) {
	lexicalRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve sandbox root %s: %w", root, err)
	}
	lexicalRoot = filepath.Clean(lexicalRoot)
	canonicalRoot := canonicalize(lexicalRoot)

	var resolved string
	if filepath.IsAbs(candidate) {
		resolved = filepath.Clean(candidate)
		// An absolute path spelled through a symlinked root is rebased onto
		// the canonical root.
		if canonicalRoot != lexicalRoot && within(lexicalRoot, resolved) {
			rel, _ := filepath.Rel(lexicalRoot, resolved)
			resolved = filepath.Join(canonicalRoot, rel)
		}
	} else {
		resolved = filepath.Join(canonicalRoot, candidate)
	}

	if !within(canonicalRoot, resolved) {
		return "", &PathEscapeError{Root: canonicalRoot, Candidate: candidate, Resolved: resolved}
	}
	return resolved, nil
}

// ToAbsolute lexically normalizes a trusted path against the current working
// directory. A leading "~/" expands to the user's home directory.
// No containment check is performed.
func ToAbsolute(candidate string) (string, error) {
	if candidate == "~" || strings.HasPrefix(candidate, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		candidate = filepath.Join(home, strings.TrimPrefix(candidate, "~"))
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", candidate, err)
	}
	return filepath.Clean(abs), nil
}

// canonicalize resolves symlinks of an existing root. Roots that do not
// exist yet keep their lexical form.
func canonicalize(root string) string {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return root
	}
	return filepath.Clean(resolved)
}

// within reports whether path equals root or descends from it.
func within(root, path string) bool {
	if path == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
