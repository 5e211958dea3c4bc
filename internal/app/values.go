package app

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tacogips/projgen/internal/config"
	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/sandbox"
)

// fileRefPrefix marks a value whose content is read from a file.
const fileRefPrefix = "@file:"

var definePattern = regexp.MustCompile(`^([a-zA-Z]+[a-zA-Z0-9\-_]*)\s*=\s*(.+)$`)

// ParseDefines parses name=value pairs. Values of the form @file:<path> are
// replaced by the file content, with path resolved inside baseDir.
func ParseDefines(defines []string, baseDir string) (map[string]string, error) {
	out := make(map[string]string, len(defines))
	for _, define := range defines {
		m := definePattern.FindStringSubmatch(define)
		if m == nil {
			return nil, NewVariableLoadError(fmt.Sprintf("invalid define %q, expected name=value", define), nil)
		}
		name, value := m[1], m[2]
		content, isRef, err := readFileReference(name, value, baseDir)
		if err != nil {
			return nil, err
		}
		if isRef {
			value = content
		}
		out[name] = value
		debug.Debug("[app] Define '%s' parsed", name)
	}
	return out, nil
}

// LoadValues reads a values file and resolves its @file: references against
// the file's directory.
func LoadValues(path string) (map[string]interface{}, error) {
	if path == "" {
		return nil, nil
	}
	abs, err := sandbox.ToAbsolute(path)
	if err != nil {
		return nil, NewVariableLoadError("invalid values file path", err)
	}
	values, err := config.LoadValuesFile(abs)
	if err != nil {
		return nil, NewVariableLoadError("failed to load values file", err)
	}
	return ResolveFileReferences(values, filepath.Dir(abs))
}

// ResolveFileReferences returns a copy of values with every @file: string
// replaced by the referenced file's content.
func ResolveFileReferences(values map[string]interface{}, baseDir string) (map[string]interface{}, error) {
	debug.DebugValue("[app] Values base directory", baseDir)

	out := make(map[string]interface{}, len(values))
	for name, value := range values {
		s, ok := value.(string)
		if !ok {
			out[name] = value
			continue
		}
		content, isRef, err := readFileReference(name, s, baseDir)
		if err != nil {
			return nil, err
		}
		if isRef {
			out[name] = content
			continue
		}
		out[name] = value
	}
	return out, nil
}

func readFileReference(name, value, baseDir string) (string, bool, error) {
	if !strings.HasPrefix(value, fileRefPrefix) {
		return "", false, nil
	}
	filename := strings.TrimSpace(strings.TrimPrefix(value, fileRefPrefix))
	if filename == "" {
		return "", true, NewVariableLoadError(fmt.Sprintf("variable %s: %s prefix without filename", name, fileRefPrefix), nil)
	}

	path, err := sandbox.ToSandboxedAbsolute(baseDir, filename)
	if err != nil {
		return "", true, NewVariableLoadError(fmt.Sprintf("variable %s: %s%s must be within %s", name, fileRefPrefix, filename, baseDir), err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", true, NewVariableLoadError(fmt.Sprintf("variable %s: failed to read %s%s", name, fileRefPrefix, filename), err)
	}
	debug.Debug("[app] Variable '%s': file content loaded (%d bytes)", name, len(content))
	return string(content), true, nil
}

// mergeDefaults layers favorite values over app-config values.
func mergeDefaults(configValues, favoriteValues map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(configValues)+len(favoriteValues))
	for k, v := range configValues {
		out[k] = v
	}
	for k, v := range favoriteValues {
		out[k] = v
	}
	return out
}
