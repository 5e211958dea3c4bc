package generator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/template/model"
	"github.com/tacogips/projgen/internal/template/render"
)

// maxComponentBytes bounds a single rendered path component.
const maxComponentBytes = 255

// StripOverrideSuffix removes the override suffix from rel and reports
// whether it was present.
func StripOverrideSuffix(rel string) (string, bool) {
	if !strings.HasSuffix(rel, model.OverrideSuffix) {
		return rel, false
	}
	stripped := strings.TrimSuffix(rel, model.OverrideSuffix)
	if stripped == "" || strings.HasSuffix(stripped, "/") {
		return rel, false
	}
	return stripped, true
}

// RenderFilename renders each component of the slash-separated rel and
// sanitizes the result. Components without markup are kept as-is.
func RenderFilename(rel string, r render.Renderer, vars map[string]interface{}) (string, error) {
	components := strings.Split(rel, "/")
	out := make([]string, 0, len(components))

	for _, component := range components {
		if component == "" {
			continue
		}
		rendered := component
		if render.HasMarkup(component) {
			s, err := r.Render(component, vars)
			if err != nil {
				return "", fmt.Errorf("failed to render filename component %q: %w", component, err)
			}
			rendered = s
		}

		sanitized := SanitizeComponent(rendered)
		if sanitized != rendered {
			debug.Debug("[generator] Sanitized filename component: %q -> %q", rendered, sanitized)
		}
		out = append(out, sanitized)
	}

	if len(out) == 0 {
		return "", fmt.Errorf("filename %q rendered to an empty path", rel)
	}
	return strings.Join(out, "/"), nil
}

// SanitizeComponent makes a single rendered path component safe to create.
// Separators, characters reserved on common filesystems, and control
// characters become "_". "." and ".." become "_", and the result is
// truncated to 255 bytes on a rune boundary.
func SanitizeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '/', r == '\\':
			b.WriteRune('_')
		case strings.ContainsRune(`<>:"|?*`, r):
			b.WriteRune('_')
		case r < 0x20 || r == 0x7f:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.TrimSpace(b.String())
	switch out {
	case "", ".", "..":
		return "_"
	}

	if len(out) > maxComponentBytes {
		cut := maxComponentBytes
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}
