// Package render is the text-substitution engine used for file contents and
// file names. It is backed by pongo2 (Django/Jinja-like syntax):
//
//	{{ project-name }}, {{ crate_name|pascal_case }}, {% if ci %}...{% endif %}
//
// Variables absent from the bindings render as empty strings and booleans
// print as true/false.
package render

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/flosch/pongo2/v6"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/template/model"
)

var log = debug.Logger("render")

// Renderer renders a template string against variable bindings.
type Renderer interface {
	Render(tpl string, vars map[string]interface{}) (string, error)
}

var registerOnce sync.Once

var validContextKey = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Tags that reach the filesystem are banned.
var bannedTags = []string{"include", "extends", "import", "ssi"}

// Engine is the pongo2-backed Renderer.
type Engine struct {
	set *pongo2.TemplateSet
}

// NewEngine creates an Engine. Case filters are registered on first use.
func NewEngine() *Engine {
	registerOnce.Do(registerFilters)

	set := pongo2.NewSet("projgen", pongo2.DefaultLoader)
	for _, tag := range bannedTags {
		if err := set.BanTag(tag); err != nil {
			log.Debug().Err(err).Str("tag", tag).Msg("ban tag")
		}
	}
	return &Engine{set: set}
}

func registerFilters() {
	pongo2.SetAutoescape(false)
	for name, fn := range CaseFuncs {
		if pongo2.FilterExists(name) {
			continue
		}
		fn := fn
		_ = pongo2.RegisterFilter(name, func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(fn(in.String())), nil
		})
	}
}

// Render renders tpl with vars. Text without template markup is returned
// unchanged.
func (e *Engine) Render(tpl string, vars map[string]interface{}) (string, error) {
	if !HasMarkup(tpl) {
		return tpl, nil
	}

	ctx := pongo2.Context{}
	var hyphenated []string
	for name, v := range vars {
		id := model.Identifier(name)
		if !validContextKey.MatchString(id) {
			continue
		}
		if mv, ok := v.(model.Value); ok {
			v = mv.Interface()
		}
		if bv, ok := v.(bool); ok {
			v = boolVar(bv)
		}
		ctx[id] = v
		if id != name {
			hyphenated = append(hyphenated, name)
		}
	}

	ctx[trueKey] = boolVar(true)
	ctx[falseKey] = boolVar(false)

	src := rewriteNames(tpl, hyphenated)
	t, err := e.set.FromString(src)
	if err != nil {
		return "", newRenderError(err)
	}
	out, err := t.Execute(ctx)
	if err != nil {
		return "", newRenderError(err)
	}
	return out, nil
}

// Check parses tpl without executing it. names are the variables the
// template may reference; hyphenated ones are rewritten as in Render.
func (e *Engine) Check(tpl string, names []string) error {
	if !HasMarkup(tpl) {
		return nil
	}
	var hyphenated []string
	for _, name := range names {
		if model.Identifier(name) != name {
			hyphenated = append(hyphenated, name)
		}
	}
	if _, err := e.set.FromString(rewriteNames(tpl, hyphenated)); err != nil {
		return newRenderError(err)
	}
	return nil
}

// boolVar prints as true/false instead of pongo2's True/False. The true and
// false literals are bound to boolVar too so that comparisons like
// flag == true see equal values.
type boolVar bool

const (
	trueKey  = "__projgen_true"
	falseKey = "__projgen_false"
)

func (b boolVar) String() string {
	if b {
		return "true"
	}
	return "false"
}

// HasMarkup reports whether s contains template markup.
func HasMarkup(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%") || strings.Contains(s, "{#")
}

// rewriteNames replaces hyphenated variable names inside {{ }} and {% %}
// tags with their identifier form, and the true/false literals with their
// bound keys. String literals are left alone.
func rewriteNames(tpl string, names []string) string {
	known := map[string]string{"true": trueKey, "false": falseKey}
	for _, n := range names {
		known[n] = model.Identifier(n)
	}

	var b strings.Builder
	i := 0
	for {
		start := nextTagOpen(tpl[i:])
		if start < 0 {
			b.WriteString(tpl[i:])
			break
		}
		start += i
		closer := "}}"
		if tpl[start+1] == '%' {
			closer = "%}"
		}
		end := strings.Index(tpl[start+2:], closer)
		if end < 0 {
			b.WriteString(tpl[i:])
			break
		}
		end += start + 2
		b.WriteString(tpl[i : start+2])
		b.WriteString(rewriteTag(tpl[start+2:end], known))
		i = end
	}
	return b.String()
}

func nextTagOpen(s string) int {
	a := strings.Index(s, "{{")
	c := strings.Index(s, "{%")
	switch {
	case a < 0:
		return c
	case c < 0:
		return a
	case a < c:
		return a
	default:
		return c
	}
}

func rewriteTag(body string, known map[string]string) string {
	var b strings.Builder
	runes := []rune(body)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '"' || r == '\'':
			j := i + 1
			for ; j < len(runes) && runes[j] != r; j++ {
				if runes[j] == '\\' {
					j++
				}
			}
			if j >= len(runes) {
				j = len(runes) - 1
			}
			b.WriteString(string(runes[i : j+1]))
			i = j + 1
		case r == '_' || unicode.IsLetter(r):
			j := i + 1
			for j < len(runes) {
				c := runes[j]
				if c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) {
					j++
					continue
				}
				if c == '-' && j+1 < len(runes) && (runes[j+1] == '_' || unicode.IsLetter(runes[j+1]) || unicode.IsDigit(runes[j+1])) {
					j++
					continue
				}
				break
			}
			word := string(runes[i:j])
			if repl, ok := known[word]; ok && (i == 0 || runes[i-1] != '.') {
				word = repl
			}
			b.WriteString(word)
			i = j
		default:
			b.WriteRune(r)
			i++
		}
	}
	return b.String()
}

// RenderError is returned when a template cannot be parsed or executed.
type RenderError struct {
	// Line is the 1-based line of the failure, 0 if unknown.
	Line int
	// Cause is the underlying engine error.
	Cause error
}

func newRenderError(err error) *RenderError {
	re := &RenderError{Cause: err}
	var perr *pongo2.Error
	if errors.As(err, &perr) {
		re.Line = perr.Line
	}
	return re
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return "render failed: " + e.Cause.Error()
}

// Unwrap returns the underlying cause error.
func (e *RenderError) Unwrap() error {
	return e.Cause
}
