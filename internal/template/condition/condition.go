// Package condition parses and evaluates the boolean expressions that guard
// conditional placeholders and conditional file lists.
//
// Expressions are Starlark expressions with a few conveniences: `!`, `&&`
// and `||` may be used for `not`, `and` and `or`, `true`/`false` are
// accepted as literals, and variable names may contain hyphens
// (`project-name == "demo"`).
package condition

import (
	"fmt"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/tacogips/projgen/internal/template/model"
)

var fileOptions = &syntax.FileOptions{}

// Expr is a parsed condition.
type Expr struct {
	src        string
	translated string
	deps       []string
}

// Parse parses src into an Expr.
func Parse(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, newConditionError(SyntaxError, src, "", "empty condition", nil)
	}

	translated, aliases, err := translate(src)
	if err != nil {
		return nil, newConditionError(SyntaxError, src, "", err.Error(), nil)
	}

	parsed, err := fileOptions.ParseExpr("condition", translated, 0)
	if err != nil {
		return nil, newConditionError(SyntaxError, src, "", "invalid expression", err)
	}

	var deps []string
	seen := map[string]bool{}
	syntax.Walk(parsed, func(n syntax.Node) bool {
		id, ok := n.(*syntax.Ident)
		if !ok {
			return true
		}
		switch id.Name {
		case "True", "False", "None":
			return true
		}
		name := id.Name
		if orig, ok := aliases[name]; ok {
			name = orig
		}
		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
		return true
	})

	return &Expr{src: src, translated: translated, deps: deps}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) *Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// String returns the expression as written.
func (e *Expr) String() string {
	return e.src
}

// Dependencies returns the variable names referenced by the expression in
// order of first appearance.
func (e *Expr) Dependencies() []string {
	return append([]string(nil), e.deps...)
}

// Eval evaluates the expression against bindings. Every referenced variable
// must be present; a missing one is an error, never false.
func (e *Expr) Eval(bindings map[string]interface{}) (bool, error) {
	env := make(starlark.StringDict, len(e.deps))
	for _, name := range e.deps {
		raw, ok := bindings[name]
		if !ok {
			return false, newConditionError(MissingVariable, e.src, name,
				fmt.Sprintf("variable %q is not defined", name), nil)
		}
		v, err := toStarlark(raw)
		if err != nil {
			return false, newConditionError(EvalFailed, e.src, name, err.Error(), nil)
		}
		env[model.Identifier(name)] = v
	}

	thread := &starlark.Thread{Name: "condition"}
	result, err := starlark.EvalOptions(fileOptions, thread, "condition", e.translated, env)
	if err != nil {
		return false, newConditionError(EvalFailed, e.src, "", "evaluation failed", err)
	}
	b, ok := result.(starlark.Bool)
	if !ok {
		return false, newConditionError(EvalFailed, e.src, "",
			fmt.Sprintf("expression yields %s, not bool", result.Type()), nil)
	}
	return bool(b), nil
}

func toStarlark(raw interface{}) (starlark.Value, error) {
	switch v := raw.(type) {
	case bool:
		return starlark.Bool(v), nil
	case string:
		return starlark.String(v), nil
	case model.Value:
		return toStarlark(v.Interface())
	case []string:
		elems := make([]starlark.Value, len(v))
		for i, s := range v {
			elems[i] = starlark.String(s)
		}
		return starlark.NewList(elems), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", raw)
	}
}

// translate rewrites the C-style operators into Starlark keywords and
// hyphenated names into identifiers. String literals are copied untouched.
// It returns the rewritten source and a map from identifier to original name.
func translate(src string) (string, map[string]string, error) {
	var b strings.Builder
	aliases := map[string]string{}
	runes := []rune(src)

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
				return "", nil, fmt.Errorf("unterminated string literal at offset %d", i)
			}
			b.WriteString(string(runes[i : j+1]))
			i = j + 1

		case r == '!':
			if i+1 < len(runes) && runes[i+1] == '=' {
				b.WriteString("!=")
				i += 2
			} else {
				b.WriteString(" not ")
				i++
			}

		case r == '&' && i+1 < len(runes) && runes[i+1] == '&':
			b.WriteString(" and ")
			i += 2

		case r == '|' && i+1 < len(runes) && runes[i+1] == '|':
			b.WriteString(" or ")
			i += 2

		case r == '_' || unicode.IsLetter(r):
			j := i + 1
			for j < len(runes) {
				c := runes[j]
				if c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) {
					j++
					continue
				}
				if c == '-' && j+1 < len(runes) && isIdentRune(runes[j+1]) {
					j++
					continue
				}
				break
			}
			name := string(runes[i:j])
			switch {
			case name == "true":
				b.WriteString("True")
			case name == "false":
				b.WriteString("False")
			case strings.Contains(name, "-"):
				id := model.Identifier(name)
				aliases[id] = name
				b.WriteString(id)
			default:
				b.WriteString(name)
			}
			i = j

		default:
			b.WriteRune(r)
			i++
		}
	}

	// a leading space would scan as an indent
	return strings.TrimSpace(b.String()), aliases, nil
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
