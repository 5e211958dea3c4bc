// Package schema turns the placeholder tables of projgen.toml into validated
// placeholder definitions and the visibility graph between them.
package schema

import (
	"fmt"
	"regexp"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/template/condition"
	"github.com/tacogips/projgen/internal/template/model"
)

var log = debug.Logger("schema")

// Built-in variable names the engine injects itself.
const (
	ProjectName      = "project-name"
	ProjectNameSnake = "project_name"
	Authors          = "authors"
	OSArch           = "os-arch"
	IsInit           = "is_init"
	WithinVCS        = "within_vcs"
)

var reserved = map[string]bool{
	ProjectName:      true,
	ProjectNameSnake: true,
	Authors:          true,
	OSArch:           true,
	IsInit:           true,
	WithinVCS:        true,
}

// keywords cannot be used as identifiers in conditions (Starlark) or in
// template tags (pongo2).
var keywords = map[string]bool{
	"and": true, "break": true, "continue": true, "def": true, "elif": true,
	"else": true, "for": true, "if": true, "in": true, "lambda": true,
	"load": true, "not": true, "or": true, "pass": true, "return": true,
	"while": true,
	// reserved by Starlark for future use
	"as": true, "assert": true, "async": true, "await": true, "class": true,
	"del": true, "except": true, "finally": true, "from": true, "global": true,
	"import": true, "is": true, "nonlocal": true, "raise": true, "try": true,
	"with": true, "yield": true,
	// pongo2
	"true": true, "false": true, "export": true,
}

// IsKeyword reports whether name cannot be referenced in conditions or
// template tags.
func IsKeyword(name string) bool {
	return keywords[name]
}

// IsReserved reports whether name is injected by the engine.
func IsReserved(name string) bool {
	return reserved[name]
}

// Placeholder is a validated placeholder definition. It is immutable once parsed.
type Placeholder struct {
	Name    string
	Kind    model.Kind
	Prompt  string
	Default *model.Value
	Choices []string
	Regex   *regexp.Regexp
	// VisibleWhen is nil for unconditional placeholders.
	VisibleWhen *condition.Expr
}

// Validate checks value against the placeholder's kind, choices and regex.
func (p *Placeholder) Validate(value model.Value) error {
	if value.Kind() != p.Kind {
		return fmt.Errorf("expected a %s, got %s", p.Kind, value.Kind())
	}
	if p.Kind != model.KindString {
		return nil
	}
	if len(p.Choices) > 0 && !contains(p.Choices, value.Str()) {
		return fmt.Errorf("%q is not one of %v", value.Str(), p.Choices)
	}
	if p.Regex != nil && !p.Regex.MatchString(value.Str()) {
		return fmt.Errorf("%q does not match %s", value.Str(), p.Regex)
	}
	return nil
}

// Conditional is a compiled [conditional.'<expr>'] file-list guard.
type Conditional struct {
	When    *condition.Expr
	Include []string
	Exclude []string
	Ignore  []string
}

// Schema is the full set of placeholders of a template.
type Schema struct {
	// Placeholders in declaration order: top-level first, then each
	// conditional table in document order.
	Placeholders []*Placeholder
	// Graph maps a placeholder to the names its visibility depends on.
	Graph map[string][]string
	// Conditionals are the compiled conditional tables.
	Conditionals []Conditional

	index map[string]*Placeholder
}

// Lookup returns the placeholder named name.
func (s *Schema) Lookup(name string) (*Placeholder, bool) {
	p, ok := s.index[name]
	return p, ok
}

// Parse validates every placeholder of cfg and builds the visibility graph.
func Parse(cfg *model.TemplateConfig) (*Schema, error) {
	s := &Schema{
		Graph: map[string][]string{},
		index: map[string]*Placeholder{},
	}

	top, err := ParsePlaceholders(cfg.Placeholders, "")
	if err != nil {
		return nil, err
	}
	if err := s.add(top); err != nil {
		return nil, err
	}

	for _, cond := range cfg.Conditionals {
		when, err := condition.Parse(cond.Expr)
		if err != nil {
			return nil, &SchemaError{Kind: ErrInvalidCondition, Detail: cond.Expr, Cause: err}
		}
		s.Conditionals = append(s.Conditionals, Conditional{
			When:    when,
			Include: cond.Include,
			Exclude: cond.Exclude,
			Ignore:  cond.Ignore,
		})

		nested, err := ParsePlaceholders(cond.Placeholders, cond.Expr)
		if err != nil {
			return nil, err
		}
		if err := s.add(nested); err != nil {
			return nil, err
		}
	}

	log.Debug().
		Int("placeholders", len(s.Placeholders)).
		Int("conditionals", len(s.Conditionals)).
		Msg("schema parsed")
	return s, nil
}

func (s *Schema) add(ps []*Placeholder) error {
	for _, p := range ps {
		if _, dup := s.index[p.Name]; dup {
			return newSchemaError(p.Name, ErrDuplicateName, "")
		}
		s.index[p.Name] = p
		s.Placeholders = append(s.Placeholders, p)
		if p.VisibleWhen != nil {
			s.Graph[p.Name] = p.VisibleWhen.Dependencies()
		}
	}
	return nil
}

// ParsePlaceholders validates one placeholder table. visibleWhen is the
// guarding expression of the enclosing conditional table, "" for the top
// level. Order follows table.Names.
func ParsePlaceholders(table model.PlaceholderTable, visibleWhen string) ([]*Placeholder, error) {
	var when *condition.Expr
	if visibleWhen != "" {
		var err error
		when, err = condition.Parse(visibleWhen)
		if err != nil {
			return nil, &SchemaError{Kind: ErrInvalidCondition, Detail: visibleWhen, Cause: err}
		}
	}

	result := make([]*Placeholder, 0, table.Len())
	for _, name := range table.Names {
		p, err := parsePlaceholder(name, table.Entries[name])
		if err != nil {
			return nil, err
		}
		p.VisibleWhen = when
		result = append(result, p)
	}
	return result, nil
}

func parsePlaceholder(name string, raw interface{}) (*Placeholder, error) {
	if IsReserved(name) {
		return nil, newSchemaError(name, ErrReservedName, "")
	}
	if IsKeyword(name) {
		return nil, newSchemaError(name, ErrKeywordName, "")
	}

	entry, ok := raw.(map[string]interface{})
	if !ok {
		return nil, newSchemaError(name, ErrInvalidFormat, fmt.Sprintf("got %T", raw))
	}

	p := &Placeholder{Name: name, Kind: model.KindString}

	if t, present := entry["type"]; present {
		ts, ok := t.(string)
		if !ok || (ts != string(model.KindBool) && ts != string(model.KindString)) {
			return nil, newSchemaError(name, ErrInvalidType, fmt.Sprintf("got %v", t))
		}
		p.Kind = model.Kind(ts)
	}

	if r, present := entry["regex"]; present {
		if p.Kind == model.KindBool {
			return nil, newSchemaError(name, ErrRegexOnBool, "")
		}
		rs, ok := r.(string)
		if !ok {
			return nil, newSchemaError(name, ErrInvalidRegex, fmt.Sprintf("got %T", r))
		}
		re, err := regexp.Compile(rs)
		if err != nil {
			return nil, &SchemaError{Placeholder: name, Kind: ErrInvalidRegex, Detail: rs, Cause: err}
		}
		p.Regex = re
	}

	if c, present := entry["choices"]; present {
		if p.Kind == model.KindBool {
			return nil, newSchemaError(name, ErrChoicesOnBool, "")
		}
		choices, err := stringList(c)
		if err != nil {
			return nil, newSchemaError(name, ErrChoiceType, err.Error())
		}
		if len(choices) == 0 {
			return nil, newSchemaError(name, ErrEmptyChoices, "")
		}
		if p.Regex != nil {
			for _, choice := range choices {
				if !p.Regex.MatchString(choice) {
					return nil, newSchemaError(name, ErrChoiceMismatch, choice)
				}
			}
		}
		p.Choices = choices
	}

	prompt, ok := entry["prompt"].(string)
	if !ok {
		return nil, newSchemaError(name, ErrMissingPrompt, "")
	}
	p.Prompt = prompt

	if d, present := entry["default"]; present {
		v, err := defaultValue(d, p.Kind)
		if err != nil {
			return nil, newSchemaError(name, ErrDefaultType, err.Error())
		}
		if len(p.Choices) > 0 && !contains(p.Choices, v.Str()) {
			return nil, newSchemaError(name, ErrDefaultNotInChoices, v.Str())
		}
		if p.Regex != nil && !p.Regex.MatchString(v.Str()) {
			return nil, newSchemaError(name, ErrDefaultMismatch, v.Str())
		}
		p.Default = &v
	}

	return p, nil
}

func defaultValue(raw interface{}, kind model.Kind) (model.Value, error) {
	switch kind {
	case model.KindBool:
		b, ok := raw.(bool)
		if !ok {
			return model.Value{}, fmt.Errorf("expected a bool, got %T", raw)
		}
		return model.BoolValue(b), nil
	default:
		s, ok := raw.(string)
		if !ok {
			return model.Value{}, fmt.Errorf("expected a string, got %T", raw)
		}
		return model.StringValue(s), nil
	}
}

func stringList(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("got %T entry", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("got %T", raw)
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
