// Package resolver assigns a value to every visible placeholder of a schema.
//
// Candidate values are taken from, highest precedence first: explicit
// defines, PROJGEN_VALUE_<NAME> environment variables, a values file,
// favorite/config default values, the schema default, and finally an
// interactive prompt. A value already present in the store is never replaced.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tacogips/projgen/internal/config"
	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/template/model"
	"github.com/tacogips/projgen/internal/template/schema"
	"github.com/tacogips/projgen/internal/template/vars"
)

var log = debug.Logger("resolver")

// Prompter asks the user for values.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(message string, def bool) (bool, error)
	// Select asks the user to pick one of choices.
	Select(message string, choices []string, def string) (string, error)
	// Input asks for free text.
	Input(message, def string) (string, error)
}

// Sources are the non-interactive value sources.
type Sources struct {
	// Defines are explicit name=value overrides.
	Defines map[string]string
	// Env looks up an environment variable; nil disables the source.
	Env func(key string) (string, bool)
	// ValuesFile holds the values of an explicit values file.
	ValuesFile map[string]interface{}
	// Defaults are favorite and app-config default values.
	Defaults map[string]interface{}
}

// Options control resolution.
type Options struct {
	// Silent disables prompting. Unresolved placeholders without a
	// schema default are an error.
	Silent bool
	// Prompter is used when not silent.
	Prompter Prompter
}

// EnvKey returns the environment variable consulted for name.
func EnvKey(name string) string {
	return config.EnvValuePrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

const (
	white = iota
	grey
	black
)

type resolver struct {
	ctx     context.Context
	store   *vars.Store
	schema  *schema.Schema
	src     Sources
	opts    Options
	state   map[string]int
	visible map[string]bool
}

// Resolve resolves every visible placeholder of sch into store.
//
// Placeholders are walked depth-first along the visibility graph in
// declaration order, so a guard is evaluated only after its dependencies
// are resolved. A placeholder whose guard is false, or which depends on an
// invisible placeholder, is skipped entirely.
//
// Provided values that do not name a placeholder are inserted first so
// guards and templates can reference them.
func Resolve(ctx context.Context, store *vars.Store, sch *schema.Schema, src Sources, opts Options) error {
	r := &resolver{
		ctx:     ctx,
		store:   store,
		schema:  sch,
		src:     src,
		opts:    opts,
		state:   map[string]int{},
		visible: map[string]bool{},
	}

	if err := r.insertExtras(); err != nil {
		return err
	}

	for _, p := range sch.Placeholders {
		if err := r.visit(p.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) insertExtras() error {
	for _, name := range sortedKeys(r.src.Defines) {
		if _, ok := r.schema.Lookup(name); ok {
			continue
		}
		r.store.Insert(name, model.StringValue(r.src.Defines[name]))
	}
	for _, values := range []map[string]interface{}{r.src.ValuesFile, r.src.Defaults} {
		for _, name := range sortedKeys(values) {
			if _, ok := r.schema.Lookup(name); ok {
				continue
			}
			v, err := model.ValueFromInterface(values[name])
			if err != nil {
				return &ResolutionError{Kind: ErrInvalidValue, Placeholder: name, Source: "values", Cause: err}
			}
			r.store.Insert(name, v)
		}
	}
	return nil
}

func (r *resolver) visit(name string) error {
	switch r.state[name] {
	case black:
		return nil
	case grey:
		return &ResolutionError{Kind: ErrCycle, Placeholder: name}
	}

	p, ok := r.schema.Lookup(name)
	if !ok {
		if r.store.Has(name) {
			return nil
		}
		return &ResolutionError{Kind: ErrMissingDependency, Placeholder: name,
			Detail: "not a placeholder and no value was provided"}
	}

	r.state[name] = grey
	visible := true
	if p.VisibleWhen != nil {
		for _, dep := range r.schema.Graph[name] {
			if err := r.visit(dep); err != nil {
				return err
			}
			if _, isPlaceholder := r.schema.Lookup(dep); isPlaceholder && !r.visible[dep] {
				visible = false
			}
		}
		if visible {
			ok, err := p.VisibleWhen.Eval(r.store.Bindings())
			if err != nil {
				return &ResolutionError{Kind: ErrMissingDependency, Placeholder: name, Cause: err}
			}
			visible = ok
		}
	}
	r.state[name] = black
	r.visible[name] = visible

	if !visible {
		log.Debug().Str("placeholder", name).Str("when", p.VisibleWhen.String()).Msg("placeholder hidden")
		return nil
	}
	return r.resolve(p)
}

func (r *resolver) resolve(p *schema.Placeholder) error {
	if r.store.Has(p.Name) {
		log.Debug().Str("placeholder", p.Name).Msg("already set")
		return nil
	}
	if err := r.ctx.Err(); err != nil {
		return err
	}

	v, source, found, err := r.candidate(p)
	if err != nil {
		return err
	}
	if found {
		if err := p.Validate(v); err != nil {
			return &ResolutionError{Kind: ErrInvalidValue, Placeholder: p.Name, Source: source, Cause: err}
		}
		r.insert(p.Name, v, source)
		return nil
	}

	if r.opts.Silent || r.opts.Prompter == nil {
		if p.Default != nil {
			r.insert(p.Name, *p.Default, "default")
			return nil
		}
		return &ResolutionError{
			Kind:        ErrMissingValue,
			Placeholder: p.Name,
			Detail:      fmt.Sprintf("running in silent mode; pass --define %s=<value> or set %s", p.Name, EnvKey(p.Name)),
		}
	}

	v, err = r.prompt(p)
	if err != nil {
		return &ResolutionError{Kind: ErrPrompt, Placeholder: p.Name, Cause: err}
	}
	r.insert(p.Name, v, "prompt")
	return nil
}

func (r *resolver) insert(name string, v model.Value, source string) {
	r.store.Insert(name, v)
	log.Debug().Str("placeholder", name).Str("value", v.String()).Str("source", source).Msg("resolved")
}

// candidate returns the highest-precedence provided value for p.
func (r *resolver) candidate(p *schema.Placeholder) (model.Value, string, bool, error) {
	type source struct {
		name string
		raw  interface{}
	}

	var sources []source
	if s, ok := r.src.Defines[p.Name]; ok {
		sources = append(sources, source{"define", s})
	}
	if r.src.Env != nil {
		key := EnvKey(p.Name)
		if s, ok := r.src.Env(key); ok {
			sources = append(sources, source{"env " + key, s})
		}
	}
	if raw, ok := r.src.ValuesFile[p.Name]; ok {
		sources = append(sources, source{"values file", raw})
	}
	if raw, ok := r.src.Defaults[p.Name]; ok {
		sources = append(sources, source{"config defaults", raw})
	}

	if len(sources) == 0 {
		return model.Value{}, "", false, nil
	}
	top := sources[0]
	v, err := model.Coerce(top.raw, p.Kind)
	if err != nil {
		return model.Value{}, top.name, false, &ResolutionError{
			Kind: ErrInvalidValue, Placeholder: p.Name, Source: top.name, Cause: err,
		}
	}
	return v, top.name, true, nil
}

func (r *resolver) prompt(p *schema.Placeholder) (model.Value, error) {
	switch {
	case p.Kind == model.KindBool:
		def := false
		if p.Default != nil {
			def = p.Default.Bool()
		}
		b, err := r.opts.Prompter.Confirm(p.Prompt, def)
		if err != nil {
			return model.Value{}, err
		}
		return model.BoolValue(b), nil

	case len(p.Choices) > 0:
		def := p.Choices[0]
		if p.Default != nil {
			def = p.Default.Str()
		}
		s, err := r.opts.Prompter.Select(p.Prompt, p.Choices, def)
		if err != nil {
			return model.Value{}, err
		}
		v := model.StringValue(s)
		if err := p.Validate(v); err != nil {
			return model.Value{}, err
		}
		return v, nil

	default:
		def := ""
		if p.Default != nil {
			def = p.Default.Str()
		}
		for {
			if err := r.ctx.Err(); err != nil {
				return model.Value{}, err
			}
			s, err := r.opts.Prompter.Input(p.Prompt, def)
			if err != nil {
				return model.Value{}, err
			}
			v := model.StringValue(s)
			if err := p.Validate(v); err != nil {
				log.Warn().Str("placeholder", p.Name).Msg(err.Error())
				continue
			}
			return v, nil
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
