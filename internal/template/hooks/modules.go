package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/tacogips/projgen/internal/sandbox"
	"github.com/tacogips/projgen/internal/template/model"
	"github.com/tacogips/projgen/internal/template/render"
)

const silentCommandMessage = "cannot prompt for system command confirmation in silent mode; " +
	"use --allow-commands to let the template run system commands"

// modules holds the capabilities of one phase invocation.
type modules struct {
	ctx context.Context
	hc  *Context
}

func newModules(ctx context.Context, hc *Context) starlark.StringDict {
	m := &modules{ctx: ctx, hc: hc}

	predeclared := starlark.StringDict{
		"variable": &starlarkstruct.Module{Name: "variable", Members: starlark.StringDict{
			"is_set": starlark.NewBuiltin("variable.is_set", m.variableIsSet),
			"get":    starlark.NewBuiltin("variable.get", m.variableGet),
			"set":    starlark.NewBuiltin("variable.set", m.variableSet),
			"prompt": starlark.NewBuiltin("variable.prompt", m.variablePrompt),
		}},
		"file": &starlarkstruct.Module{Name: "file", Members: starlark.StringDict{
			"exists":  starlark.NewBuiltin("file.exists", m.fileExists),
			"rename":  starlark.NewBuiltin("file.rename", m.fileRename),
			"delete":  starlark.NewBuiltin("file.delete", m.fileDelete),
			"write":   starlark.NewBuiltin("file.write", m.fileWrite),
			"listdir": starlark.NewBuiltin("file.listdir", m.fileListdir),
		}},
		"system": &starlarkstruct.Module{Name: "system", Members: starlark.StringDict{
			"command": starlark.NewBuiltin("system.command", m.systemCommand),
			"date":    starlark.NewBuiltin("system.date", systemDate),
		}},
		"env": &starlarkstruct.Module{Name: "env", Members: starlark.StringDict{
			"working_directory": starlark.String(hc.WorkDir),
			"destination":       starlark.String(hc.Destination),
		}},
		"abort": starlark.NewBuiltin("abort", abort),
	}

	for name, fn := range render.CaseFuncs {
		fn := fn
		builtin := "to_" + name
		predeclared[builtin] = starlark.NewBuiltin(builtin, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var s string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
				return nil, err
			}
			return starlark.String(fn(s)), nil
		})
	}
	return predeclared
}

// variable module

func (m *modules) variableIsSet(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	return starlark.Bool(m.hc.Store.Has(name)), nil
}

func (m *modules) variableGet(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	v, ok := m.hc.Store.Get(name)
	if !ok {
		return nil, fmt.Errorf("variable %q is not set", name)
	}
	return toStarlark(v), nil
}

func (m *modules) variableSet(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var value starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "value", &value); err != nil {
		return nil, err
	}
	v, err := fromStarlark(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if err := m.hc.Store.Set(name, v); err != nil {
		return nil, err
	}
	log.Debug().Str("name", name).Str("value", v.String()).Msg("variable set by hook")
	return starlark.None, nil
}

func (m *modules) variablePrompt(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var message string
	var def starlark.Value = starlark.None
	var choices starlark.Value = starlark.None
	var regex string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"message", &message, "default?", &def, "choices?", &choices, "regex?", &regex); err != nil {
		return nil, err
	}

	var re *regexp.Regexp
	if regex != "" {
		var err error
		if re, err = regexp.Compile(regex); err != nil {
			return nil, fmt.Errorf("%s: invalid regex: %w", b.Name(), err)
		}
	}

	if m.hc.Silent || m.hc.Prompter == nil {
		if def == starlark.None {
			return nil, fmt.Errorf("%s: cannot prompt %q in silent mode and no default was given", b.Name(), message)
		}
		return def, nil
	}

	opts, err := stringList(b.Name(), choices)
	if err != nil {
		return nil, err
	}
	if len(opts) > 0 {
		d := opts[0]
		if s, ok := starlark.AsString(def); ok {
			d = s
		}
		s, err := m.hc.Prompter.Select(message, opts, d)
		if err != nil {
			return nil, err
		}
		return starlark.String(s), nil
	}

	if d, ok := def.(starlark.Bool); ok {
		answer, err := m.hc.Prompter.Confirm(message, bool(d))
		if err != nil {
			return nil, err
		}
		return starlark.Bool(answer), nil
	}

	d, _ := starlark.AsString(def)
	for {
		if err := m.ctx.Err(); err != nil {
			return nil, err
		}
		s, err := m.hc.Prompter.Input(message, d)
		if err != nil {
			return nil, err
		}
		if re == nil || re.MatchString(s) {
			return starlark.String(s), nil
		}
		log.Warn().Str("regex", regex).Msgf("%q does not match", s)
	}
}

// file module

func (m *modules) path(p string) (string, error) {
	return sandbox.ToSandboxedAbsolute(m.hc.WorkDir, p)
}

func (m *modules) fileExists(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var p string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "path", &p); err != nil {
		return nil, err
	}
	abs, err := m.path(p)
	if err != nil {
		return nil, err
	}
	_, err = os.Lstat(abs)
	return starlark.Bool(err == nil), nil
}

func (m *modules) fileRename(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var from, to string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "from", &from, "to", &to); err != nil {
		return nil, err
	}
	src, err := m.path(from)
	if err != nil {
		return nil, err
	}
	dst, err := m.path(to)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, err
	}
	if err := os.Rename(src, dst); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (m *modules) fileDelete(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var p string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "path", &p); err != nil {
		return nil, err
	}
	abs, err := m.path(p)
	if err != nil {
		return nil, err
	}
	root, err := m.path(".")
	if err != nil {
		return nil, err
	}
	if abs == root {
		return nil, fmt.Errorf("%s: refusing to delete the working directory", b.Name())
	}
	if err := os.RemoveAll(abs); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (m *modules) fileWrite(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var p, content string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "path", &p, "content", &content); err != nil {
		return nil, err
	}
	abs, err := m.path(p)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (m *modules) fileListdir(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	p := "."
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "path?", &p); err != nil {
		return nil, err
	}
	abs, err := m.path(p)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}
	items := make([]starlark.Value, 0, len(entries))
	for _, e := range entries {
		items = append(items, starlark.String(filepath.Join(abs, e.Name())))
	}
	return starlark.NewList(items), nil
}

// system module

func (m *modules) systemCommand(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: missing command name", b.Name())
	}
	argv := make([]string, len(args))
	for i, a := range args {
		s, ok := starlark.AsString(a)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d must be a string, got %s", b.Name(), i, a.Type())
		}
		argv[i] = s
	}
	cmdline := strings.Join(argv, " ")

	if err := m.allowCommand(cmdline); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(m.ctx, argv[0], argv[1:]...)
	cmd.Dir = m.hc.WorkDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("command", cmdline).Msg("running system command")
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("command %q failed: %w: %s", cmdline, err, msg)
		}
		return nil, fmt.Errorf("command %q failed: %w", cmdline, err)
	}
	return starlark.String(strings.TrimSpace(stdout.String())), nil
}

func (m *modules) allowCommand(cmdline string) error {
	if m.hc.AllowCommands {
		return nil
	}
	if m.hc.Silent || m.hc.Prompter == nil {
		return fmt.Errorf("%s", silentCommandMessage)
	}
	ok, err := m.hc.Prompter.Confirm(fmt.Sprintf("The template wants to run %q. Allow?", cmdline), false)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("denied execution of system command %q", cmdline)
	}
	return nil
}

func systemDate(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"year":  starlark.MakeInt(now.Year()),
		"month": starlark.MakeInt(int(now.Month())),
		"day":   starlark.MakeInt(now.Day()),
	}), nil
}

// builtins

func abort(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var msg string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &msg); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s", ErrAborted, msg)
}

// conversions

func stringList(fn string, v starlark.Value) ([]string, error) {
	if v == starlark.None {
		return nil, nil
	}
	seq, ok := v.(starlark.Indexable)
	if !ok {
		return nil, fmt.Errorf("%s: choices must be a list of strings, got %s", fn, v.Type())
	}
	out := make([]string, 0, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		s, ok := starlark.AsString(seq.Index(i))
		if !ok {
			return nil, fmt.Errorf("%s: choices must be strings", fn)
		}
		out = append(out, s)
	}
	return out, nil
}

func toStarlark(v model.Value) starlark.Value {
	if v.Kind() == model.KindBool {
		return starlark.Bool(v.Bool())
	}
	return starlark.String(v.Str())
}

func fromStarlark(v starlark.Value) (model.Value, error) {
	switch x := v.(type) {
	case starlark.Bool:
		return model.BoolValue(bool(x)), nil
	case starlark.String:
		return model.StringValue(string(x)), nil
	case starlark.Int:
		return model.StringValue(x.String()), nil
	default:
		return model.Value{}, fmt.Errorf("value must be a bool or a string, got %s", v.Type())
	}
}
