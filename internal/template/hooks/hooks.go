// Package hooks runs the Starlark scripts a template declares for the init,
// pre and post phases.
//
// Every phase invocation builds a fresh set of modules from a Context, so no
// state leaks between phases. Scripts see four modules:
//
//	variable  is_set(name), get(name), set(name, value), prompt(message, default, choices, regex)
//	file      exists(p), rename(src, dst), delete(p), write(p, content), listdir(p=".")
//	system    command(name, *args), date()
//	env       working_directory, destination
//
// plus the builtins abort(message) and to_<case>(s) case helpers. File paths
// are confined to the phase working directory.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/sandbox"
	"github.com/tacogips/projgen/internal/template/resolver"
	"github.com/tacogips/projgen/internal/template/vars"
)

var log = debug.Logger("hooks")

// Phase names a point of the run where scripts execute.
type Phase string

const (
	// PhaseInit runs before placeholder resolution.
	PhaseInit Phase = "init"
	// PhasePre runs after resolution, before expansion.
	PhasePre Phase = "pre"
	// PhasePost runs after expansion, before cleanup.
	PhasePost Phase = "post"
)

// ErrAborted is wrapped by the error of a script that called abort().
var ErrAborted = errors.New("aborted by template")

// Context is everything a phase invocation may touch.
type Context struct {
	// Store is the run's variable store.
	Store *vars.Store
	// TemplateRoot is the staged template; script paths resolve against it.
	TemplateRoot string
	// WorkDir is the process working directory during the phase and the
	// sandbox root of the file module.
	WorkDir string
	// Destination is the project directory being generated.
	Destination string
	// AllowCommands lets system.command run without confirmation.
	AllowCommands bool
	// Silent disables prompting.
	Silent bool
	// Prompter asks the user; nil behaves like Silent.
	Prompter resolver.Prompter
	// Stdout receives print() output. Defaults to os.Stdout.
	Stdout io.Writer
}

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// Run executes scripts in order. The first failure stops the phase.
// The process working directory is hc.WorkDir for the duration of the call.
func Run(ctx context.Context, phase Phase, scripts []string, hc *Context) (err error) {
	if len(scripts) == 0 {
		return nil
	}

	prev, err := os.Getwd()
	if err != nil {
		return &ScriptError{Phase: phase, Message: "failed to get working directory", Cause: err}
	}
	if err := os.Chdir(hc.WorkDir); err != nil {
		return &ScriptError{Phase: phase, Message: "failed to enter working directory", Cause: err}
	}
	defer func() {
		if cerr := os.Chdir(prev); cerr != nil && err == nil {
			err = &ScriptError{Phase: phase, Message: "failed to restore working directory", Cause: cerr}
		}
	}()

	predeclared := newModules(ctx, hc)
	for _, script := range scripts {
		if err := runScript(ctx, phase, script, hc, predeclared); err != nil {
			return err
		}
	}
	return nil
}

func runScript(ctx context.Context, phase Phase, script string, hc *Context, predeclared starlark.StringDict) error {
	path, err := sandbox.ToSandboxedAbsolute(hc.TemplateRoot, script)
	if err != nil {
		return &ScriptError{Phase: phase, Script: script, Message: "invalid script path", Cause: err}
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return &ScriptError{Phase: phase, Script: script, Message: "failed to read script", Cause: err}
	}

	out := hc.Stdout
	if out == nil {
		out = os.Stdout
	}
	thread := &starlark.Thread{
		Name: string(phase) + ":" + script,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(out, msg)
		},
	}
	stop := context.AfterFunc(ctx, func() { thread.Cancel(ctx.Err().Error()) })
	defer stop()

	log.Debug().Str("phase", string(phase)).Str("script", script).Msg("running hook")
	if _, err := starlark.ExecFileOptions(fileOptions, thread, script, src, predeclared); err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			log.Debug().Str("script", script).Msg(evalErr.Backtrace())
		}
		return &ScriptError{Phase: phase, Script: script, Message: "script failed", Cause: err}
	}
	return nil
}

// Compile parses and resolves script without running it, reporting syntax
// errors and references to undefined names.
func Compile(phase Phase, templateRoot, script string) error {
	path, err := sandbox.ToSandboxedAbsolute(templateRoot, script)
	if err != nil {
		return &ScriptError{Phase: phase, Script: script, Message: "invalid script path", Cause: err}
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return &ScriptError{Phase: phase, Script: script, Message: "failed to read script", Cause: err}
	}
	predeclared := newModules(context.Background(), &Context{TemplateRoot: templateRoot, WorkDir: templateRoot})
	if _, _, err := starlark.SourceProgramOptions(fileOptions, script, src, predeclared.Has); err != nil {
		return &ScriptError{Phase: phase, Script: script, Message: "invalid script", Cause: err}
	}
	return nil
}

// ScriptError reports a failed hook script.
type ScriptError struct {
	// Phase is the phase being run.
	Phase Phase
	// Script is the script path as declared.
	Script string
	// Message is the error message.
	Message string
	// Cause is the underlying error if any.
	Cause error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	where := fmt.Sprintf("%s hook", e.Phase)
	if e.Script != "" {
		where += " " + e.Script
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ScriptError) Unwrap() error {
	return e.Cause
}
