package app

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/template/generator"
	"github.com/tacogips/projgen/internal/template/hooks"
	"github.com/tacogips/projgen/internal/template/model"
	"github.com/tacogips/projgen/internal/template/render"
	"github.com/tacogips/projgen/internal/template/schema"
)

// CheckTemplateOptions holds options for template validation.
type CheckTemplateOptions struct {
	// Template is a template location.
	Template string
	// Branch selects a git branch or tag.
	Branch string
	// Subfolder selects a template inside the fetched tree.
	Subfolder string
}

// CheckResult holds the results of template validation.
type CheckResult struct {
	// Placeholders is the number of placeholders declared.
	Placeholders int
	// Conditionals is the number of conditional tables.
	Conditionals int
	// FilesChecked is the number of text files parsed.
	FilesChecked int
	// FilesWithErrors is the number of files with errors.
	FilesWithErrors int
	// Errors is the list of problems found.
	Errors []CheckError
}

// CheckError represents a problem in one template file.
type CheckError struct {
	// File is the template-relative path.
	File string
	// Line is the line number (0 if not applicable).
	Line int
	// Message is the error message.
	Message string
}

// CheckTemplate validates a template without generating anything: its
// configuration, placeholder definitions, hook scripts, and the template
// syntax of every text file and file name.
func CheckTemplate(ctx context.Context, opts CheckTemplateOptions) (*CheckResult, error) {
	if opts.Template == "" {
		return nil, NewValidationError("template location is required", nil)
	}

	staging, err := os.MkdirTemp("", "projgen-check-")
	if err != nil {
		return nil, NewIOError("failed to create staging directory", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	tpl, err := fetchTemplate(ctx, templateSource{
		location:  opts.Template,
		branch:    opts.Branch,
		subfolder: opts.Subfolder,
	}, filepath.Join(staging, "template"))
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Errors: []CheckError{}}

	sch, err := loadSchema(tpl.Config)
	if err != nil {
		result.FilesWithErrors++
		result.Errors = append(result.Errors, CheckError{File: model.ConfigFile, Message: err.Error()})
		return result, nil
	}
	result.Placeholders = len(sch.Placeholders)
	result.Conditionals = len(sch.Conditionals)

	for _, s := range []struct {
		phase   hooks.Phase
		scripts []string
	}{
		{hooks.PhaseInit, tpl.Config.Hooks.Init},
		{hooks.PhasePre, tpl.Config.Hooks.Pre},
		{hooks.PhasePost, tpl.Config.Hooks.Post},
	} {
		for _, script := range s.scripts {
			if err := hooks.Compile(s.phase, tpl.RootPath, script); err != nil {
				result.FilesWithErrors++
				result.Errors = append(result.Errors, CheckError{File: script, Message: err.Error()})
			}
		}
	}

	names := knownNames(sch)
	skip := map[string]bool{model.ConfigFile: true, model.IgnoreFile: true}
	for _, script := range hookScripts(tpl.Config.Hooks) {
		skip[filepath.ToSlash(filepath.Clean(script))] = true
	}

	engine := render.NewEngine()
	err = filepath.WalkDir(tpl.RootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == model.VCSDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(tpl.RootPath, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if skip[rel] {
			return nil
		}
		checkFile(engine, p, rel, names, result)
		return nil
	})
	if err != nil {
		return nil, NewIOError("failed to walk template", err)
	}

	debug.Debug("[app] Checked %d files, %d with errors", result.FilesChecked, result.FilesWithErrors)
	return result, nil
}

// checkFile parses the name and content of one template file.
func checkFile(engine *render.Engine, path, rel string, names []string, result *CheckResult) {
	failed := false
	if err := engine.Check(rel, names); err != nil {
		failed = true
		result.Errors = append(result.Errors, CheckError{File: rel, Message: "file name: " + err.Error()})
	}

	content, err := os.ReadFile(path)
	if err != nil {
		debug.Debug("[app] Skipping unreadable file %s: %v", rel, err)
		return
	}
	if !generator.IsBinary(rel, content) {
		result.FilesChecked++
		if err := engine.Check(string(content), names); err != nil {
			failed = true
			line := 0
			if re, ok := err.(*render.RenderError); ok {
				line = re.Line
			}
			result.Errors = append(result.Errors, CheckError{File: rel, Line: line, Message: err.Error()})
		}
	}
	if failed {
		result.FilesWithErrors++
	}
}

// knownNames returns every variable name a template may reference.
func knownNames(sch *schema.Schema) []string {
	names := []string{
		schema.ProjectName, schema.ProjectNameSnake, schema.Authors,
		schema.OSArch, schema.IsInit, schema.WithinVCS,
	}
	for _, p := range sch.Placeholders {
		names = append(names, p.Name)
	}
	return names
}
