// Package generator expands a staged template tree into a destination
// directory: file selection, override resolution, filename and content
// substitution, and post-generation cleanup.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/sandbox"
	"github.com/tacogips/projgen/internal/template/model"
	"github.com/tacogips/projgen/internal/template/render"
	"github.com/tacogips/projgen/internal/template/vars"
)

var log = debug.Logger("generator")

// ExpandOptions configures Expand.
type ExpandOptions struct {
	// TemplateRoot is the staged template directory.
	TemplateRoot string

	// DestinationRoot is the directory files are written into.
	DestinationRoot string

	// Variables holds the values substituted into names and contents.
	// Expand only reads them.
	Variables vars.Variables

	// Rules selects and classifies files. Nil substitutes every file.
	Rules *SelectionRules

	// Renderer renders names and contents.
	Renderer render.Renderer

	// Overwrite allows replacing existing destination files.
	Overwrite bool

	// ContinueOnError demotes render failures to warnings; the file is
	// written unrendered.
	ContinueOnError bool

	// Housekeeping lists template-relative paths never copied, such as
	// hook scripts. The configuration and ignore files are always skipped.
	Housekeeping []string
}

// ExpandResult describes what Expand wrote.
type ExpandResult struct {
	// Files are the destination-relative paths written, in walk order.
	Files []string

	// Overwritten are the written paths that replaced an existing file.
	Overwritten []string

	// Verbatim are the written paths copied without substitution.
	Verbatim []string

	// Warnings are render failures demoted under ContinueOnError.
	Warnings []error
}

// sourceFile is one leaf of the template tree.
type sourceFile struct {
	rel      string
	mode     fs.FileMode
	symlink  string
	override bool
}

// Expand writes the template tree to the destination.
func Expand(ctx context.Context, opts ExpandOptions) (*ExpandResult, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	debug.Debug("[generator] Starting expansion: template=%s, destination=%s, overwrite=%v",
		opts.TemplateRoot, opts.DestinationRoot, opts.Overwrite)

	files, err := collect(opts.TemplateRoot, housekeepingSet(opts.Housekeeping))
	if err != nil {
		return nil, err
	}
	selected := resolveOverrides(files)

	if err := createDir(opts.DestinationRoot); err != nil {
		return nil, err
	}

	bindings := opts.Variables.Bindings()
	result := &ExpandResult{}

	for _, f := range selected {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := expandFile(f, opts, bindings, result); err != nil {
			return result, err
		}
	}

	log.Debug().
		Int("written", len(result.Files)).
		Int("overwritten", len(result.Overwritten)).
		Int("verbatim", len(result.Verbatim)).
		Int("warnings", len(result.Warnings)).
		Msg("expansion complete")
	return result, nil
}

func expandFile(f sourceFile, opts ExpandOptions, bindings map[string]interface{}, result *ExpandResult) error {
	key := f.rel
	if f.override {
		key, _ = StripOverrideSuffix(f.rel)
	}

	if opts.Rules.Ignored(key) || opts.Rules.Ignored(f.rel) {
		debug.Debug("[generator] Ignoring file: %s", f.rel)
		return nil
	}
	substitute := opts.Rules.Substitute(key)

	destRel := key
	if substitute {
		name, err := RenderFilename(key, opts.Renderer, bindings)
		if err != nil {
			if !opts.ContinueOnError {
				return newGeneratorError(GeneratorRenderFailed, "failed to render filename", f.rel, err)
			}
			result.Warnings = append(result.Warnings, newGeneratorError(GeneratorRenderFailed, "failed to render filename", f.rel, err))
		} else {
			destRel = name
		}
	}

	dest, err := sandbox.ToSandboxedAbsolute(opts.DestinationRoot, destRel)
	if err != nil {
		return newGeneratorError(GeneratorPathError, "destination path escapes the project directory", f.rel, err)
	}

	existed := exists(dest)
	if existed && !opts.Overwrite && !f.override {
		return newGeneratorError(GeneratorConflict, ErrConflict.Error(), destRel, nil)
	}

	if f.symlink != "" {
		if err := writeSymlink(dest, f.symlink); err != nil {
			return err
		}
		record(result, destRel, existed, true)
		return nil
	}

	src := filepath.Join(opts.TemplateRoot, filepath.FromSlash(f.rel))
	content, err := os.ReadFile(src)
	if err != nil {
		return newGeneratorError(GeneratorWriteFailed, "failed to read template file", f.rel, err)
	}

	verbatim := !substitute || IsBinary(f.rel, content)
	if !verbatim {
		out, err := processContent(f.rel, content, opts.Renderer, bindings)
		switch {
		case err == nil:
			content = out
		case opts.ContinueOnError:
			log.Warn().Str("file", f.rel).Err(err).Msg("writing unrendered file")
			result.Warnings = append(result.Warnings, newGeneratorError(GeneratorRenderFailed, "failed to render file", f.rel, err))
		default:
			return newGeneratorError(GeneratorRenderFailed, "failed to render file", f.rel, err)
		}
	}

	if existed {
		debug.Debug("[generator] Overwriting file: %s (size: %d bytes)", destRel, len(content))
	}
	if err := writeFile(dest, content, f.mode); err != nil {
		return err
	}
	record(result, destRel, existed, verbatim)
	return nil
}

func record(result *ExpandResult, destRel string, existed, verbatim bool) {
	result.Files = append(result.Files, destRel)
	if existed {
		result.Overwritten = append(result.Overwritten, destRel)
	}
	if verbatim {
		result.Verbatim = append(result.Verbatim, destRel)
	}
}

// collect walks root in lexical order and returns every regular file and
// symlink. Version-control metadata and housekeeping files are skipped.
func collect(root string, skip map[string]bool) ([]sourceFile, error) {
	var files []sourceFile
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if d.Name() == model.VCSDir {
				return filepath.SkipDir
			}
			return nil
		}
		if skip[rel] {
			debug.Debug("[generator] Skipping housekeeping file: %s", rel)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		f := sourceFile{rel: rel, mode: info.Mode()}
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return err
			}
			f.symlink = target
		case !info.Mode().IsRegular():
			return nil
		}
		_, f.override = StripOverrideSuffix(rel)
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, newGeneratorError(GeneratorWriteFailed, "failed to walk template", root, err)
	}
	return files, nil
}

// resolveOverrides groups files by destination source path and keeps one
// per group: the suffixed override when present, else the plain file.
func resolveOverrides(files []sourceFile) []sourceFile {
	type group struct {
		plain    *sourceFile
		override *sourceFile
	}
	groups := map[string]*group{}
	var order []string

	for i := range files {
		f := &files[i]
		key := f.rel
		if f.override {
			key, _ = StripOverrideSuffix(f.rel)
		}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		if f.override {
			g.override = f
		} else {
			g.plain = f
		}
	}

	selected := make([]sourceFile, 0, len(order))
	for _, key := range order {
		g := groups[key]
		switch {
		case g.override != nil:
			if g.plain != nil {
				debug.Debug("[generator] %s overrides %s", g.override.rel, g.plain.rel)
			}
			selected = append(selected, *g.override)
		default:
			selected = append(selected, *g.plain)
		}
	}
	return selected
}

func housekeepingSet(extra []string) map[string]bool {
	set := map[string]bool{
		model.ConfigFile: true,
		model.IgnoreFile: true,
	}
	for _, p := range extra {
		set[path.Clean(filepath.ToSlash(p))] = true
	}
	return set
}

// Cleanup removes written files matching patterns from dest, then prunes
// directories the removal left empty. It returns the removed paths.
// Files the template did not write are never touched.
func Cleanup(dest string, written []string, patterns []string) ([]string, error) {
	m, err := NewMatcher(patterns)
	if err != nil {
		return nil, err
	}
	if m.Empty() {
		return nil, nil
	}

	var removed []string
	dirs := map[string]bool{}
	for _, rel := range written {
		if !m.Match(rel) {
			continue
		}
		abs, err := sandbox.ToSandboxedAbsolute(dest, rel)
		if err != nil {
			return removed, newGeneratorError(GeneratorPathError, "cleanup path escapes the project directory", rel, err)
		}
		if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, newGeneratorError(GeneratorWriteFailed, "failed to remove ignored file", rel, err)
		}
		removed = append(removed, rel)
		for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
			dirs[dir] = true
		}
	}

	// Deepest first so a parent is checked after its children.
	ordered := make([]string, 0, len(dirs))
	for dir := range dirs {
		ordered = append(ordered, dir)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})
	for _, dir := range ordered {
		abs := filepath.Join(dest, filepath.FromSlash(dir))
		entries, err := os.ReadDir(abs)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(abs); err != nil {
			return removed, newGeneratorError(GeneratorWriteFailed, "failed to remove empty directory", dir, err)
		}
	}

	log.Debug().Strs("removed", removed).Msg("cleanup complete")
	return removed, nil
}

// validateOptions validates ExpandOptions.
func validateOptions(opts ExpandOptions) error {
	if opts.TemplateRoot == "" {
		return fmt.Errorf("template root cannot be empty")
	}
	if opts.DestinationRoot == "" {
		return fmt.Errorf("destination root cannot be empty")
	}
	if opts.Variables == nil {
		return fmt.Errorf("variables cannot be nil")
	}
	if opts.Renderer == nil {
		return fmt.Errorf("renderer cannot be nil")
	}
	return nil
}
