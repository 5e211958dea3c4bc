// Package app implements the generation workflow: it stages a template,
// resolves its variables, runs its hooks and expands it into a project.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tacogips/projgen/internal/build"
	"github.com/tacogips/projgen/internal/config"
	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/sandbox"
	"github.com/tacogips/projgen/internal/template/generator"
	"github.com/tacogips/projgen/internal/template/hooks"
	"github.com/tacogips/projgen/internal/template/model"
	"github.com/tacogips/projgen/internal/template/provider"
	"github.com/tacogips/projgen/internal/template/render"
	"github.com/tacogips/projgen/internal/template/resolver"
	"github.com/tacogips/projgen/internal/template/schema"
	"github.com/tacogips/projgen/internal/template/vars"
)

var log = debug.Logger("app")

// GenerateOptions contains options for project generation.
type GenerateOptions struct {
	// Template is a template location or the name of a favorite.
	Template string
	// Favorite names a favorite explicitly. It takes precedence over Template.
	Favorite string
	// Branch selects a git branch or tag.
	Branch string
	// Subfolder selects a template inside the fetched tree.
	Subfolder string

	// DestinationRoot is the directory the project is created in.
	// Defaults to the working directory.
	DestinationRoot string
	// ProjectName is the name given on the command line.
	ProjectName string

	// Defines are name=value overrides.
	Defines []string
	// ValuesFile is a TOML or YAML values file.
	ValuesFile string
	// ConfigPath overrides the app config location.
	ConfigPath string
	// VCS overrides the repository type initialized in the project.
	VCS string

	// Prompter asks the user for values. Nil implies Silent.
	Prompter resolver.Prompter
	// Silent disables prompting.
	Silent bool
	// AllowCommands lets hooks run system commands without confirmation.
	AllowCommands bool
	// Overwrite allows replacing existing files.
	Overwrite bool
	// Init expands into DestinationRoot itself.
	Init bool
	// Force keeps the project name as given instead of kebab-casing it.
	Force bool
	// ContinueOnError writes files that fail to render unrendered.
	ContinueOnError bool

	// Stdout receives hook output.
	Stdout io.Writer
	// Env looks up environment variables. Defaults to os.LookupEnv.
	Env func(key string) (string, bool)
}

// GenerateResult contains the results of project generation.
type GenerateResult struct {
	// RunID identifies the run in log output.
	RunID string
	// ProjectDir is the directory the project was written to.
	ProjectDir string
	// ProjectName is the final project-name value.
	ProjectName string
	// Template is the reference the template was fetched from.
	Template model.TemplateRef
	// Expansion describes the written files.
	Expansion *generator.ExpandResult
	// Removed are the written files removed by ignore rules after the post hooks.
	Removed []string
	// VCSInitialized reports whether a repository was created.
	VCSInitialized bool
}

// Generate creates a project from a template.
//
// Phases run in a fixed order: fetch, init hooks, variable resolution, pre
// hooks, expansion, post hooks, cleanup, VCS initialization. The first
// failure stops the run; files already written are left in place.
func Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()

	debug.DebugSection("[app] Generate workflow start")
	debug.DebugValue("[app] Run ID", runID)
	debug.DebugValue("[app] Template", opts.Template)
	debug.DebugValue("[app] Favorite", opts.Favorite)
	debug.DebugValue("[app] Destination", opts.DestinationRoot)

	if err := validateGenerateOptions(opts); err != nil {
		return nil, NewValidationError("invalid generate options", err)
	}

	env := opts.Env
	if env == nil {
		env = os.LookupEnv
	}

	cfg, err := loadAppConfig(opts.ConfigPath, env)
	if err != nil {
		return nil, err
	}
	source, err := selectTemplate(cfg, opts)
	if err != nil {
		return nil, err
	}

	silent := opts.Silent || cfg.Defaults.Silent || opts.Prompter == nil
	allowCommands := opts.AllowCommands || cfg.Defaults.AllowCommands

	destRoot := opts.DestinationRoot
	if destRoot == "" {
		destRoot = "."
	}
	destRoot, err = sandbox.ToAbsolute(destRoot)
	if err != nil {
		return nil, NewValidationError("invalid destination", err)
	}

	staging, err := os.MkdirTemp("", "projgen-")
	if err != nil {
		return nil, NewIOError("failed to create staging directory", err)
	}
	defer func() {
		if rerr := os.RemoveAll(staging); rerr != nil {
			logger.Warn().Err(rerr).Str("dir", staging).Msg("failed to remove staging directory")
		}
	}()

	// Fetch
	debug.DebugSection("[app] Fetching template")
	tpl, err := fetchTemplate(ctx, source, filepath.Join(staging, "template"))
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("provider", tpl.Ref.Provider).
		Str("location", tpl.Ref.Location).
		Str("favorite", source.favoriteName).
		Msg("template staged")

	sch, err := loadSchema(tpl.Config)
	if err != nil {
		return nil, err
	}

	initMode := opts.Init || source.favorite.Init || tpl.Config.Template.Init
	debug.DebugValue("[app] Init mode", initMode)

	rawName, err := projectNameInput(opts, initMode, destRoot, env, silent)
	if err != nil {
		return nil, err
	}

	store := vars.NewStore()
	builtins{
		ProjectName: rawName,
		Authors:     discoverAuthors(env, gitIdentity),
		OSArch:      osArch(),
		IsInit:      initMode,
		WithinVCS:   withinVCS(destRoot),
	}.insert(store)

	hc := &hooks.Context{
		Store:         store,
		TemplateRoot:  tpl.RootPath,
		WorkDir:       tpl.RootPath,
		AllowCommands: allowCommands,
		Silent:        silent,
		Prompter:      opts.Prompter,
		Stdout:        opts.Stdout,
	}

	// Init hooks
	debug.DebugSection("[app] Running init hooks")
	if err := hooks.Run(ctx, hooks.PhaseInit, tpl.Config.Hooks.Init, hc); err != nil {
		return nil, NewHookError("init hook failed", err)
	}

	projectName, err := finalizeProjectName(store, rawName, opts.Force)
	if err != nil {
		return nil, err
	}

	projectDir := destRoot
	if !initMode {
		projectDir = filepath.Join(destRoot, generator.SanitizeComponent(projectName))
		if _, err := os.Lstat(projectDir); err == nil && !opts.Overwrite {
			return nil, NewValidationError(fmt.Sprintf("target directory %s already exists", projectDir), nil)
		}
	}
	hc.Destination = projectDir
	debug.DebugValue("[app] Project directory", projectDir)

	// Resolution
	debug.DebugSection("[app] Resolving placeholders")
	sources, err := valueSources(opts, cfg, source.favorite, env)
	if err != nil {
		return nil, err
	}
	if err := resolver.Resolve(ctx, store, sch, sources, resolver.Options{Silent: silent, Prompter: opts.Prompter}); err != nil {
		return nil, NewResolutionError("failed to resolve placeholders", err)
	}
	logger.Debug().Strs("variables", store.Names()).Msg("placeholders resolved")
	debug.DebugJSON("[app] Resolved variables", store.Bindings())

	// Pre hooks
	debug.DebugSection("[app] Running pre hooks")
	if err := hooks.Run(ctx, hooks.PhasePre, tpl.Config.Hooks.Pre, hc); err != nil {
		return nil, NewHookError("pre hook failed", err)
	}

	// Expansion
	debug.DebugSection("[app] Expanding template")
	rules, err := generator.NewSelectionRules(tpl.Config.Template, sch, store.Bindings())
	if err != nil {
		return nil, NewExpansionError("failed to compile selection rules", err)
	}
	expansion, err := generator.Expand(ctx, generator.ExpandOptions{
		TemplateRoot:    tpl.RootPath,
		DestinationRoot: projectDir,
		Variables:       store,
		Rules:           rules,
		Renderer:        render.NewEngine(),
		Overwrite:       opts.Overwrite,
		ContinueOnError: opts.ContinueOnError,
		Housekeeping:    hookScripts(tpl.Config.Hooks),
	})
	if err != nil {
		return nil, NewExpansionError("failed to expand template", err)
	}
	for _, w := range expansion.Warnings {
		logger.Warn().Err(w).Msg("file written unrendered")
	}

	// Post hooks
	debug.DebugSection("[app] Running post hooks")
	hc.WorkDir = projectDir
	if err := hooks.Run(ctx, hooks.PhasePost, tpl.Config.Hooks.Post, hc); err != nil {
		return nil, NewHookError("post hook failed", err)
	}

	// Cleanup
	patterns, err := generator.LoadIgnoreFile(filepath.Join(tpl.RootPath, model.IgnoreFile))
	if err != nil {
		return nil, NewIOError("failed to read "+model.IgnoreFile, err)
	}
	patterns = append(append([]string(nil), tpl.Config.Template.Ignore...), patterns...)
	removed, err := generator.Cleanup(projectDir, expansion.Files, patterns)
	if err != nil {
		return nil, NewIOError("failed to remove ignored files", err)
	}

	result := &GenerateResult{
		RunID:       runID,
		ProjectDir:  projectDir,
		ProjectName: projectName,
		Template:    tpl.Ref,
		Expansion:   expansion,
		Removed:     removed,
	}

	// VCS
	vcs := selectVCS(opts.VCS, source.favorite.VCS, tpl.Config.Template.VCS, cfg.Defaults.VCS)
	switch {
	case vcs == vcsNone:
		debug.Debug("[app] VCS disabled")
	case withinVCS(projectDir):
		debug.Debug("[app] %s is already inside a repository, skipping VCS init", projectDir)
	default:
		if err := initRepository(projectDir); err != nil {
			return result, NewVCSError("failed to initialize git repository", err)
		}
		result.VCSInitialized = true
	}

	logWorkflowComplete(logger, result)
	return result, nil
}

func logWorkflowComplete(logger zerolog.Logger, result *GenerateResult) {
	logger.Info().
		Str("project", result.ProjectName).
		Str("dir", result.ProjectDir).
		Int("files", len(result.Expansion.Files)).
		Int("removed", len(result.Removed)).
		Bool("vcs", result.VCSInitialized).
		Msg("generation complete")
	debug.DebugSection("[app] Generate workflow completed")
}

// validateGenerateOptions validates GenerateOptions.
func validateGenerateOptions(opts GenerateOptions) error {
	if opts.Template == "" && opts.Favorite == "" {
		return fmt.Errorf("template location or favorite is required")
	}
	switch opts.VCS {
	case "", vcsGit, vcsNone:
	default:
		return fmt.Errorf("unsupported vcs %q, expected %q or %q", opts.VCS, vcsGit, vcsNone)
	}
	return nil
}

// loadAppConfig loads the app config. An explicit path must exist; the
// default location may be absent.
func loadAppConfig(path string, env func(string) (string, bool)) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path, explicit = env(config.EnvConfigPath)
	}
	if !explicit || path == "" {
		path = config.DefaultConfigPath()
		explicit = false
	}

	abs, err := sandbox.ToAbsolute(path)
	if err != nil {
		return nil, NewConfigError("invalid config path", err)
	}
	debug.DebugValue("[app] App config", abs)

	loader := config.NewLoader()
	var cfg *config.Config
	if explicit {
		cfg, err = loader.Load(abs)
	} else {
		cfg, err = loader.LoadOrDefault(abs)
	}
	if err != nil {
		return nil, NewConfigError("failed to load app config", err)
	}
	return cfg, nil
}

// templateSource is where the template comes from after favorites are applied.
type templateSource struct {
	favoriteName string
	favorite     config.Favorite
	location     string
	branch       string
	subfolder    string
}

func selectTemplate(cfg *config.Config, opts GenerateOptions) (templateSource, error) {
	src := templateSource{location: opts.Template}

	name := opts.Favorite
	if name == "" {
		if _, ok := cfg.Favorites[opts.Template]; ok {
			name = opts.Template
		}
	}
	if name != "" {
		fav, ok := cfg.Favorites[name]
		if !ok {
			return src, NewConfigError(fmt.Sprintf("favorite %q is not defined", name), nil)
		}
		debug.Debug("[app] Using favorite '%s'", name)
		src.favoriteName = name
		src.favorite = fav
		src.location = fav.Location()
		src.branch = fav.Branch
		src.subfolder = fav.Subfolder
	}

	if opts.Branch != "" {
		src.branch = opts.Branch
	}
	if opts.Subfolder != "" {
		src.subfolder = opts.Subfolder
	}
	return src, nil
}

func fetchTemplate(ctx context.Context, src templateSource, stagingDir string) (*model.Template, error) {
	prov, err := provider.NewProvider(src.location)
	if err != nil {
		return nil, NewTemplateFetchError("failed to create provider", err)
	}
	ref, err := prov.Resolve(src.location)
	if err != nil {
		return nil, NewTemplateFetchError("failed to resolve template", err)
	}
	ref.Branch = src.branch
	ref.Subfolder = src.subfolder

	tpl, err := prov.Fetch(ctx, ref, stagingDir)
	if err != nil {
		return nil, NewTemplateFetchError("failed to fetch template", err)
	}
	return tpl, nil
}

// loadSchema validates the template configuration and parses its placeholders.
func loadSchema(cfg *model.TemplateConfig) (*schema.Schema, error) {
	if err := config.ValidateTemplateConfig(cfg); err != nil {
		return nil, NewValidationError("invalid template configuration", err)
	}
	if err := config.CheckToolVersion(cfg.Template.ProjgenVersion, build.Version()); err != nil {
		return nil, NewValidationError("template requires a different projgen version", err)
	}
	sch, err := schema.Parse(cfg)
	if err != nil {
		return nil, NewValidationError("invalid placeholder definitions", err)
	}
	return sch, nil
}

// projectNameInput returns the name before hooks run: the given name, the
// destination directory in init mode, the environment, or a prompt.
func projectNameInput(opts GenerateOptions, initMode bool, destRoot string, env func(string) (string, bool), silent bool) (string, error) {
	if opts.ProjectName != "" {
		return opts.ProjectName, nil
	}
	if initMode {
		return filepath.Base(destRoot), nil
	}
	if name, ok := env(resolver.EnvKey(schema.ProjectName)); ok && name != "" {
		return name, nil
	}
	if silent {
		return "", NewResolutionError("project name was not set", &resolver.ResolutionError{
			Kind:        resolver.ErrMissingValue,
			Placeholder: schema.ProjectName,
			Detail:      "use --name",
		})
	}
	name, err := opts.Prompter.Input("Project Name", "")
	if err != nil {
		return "", NewResolutionError("failed to read project name", err)
	}
	if name == "" {
		return "", NewResolutionError("project name cannot be empty", &resolver.ResolutionError{
			Kind:        resolver.ErrInvalidValue,
			Placeholder: schema.ProjectName,
		})
	}
	return name, nil
}

// finalizeProjectName takes a name changed by an init hook, normalizes it
// and stores it together with its snake_case form.
func finalizeProjectName(store *vars.Store, rawName string, force bool) (string, error) {
	name := rawName
	if v, err := store.GetString(schema.ProjectName); err == nil && v != rawName {
		debug.Warn("project name changed by template from %q to %q", rawName, v)
		name = v
	}

	name = NormalizeProjectName(name, force)
	if err := store.Set(schema.ProjectName, model.StringValue(name)); err != nil {
		return "", NewHookError("invalid project name", err)
	}
	if err := store.Set(schema.ProjectNameSnake, model.StringValue(render.CaseFuncs["snake_case"](name))); err != nil {
		return "", NewHookError("invalid project name", err)
	}
	return name, nil
}

// valueSources collects the non-interactive value sources.
func valueSources(opts GenerateOptions, cfg *config.Config, fav config.Favorite, env func(string) (string, bool)) (resolver.Sources, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return resolver.Sources{}, NewIOError("failed to get working directory", err)
	}
	defines, err := ParseDefines(opts.Defines, cwd)
	if err != nil {
		return resolver.Sources{}, err
	}

	valuesPath := opts.ValuesFile
	if valuesPath == "" {
		valuesPath, _ = env(config.EnvValuesFile)
	}
	values, err := LoadValues(valuesPath)
	if err != nil {
		return resolver.Sources{}, err
	}

	return resolver.Sources{
		Defines:    defines,
		Env:        env,
		ValuesFile: values,
		Defaults:   mergeDefaults(cfg.Values, fav.Values),
	}, nil
}

// hookScripts lists every hook script so none is copied into the project.
func hookScripts(h model.HooksSection) []string {
	scripts := make([]string, 0, len(h.Init)+len(h.Pre)+len(h.Post))
	scripts = append(scripts, h.Init...)
	scripts = append(scripts, h.Pre...)
	return append(scripts, h.Post...)
}
