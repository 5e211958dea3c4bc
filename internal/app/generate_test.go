package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacogips/projgen/internal/template/model"
	"github.com/tacogips/projgen/internal/template/resolver"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

func envOf(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// generateOpts returns silent options with an empty app config and no VCS.
func generateOpts(t *testing.T, template, dest string) GenerateOptions {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0644))
	return GenerateOptions{
		Template:        template,
		DestinationRoot: dest,
		ProjectName:     "demo",
		ConfigPath:      cfgPath,
		VCS:             "none",
		Silent:          true,
		Env:             envOf(nil),
	}
}

const flagConfig = `
[placeholders.flag]
type = "bool"
prompt = "Enable flag?"
default = false

[conditional.'!flag']
ignore = ["secret.txt"]
`

func TestGenerate_ConditionalIgnore(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		model.ConfigFile: flagConfig,
		"secret.txt":     "secret of {{ project-name }}",
		"main.txt":       "flag={{ flag }}",
	})

	tests := []struct {
		name       string
		define     string
		wantSecret bool
	}{
		{"flag false omits secret", "flag=false", false},
		{"flag true keeps secret", "flag=true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := t.TempDir()
			opts := generateOpts(t, tmpl, dest)
			opts.Defines = []string{tt.define}

			result, err := Generate(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dest, "demo"), result.ProjectDir)

			secret := filepath.Join(result.ProjectDir, "secret.txt")
			if tt.wantSecret {
				assert.Equal(t, "secret of demo", readFile(t, secret))
			} else {
				assert.NoFileExists(t, secret)
			}
			assert.FileExists(t, filepath.Join(result.ProjectDir, "main.txt"))
			assert.NoFileExists(t, filepath.Join(result.ProjectDir, model.ConfigFile))
		})
	}
}

func TestGenerate_Override(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		"README.md":      "plain",
		"README.md.tmpl": "override for {{ project-name }}",
	})

	result, err := Generate(context.Background(), generateOpts(t, tmpl, t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, []string{"README.md"}, result.Expansion.Files)
	assert.Equal(t, "override for demo", readFile(t, filepath.Join(result.ProjectDir, "README.md")))
	assert.NoFileExists(t, filepath.Join(result.ProjectDir, "README.md.tmpl"))
}

func TestGenerate_PreHookRenamesProject(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		model.ConfigFile:        "[hooks]\npre = [\"hooks/pre.star\"]\n",
		"hooks/pre.star":        "variable.set(\"project-name\", \"bar\")\n",
		"name.txt":              "{{ project-name }}",
		"{{ project-name }}.md": "x",
	})
	dest := t.TempDir()

	opts := generateOpts(t, tmpl, dest)
	opts.ProjectName = "foo"
	result, err := Generate(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "foo"), result.ProjectDir)
	assert.Equal(t, "bar", readFile(t, filepath.Join(result.ProjectDir, "name.txt")))
	assert.FileExists(t, filepath.Join(result.ProjectDir, "bar.md"))
	assert.NoDirExists(t, filepath.Join(result.ProjectDir, "hooks"))
	assert.NoDirExists(t, filepath.Join(dest, "bar"))
}

func TestGenerate_InitHookRenamesProject(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		model.ConfigFile: "[hooks]\ninit = [\"init.star\"]\n",
		"init.star":      "variable.set(\"project-name\", \"renamedProject\")\n",
		"name.txt":       "{{ project-name }} {{ project_name }}",
	})
	dest := t.TempDir()

	result, err := Generate(context.Background(), generateOpts(t, tmpl, dest))
	require.NoError(t, err)

	assert.Equal(t, "renamed-project", result.ProjectName)
	assert.Equal(t, filepath.Join(dest, "renamed-project"), result.ProjectDir)
	assert.Equal(t, "renamed-project renamed_project", readFile(t, filepath.Join(result.ProjectDir, "name.txt")))
}

func TestGenerate_SilentMissingValue(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		model.ConfigFile: "[placeholders.license]\ntype = \"string\"\nprompt = \"License?\"\n",
		"LICENSE":        "{{ license }}",
	})
	dest := t.TempDir()

	_, err := Generate(context.Background(), generateOpts(t, tmpl, dest))
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ResolutionFailed, appErr.Type)

	var resErr *resolver.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "license", resErr.Placeholder)
	assert.True(t, errors.Is(err, resolver.ErrMissingValue))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_ValuePrecedence(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		model.ConfigFile: "[placeholders.license]\ntype = \"string\"\nprompt = \"License?\"\ndefault = \"BSD\"\n",
		"LICENSE":        "{{ license }}",
	})
	valuesFile := filepath.Join(t.TempDir(), "values.toml")
	require.NoError(t, os.WriteFile(valuesFile, []byte("[values]\nlicense = \"ISC\"\n"), 0644))

	tests := []struct {
		name    string
		defines []string
		env     map[string]string
		values  string
		want    string
	}{
		{"schema default", nil, nil, "", "BSD"},
		{"values file", nil, nil, valuesFile, "ISC"},
		{"env over values file", nil, map[string]string{"PROJGEN_VALUE_LICENSE": "Apache-2.0"}, valuesFile, "Apache-2.0"},
		{"define over env", []string{"license=MIT"}, map[string]string{"PROJGEN_VALUE_LICENSE": "Apache-2.0"}, valuesFile, "MIT"},
		{"values file from env", nil, map[string]string{"PROJGEN_TEMPLATE_VALUES_FILE": valuesFile}, "", "ISC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := generateOpts(t, tmpl, t.TempDir())
			opts.Defines = tt.defines
			opts.Env = envOf(tt.env)
			opts.ValuesFile = tt.values

			result, err := Generate(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, readFile(t, filepath.Join(result.ProjectDir, "LICENSE")))
		})
	}
}

func TestGenerate_Favorite(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		"go/" + model.ConfigFile: "[placeholders.license]\ntype = \"string\"\nprompt = \"License?\"\n",
		"go/LICENSE":             "{{ license }} by {{ owner }}",
	})

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[values]
license = "Apache-2.0"
owner = "someone"

[favorites.web]
description = "web skeleton"
path = "`+filepath.ToSlash(tmpl)+`"
subfolder = "go"
vcs = "none"

[favorites.web.values]
license = "MIT"
`), 0644))

	opts := generateOpts(t, "web", t.TempDir())
	opts.ConfigPath = cfgPath
	opts.VCS = ""

	result, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "MIT by someone", readFile(t, filepath.Join(result.ProjectDir, "LICENSE")))
	assert.False(t, result.VCSInitialized)
}

func TestGenerate_InitMode(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		"README.md": "{{ project-name }} init={{ is_init }}",
	})
	dest := filepath.Join(t.TempDir(), "my-app")
	require.NoError(t, os.Mkdir(dest, 0755))

	opts := generateOpts(t, tmpl, dest)
	opts.ProjectName = ""
	opts.Init = true

	result, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, dest, result.ProjectDir)
	assert.Equal(t, "my-app init=true", readFile(t, filepath.Join(dest, "README.md")))
}

func TestGenerate_Cleanup(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		model.ConfigFile: "[template]\nignore = [\"scratch.txt\"]\n",
		model.IgnoreFile: "*.log\n",
		"main.go":        "package main\n",
		"debug.log":      "noise",
		"scratch.txt":    "tmp",
	})

	result, err := Generate(context.Background(), generateOpts(t, tmpl, t.TempDir()))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"scratch.txt", "debug.log"}, result.Removed)
	assert.FileExists(t, filepath.Join(result.ProjectDir, "main.go"))
	assert.NoFileExists(t, filepath.Join(result.ProjectDir, "debug.log"))
	assert.NoFileExists(t, filepath.Join(result.ProjectDir, "scratch.txt"))
	assert.NoFileExists(t, filepath.Join(result.ProjectDir, model.IgnoreFile))
}

func TestGenerate_VCS(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{"main.go": "package main\n"})

	opts := generateOpts(t, tmpl, t.TempDir())
	opts.VCS = ""
	result, err := Generate(context.Background(), opts)
	require.NoError(t, err)
	if !result.VCSInitialized {
		t.Skip("temporary directory is inside a git work tree")
	}
	assert.DirExists(t, filepath.Join(result.ProjectDir, ".git"))
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		mutate   func(t *testing.T, opts *GenerateOptions)
		wantType AppErrorType
	}{
		{
			name:     "no template",
			mutate:   func(t *testing.T, opts *GenerateOptions) { opts.Template = "" },
			wantType: ValidationFailed,
		},
		{
			name:     "bad vcs",
			mutate:   func(t *testing.T, opts *GenerateOptions) { opts.VCS = "svn" },
			wantType: ValidationFailed,
		},
		{
			name: "missing template",
			mutate: func(t *testing.T, opts *GenerateOptions) {
				opts.Template = filepath.Join(t.TempDir(), "absent")
			},
			wantType: TemplateFetchFailed,
		},
		{
			name:     "version constraint",
			files:    map[string]string{model.ConfigFile: "[template]\nprojgen_version = \">=99.0.0\"\n"},
			wantType: ValidationFailed,
		},
		{
			name:     "reserved placeholder",
			files:    map[string]string{model.ConfigFile: "[placeholders.authors]\nprompt = \"Who?\"\n"},
			wantType: ValidationFailed,
		},
		{
			name:     "silent without project name",
			mutate:   func(t *testing.T, opts *GenerateOptions) { opts.ProjectName = "" },
			wantType: ResolutionFailed,
		},
		{
			name: "existing target directory",
			mutate: func(t *testing.T, opts *GenerateOptions) {
				require.NoError(t, os.Mkdir(filepath.Join(opts.DestinationRoot, "demo"), 0755))
			},
			wantType: ValidationFailed,
		},
		{
			name: "aborting hook",
			files: map[string]string{
				model.ConfigFile: "[hooks]\npre = [\"pre.star\"]\n",
				"pre.star":       "abort(\"not today\")\n",
			},
			wantType: HookFailed,
		},
		{
			name:     "invalid define",
			mutate:   func(t *testing.T, opts *GenerateOptions) { opts.Defines = []string{"=x"} },
			wantType: VariableLoadFailed,
		},
		{
			name:     "render failure",
			files:    map[string]string{"bad.txt": "{% bogus %}"},
			wantType: ExpansionFailed,
		},
		{
			name: "unknown favorite",
			mutate: func(t *testing.T, opts *GenerateOptions) {
				opts.Favorite = "nope"
			},
			wantType: ConfigFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := t.TempDir()
			files := tt.files
			if files == nil {
				files = map[string]string{"main.txt": "x"}
			}
			writeTree(t, tmpl, files)

			opts := generateOpts(t, tmpl, t.TempDir())
			if tt.mutate != nil {
				tt.mutate(t, &opts)
			}

			_, err := Generate(context.Background(), opts)
			require.Error(t, err)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantType, appErr.Type, "error: %v", err)
		})
	}
}

func TestListFavorites(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[favorites.web]
description = "web skeleton"
git = "https://example.com/web.git"
branch = "main"

[favorites.cli]
path = "/templates/cli"
`), 0644))

	favs, err := ListFavorites(cfgPath)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, FavoriteInfo{Name: "cli", Location: "/templates/cli"}, favs[0])
	assert.Equal(t, FavoriteInfo{
		Name:        "web",
		Description: "web skeleton",
		Location:    "https://example.com/web.git",
		Branch:      "main",
	}, favs[1])
}
