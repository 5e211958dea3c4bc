package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacogips/projgen/internal/app"
	"github.com/tacogips/projgen/internal/build"
)

// execute runs the root command with args and returns its output. Flag
// values are reset first because the commands are package globals.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, cmd := range append(rootCmd.Commands(), rootCmd) {
		resetFlags(cmd)
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--" + FlagNoColor}, args...))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func emptyConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(p, nil, 0644))
	return p
}

const licenseConfig = `
[placeholders.license]
type = "string"
prompt = "License?"
choices = ["MIT", "ISC"]
default = "MIT"
`

func TestGenerateCommand(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		"projgen.toml": licenseConfig,
		"README.md":    "{{ project-name }} under {{ license }}",
	})
	dest := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		want    string
		wantDir string
	}{
		{
			name:    "default value",
			args:    []string{"--name", "demo"},
			want:    "demo under MIT",
			wantDir: "demo",
		},
		{
			name:    "define overrides default",
			args:    []string{"--name", "other", "-d", "license=ISC"},
			want:    "other under ISC",
			wantDir: "other",
		},
		{
			name:    "alias and camel case name",
			args:    []string{"--name", "camelName"},
			want:    "camel-name under MIT",
			wantDir: "camel-name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"generate", tmpl,
				"--silent", "--vcs", "none",
				"--destination", dest,
				"--config", emptyConfig(t),
			}, tt.args...)
			if tt.name == "alias and camel case name" {
				args[0] = "gen"
			}

			out, _, err := execute(t, args...)
			require.NoError(t, err)

			data, err := os.ReadFile(filepath.Join(dest, tt.wantDir, "README.md"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
			assert.Contains(t, out, "Project ready at:")
		})
	}
}

func TestGenerateCommand_Errors(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		"projgen.toml": licenseConfig,
		"README.md":    "{{ license }}",
	})

	tests := []struct {
		name     string
		args     []string
		wantType app.AppErrorType
		wantMsg  string
	}{
		{
			name:    "no template",
			args:    []string{"generate", "--silent"},
			wantMsg: "--favorite is required",
		},
		{
			name:    "bad vcs",
			args:    []string{"generate", tmpl, "--vcs", "svn"},
			wantMsg: "must be git or none",
		},
		{
			name:     "value outside choices",
			args:     []string{"generate", tmpl, "--silent", "--name", "demo", "-d", "license=GPL"},
			wantType: app.ResolutionFailed,
		},
		{
			name:     "missing name in silent mode",
			args:     []string{"generate", tmpl, "--silent"},
			wantType: app.ResolutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--destination", t.TempDir(), "--config", emptyConfig(t))
			_, _, err := execute(t, args...)
			require.Error(t, err)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
				return
			}
			var appErr *app.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
		})
	}
}

func TestCheckCommand(t *testing.T) {
	t.Run("valid template", func(t *testing.T) {
		tmpl := t.TempDir()
		writeTree(t, tmpl, map[string]string{
			"projgen.toml": licenseConfig,
			"LICENSE":      "{{ license }}",
		})

		out, _, err := execute(t, "check", tmpl)
		require.NoError(t, err)
		assert.Contains(t, out, "Placeholders: 1, conditionals: 0, files checked: 1")
		assert.Contains(t, out, "Template is valid")
	})

	t.Run("broken file", func(t *testing.T) {
		tmpl := t.TempDir()
		writeTree(t, tmpl, map[string]string{
			"projgen.toml": licenseConfig,
			"LICENSE":      "{% if license %}unclosed",
		})

		_, errOut, err := execute(t, "check", tmpl)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of the template's files have errors")
		assert.Contains(t, errOut, "LICENSE")
	})
}

func TestFavoritesCommand(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[favorites.web]
description = "web skeleton"
git = "https://example.com/templates.git"
subfolder = "web"

[favorites.cli]
path = "/srv/templates/cli"
`), 0644))

	out, _, err := execute(t, "favorites", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "cli  /srv/templates/cli")
	assert.Contains(t, out, "web  https://example.com/templates.git subfolder=web")
	assert.Contains(t, out, "    web skeleton")
	assert.Less(t, bytes.Index([]byte(out), []byte("cli")), bytes.Index([]byte(out), []byte("web")))

	out, _, err = execute(t, "favorites", "--config", emptyConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "No favorites configured.")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, build.Version()+"\n", out)

	out, _, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, build.Version(), info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestValidateVCS(t *testing.T) {
	for _, v := range []string{"", "git", "none"} {
		assert.NoError(t, ValidateVCS(v), v)
	}
	assert.Error(t, ValidateVCS("hg"))
}

func TestErrorHint(t *testing.T) {
	assert.Contains(t, errorHint(app.ResolutionFailed), "--define")
	assert.Contains(t, errorHint(app.ConfigFailed), "PROJGEN_CONFIG")
	assert.Empty(t, errorHint(app.IOFailed))
}
