package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacogips/projgen/internal/template/model"
)

func TestCheckTemplate(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		model.ConfigFile:    flagConfig + "\n[hooks]\npost = [\"hooks/post.star\", \"hooks/broken.star\"]\n",
		"hooks/post.star":   "print(variable.get(\"flag\"))\n",
		"hooks/broken.star": "undefined_call()\n",
		"ok.txt":            "{{ project-name|snake_case }} {% if flag %}on{% endif %}",
		"bad.txt":           "line one\n{% if flag %}unclosed",
		"{% bogus %}.txt":   "plain",
		"assets/logo.png":   "{% bogus %}",
		".git/HEAD":         "{% bogus %}",
	})

	result, err := CheckTemplate(context.Background(), CheckTemplateOptions{Template: tmpl})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Placeholders)
	assert.Equal(t, 1, result.Conditionals)
	assert.Equal(t, 3, result.FilesChecked)
	assert.Equal(t, 3, result.FilesWithErrors)

	files := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		files = append(files, e.File)
	}
	assert.ElementsMatch(t, []string{"hooks/broken.star", "bad.txt", "{% bogus %}.txt"}, files)
}

func TestCheckTemplate_InvalidConfig(t *testing.T) {
	tmpl := t.TempDir()
	writeTree(t, tmpl, map[string]string{
		model.ConfigFile: "[placeholders.count]\ntype = \"int\"\nprompt = \"How many?\"\n",
	})

	result, err := CheckTemplate(context.Background(), CheckTemplateOptions{Template: tmpl})
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, model.ConfigFile, result.Errors[0].File)
	assert.Zero(t, result.FilesChecked)
}

func TestCheckTemplate_MissingTemplate(t *testing.T) {
	_, err := CheckTemplate(context.Background(), CheckTemplateOptions{Template: filepath.Join(t.TempDir(), "absent")})
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, TemplateFetchFailed, appErr.Type)
}
