package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacogips/projgen/internal/template/model"
)

func TestEngineRender(t *testing.T) {
	vars := map[string]interface{}{
		"project-name": "demo",
		"crate_name":   "my_crate",
		"flag":         true,
		"off":          false,
		"html":         "<b>&</b>",
		"license":      model.StringValue("MIT"),
	}

	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{"plain text", "no markup { here }", "no markup { here }"},
		{"simple", "name: {{ crate_name }}", "name: my_crate"},
		{"hyphenated", "# {{ project-name }}\n", "# demo\n"},
		{"hyphenated with filter", "{{ project-name|upper }}", "DEMO"},
		{"hyphenated in tag", `{% if project-name == "demo" %}ok{% endif %}`, "ok"},
		{"string literal untouched", `{{ "project-name" }}`, "project-name"},
		{"missing renders empty", "[{{ nothing }}]", "[]"},
		{"bool prints lowercase", "{{ flag }}/{{ off }}", "true/false"},
		{"if bool", "{% if flag %}yes{% else %}no{% endif %}", "yes"},
		{"if not bool", "{% if not off %}yes{% endif %}", "yes"},
		{"equals true", "{% if flag == true %}yes{% else %}no{% endif %}", "yes"},
		{"equals false", "{% if off == false %}yes{% else %}no{% endif %}", "yes"},
		{"not equal false", "{% if flag != false %}yes{% else %}no{% endif %}", "yes"},
		{"false is not true", "{% if off == true %}yes{% else %}no{% endif %}", "no"},
		{"hyphenated bool compare", `{% if project-name == "demo" and flag == true %}ok{% endif %}`, "ok"},
		{"literal prints lowercase", "{{ true }}", "true"},
		{"no autoescape", "{{ html }}", "<b>&</b>"},
		{"model value", "{{ license }}", "MIT"},
		{"comment", "a{# hidden #}b", "ab"},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render(tt.tpl, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngineRenderCaseFilters(t *testing.T) {
	e := NewEngine()
	vars := map[string]interface{}{"name": "my-project"}

	tests := []struct {
		filter string
		want   string
	}{
		{"kebab_case", "my-project"},
		{"snake_case", "my_project"},
		{"pascal_case", "MyProject"},
		{"upper_camel_case", "MyProject"},
		{"lower_camel_case", "myProject"},
		{"shouty_snake_case", "MY_PROJECT"},
		{"shouty_kebab_case", "MY-PROJECT"},
		{"title_case", "My Project"},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := e.Render("{{ name|"+tt.filter+" }}", vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngineRenderErrors(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name string
		tpl  string
	}{
		{"unknown tag", "line\n{% bogus %}"},
		{"unknown filter", "{{ name|no_such_filter }}"},
		{"banned include", `{% include "/etc/passwd" %}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Render(tt.tpl, map[string]interface{}{"name": "x"})
			require.Error(t, err)
			var renderErr *RenderError
			assert.True(t, errors.As(err, &renderErr))
		})
	}
}

func TestRewriteNames(t *testing.T) {
	names := []string{"project-name", "os-arch"}

	tests := []struct {
		tpl  string
		want string
	}{
		{"project-name {{ project-name }}", "project-name {{ _h_project_h_name }}"},
		{"{% if os-arch %}{{ 'os-arch' }}{% endif %}", "{% if _h_os_h_arch %}{{ 'os-arch' }}{% endif %}"},
		{"{{ project-name-suffix }}", "{{ project-name-suffix }}"},
		{"{{ project-name", "{{ project-name"},
		{"{% if flag == true %}", "{% if flag == __projgen_true %}"},
		{"{{ x.false }} {{ 'true' }}", "{{ x.false }} {{ 'true' }}"},
		{"true outside tags", "true outside tags"},
	}

	for _, tt := range tests {
		t.Run(tt.tpl, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteNames(tt.tpl, names))
		})
	}
}

func TestCaseNames(t *testing.T) {
	names := CaseNames()
	assert.Len(t, names, len(CaseFuncs))
	assert.Equal(t, "kebab_case", names[0])
}

func TestEngineCheck(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name    string
		tpl     string
		wantErr bool
	}{
		{"plain text", "no markup", false},
		{"hyphenated name", "{{ project-name|kebab_case }}", false},
		{"conditional", "{% if flag %}on{% endif %}", false},
		{"unknown tag", "{% bogus %}", true},
		{"unclosed block", "{% if flag %}on", true},
		{"unknown filter", "{{ name|no_such_filter }}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Check(tt.tpl, []string{"project-name", "flag", "name"})
			if tt.wantErr {
				var renderErr *RenderError
				assert.ErrorAs(t, err, &renderErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
