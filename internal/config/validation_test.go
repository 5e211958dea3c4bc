package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacogips/projgen/internal/template/model"
)

func TestValidateTemplateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *model.TemplateConfig
		wantErr bool
		field   string
	}{
		{
			name: "empty config",
			cfg:  &model.TemplateConfig{},
		},
		{
			name: "include only",
			cfg: &model.TemplateConfig{Template: model.TemplateSection{
				Include: []string{"src/**"},
			}},
		},
		{
			name: "include and exclude",
			cfg: &model.TemplateConfig{Template: model.TemplateSection{
				Include: []string{"a"},
				Exclude: []string{"b"},
			}},
			wantErr: true,
			field:   "template",
		},
		{
			name: "bad vcs",
			cfg: &model.TemplateConfig{Template: model.TemplateSection{
				VCS: "svn",
			}},
			wantErr: true,
			field:   "template.vcs",
		},
		{
			name: "bad version requirement",
			cfg: &model.TemplateConfig{Template: model.TemplateSection{
				ProjgenVersion: "not a constraint!",
			}},
			wantErr: true,
			field:   "template.projgen_version",
		},
		{
			name: "empty hook path",
			cfg: &model.TemplateConfig{Hooks: model.HooksSection{
				Pre: []string{" "},
			}},
			wantErr: true,
			field:   "hooks.pre",
		},
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateConfig(tt.cfg)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, ConfigValidationFailed, cfgErr.Type)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestCheckToolVersion(t *testing.T) {
	tests := []struct {
		name        string
		requirement string
		version     string
		wantErr     bool
	}{
		{"no requirement", "", "0.1.0", false},
		{"satisfied", ">=0.1.0", "0.2.3", false},
		{"unsatisfied", ">=1.0.0", "0.9.0", true},
		{"dev build skips check", ">=1.0.0", "dev", false},
		{"invalid requirement", "~>>1", "1.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckToolVersion(tt.requirement, tt.version)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
