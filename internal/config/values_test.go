package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadValuesFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    map[string]interface{}
	}{
		{
			name:    "toml",
			file:    "values.toml",
			content: "[values]\nlicense = \"MIT\"\nuse_ci = true\n",
			want:    map[string]interface{}{"license": "MIT", "use_ci": true},
		},
		{
			name:    "toml without extension",
			file:    "values",
			content: "[values]\nauthor = \"someone\"\n",
			want:    map[string]interface{}{"author": "someone"},
		},
		{
			name:    "yaml",
			file:    "values.yaml",
			content: "values:\n  license: Apache-2.0\n  use_ci: false\n",
			want:    map[string]interface{}{"license": "Apache-2.0", "use_ci": false},
		},
		{
			name:    "yml without values table",
			file:    "values.yml",
			content: "other: 1\n",
			want:    map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			got, err := LoadValuesFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadValuesFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		wantType ConfigErrorType
	}{
		{
			name:     "missing",
			path:     filepath.Join(dir, "nope.toml"),
			wantType: ConfigNotFound,
		},
		{
			name:     "unsupported extension",
			path:     writeFile(t, dir, "values.json", `{"values": {}}`),
			wantType: ConfigUnsupported,
		},
		{
			name:     "broken yaml",
			path:     writeFile(t, dir, "broken.yaml", "values: [unterminated\n"),
			wantType: ConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadValuesFile(tt.path)
			require.Error(t, err)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantType, cfgErr.Type)
		})
	}
}
