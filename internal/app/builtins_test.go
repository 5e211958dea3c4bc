package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProjectName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		force bool
		want  string
	}{
		{"snake case kept", "lock_firmware", false, "lock_firmware"},
		{"kebab case kept", "lock-firmware", false, "lock-firmware"},
		{"camel case converted", "lockFirmware", false, "lock-firmware"},
		{"pascal case converted", "LockFirmware", false, "lock-firmware"},
		{"force keeps camel case", "lockFirmware", true, "lockFirmware"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProjectName(tt.input, tt.force))
		})
	}
}

func TestDiscoverAuthors(t *testing.T) {
	noIdentity := func() (string, string) { return "", "" }
	withIdentity := func() (string, string) { return "Git User", "git@example.com" }

	tests := []struct {
		name     string
		env      map[string]string
		identity func() (string, string)
		want     string
	}{
		{
			name:     "environment first",
			env:      map[string]string{"PROJGEN_AUTHOR": "Env User", "PROJGEN_EMAIL": "env@example.com", "USER": "login"},
			identity: withIdentity,
			want:     "Env User <env@example.com>",
		},
		{
			name:     "git identity",
			env:      map[string]string{"USER": "login"},
			identity: withIdentity,
			want:     "Git User <git@example.com>",
		},
		{
			name:     "login name without email",
			env:      map[string]string{"USER": "login"},
			identity: noIdentity,
			want:     "login",
		},
		{
			name:     "git author variables",
			env:      map[string]string{"GIT_AUTHOR_NAME": " Author ", "GIT_AUTHOR_EMAIL": "a@example.com"},
			identity: noIdentity,
			want:     "Author <a@example.com>",
		},
		{
			name:     "nothing known",
			identity: noIdentity,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, discoverAuthors(envOf(tt.env), tt.identity))
		})
	}
}

func TestSelectVCS(t *testing.T) {
	assert.Equal(t, "git", selectVCS())
	assert.Equal(t, "git", selectVCS("", ""))
	assert.Equal(t, "none", selectVCS("", "none", "git"))
	assert.Equal(t, "git", selectVCS("git", "none"))
}
