package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandGitURL(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"https://github.com/owner/repo", "https://github.com/owner/repo", true},
		{"https://gitlab.com/group/repo.git", "https://gitlab.com/group/repo.git", true},
		{"ssh://git@host/owner/repo.git", "ssh://git@host/owner/repo.git", true},
		{"file:///srv/git/repo", "file:///srv/git/repo", true},
		{"git@github.com:owner/repo.git", "git@github.com:owner/repo.git", true},
		{"gh:owner/repo", "https://github.com/owner/repo", true},
		{"gl:owner/repo", "https://gitlab.com/owner/repo", true},
		{"bb:owner/repo", "https://bitbucket.org/owner/repo", true},
		{"sr:owner/repo", "https://git.sr.ht/~owner/repo", true},
		{"owner/repo", "https://github.com/owner/repo", true},
		{"gh:not-a-repo", "", false},
		{"https:///nohost", "", false},
		{"a/b/c", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ExpandGitURL(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsLocalPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		in   string
		want bool
	}{
		{dir, true},
		{"./template", true},
		{"../template", true},
		{"~/templates/web", true},
		{".", true},
		{"owner/repo", false},
		{"gh:owner/repo", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLocalPath(tt.in))
		})
	}
}

func TestRepoName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://github.com/owner/repo.git", "repo"},
		{"https://github.com/owner/repo/", "repo"},
		{"git@github.com:owner/repo.git", "repo"},
		{"https://git.sr.ht/~owner", "owner"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := RepoName(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := RepoName("/")
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	dir := t.TempDir()

	p, err := NewProvider(dir)
	require.NoError(t, err)
	assert.Equal(t, "local", p.Name())

	p, err = NewProvider("gh:owner/repo")
	require.NoError(t, err)
	assert.Equal(t, "git", p.Name())

	_, err = NewProvider("a/b/c")
	assert.Error(t, err)

	_, err = NewProvider("")
	assert.Error(t, err)
}
