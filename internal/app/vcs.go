package app

import (
	"errors"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	vcsGit  = "git"
	vcsNone = "none"

	defaultBranch = "main"
)

// selectVCS returns the first non-empty choice, defaulting to git.
func selectVCS(choices ...string) string {
	for _, c := range choices {
		if c != "" {
			return c
		}
	}
	return vcsGit
}

// initRepository creates an empty git repository in dir. An existing
// repository is left untouched.
func initRepository(dir string) error {
	_, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(defaultBranch),
		},
	})
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		log.Debug().Str("dir", dir).Msg("repository already exists")
		return nil
	}
	return err
}
