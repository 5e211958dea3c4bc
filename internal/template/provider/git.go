package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/template/model"
)

// removeAttempts bounds retries of the .git removal.
const removeAttempts = 5

// GitProvider implements Provider for git repositories.
// Clones are shallow and single-branch; credentials come from the
// environment only and submodules are not fetched.
type GitProvider struct {
	// Depth is the clone depth. Zero clones the full history.
	Depth int
}

// NewGitProvider creates a git provider making shallow clones.
func NewGitProvider() *GitProvider {
	return &GitProvider{Depth: 1}
}

// Name returns the provider name.
func (p *GitProvider) Name() string {
	return "git"
}

// Resolve expands location into a clone URL.
func (p *GitProvider) Resolve(location string) (model.TemplateRef, error) {
	cloneURL, ok := ExpandGitURL(location)
	if !ok {
		return model.TemplateRef{}, NewInvalidURLError(p.Name(), location, fmt.Errorf("not a git URL"))
	}
	return model.TemplateRef{Provider: p.Name(), Location: cloneURL}, nil
}

// Fetch clones ref into stagingDir and removes the clone's .git directory.
// ref.Branch names a branch or, failing that, a tag.
func (p *GitProvider) Fetch(ctx context.Context, ref model.TemplateRef, stagingDir string) (*model.Template, error) {
	debug.Debug("[git] Cloning %s (branch: %q) into %s", ref.Location, ref.Branch, stagingDir)

	if ref.Provider != p.Name() {
		return nil, NewInvalidURLError(p.Name(), ref.Location,
			fmt.Errorf("invalid provider: expected 'git', got '%s'", ref.Provider))
	}

	if err := p.clone(ctx, ref, stagingDir); err != nil {
		return nil, err
	}
	if err := removeGitDir(ctx, stagingDir); err != nil {
		return nil, NewFetchError(p.Name(), ref.Location, err)
	}

	return stage(p.Name(), ref, stagingDir)
}

func (p *GitProvider) clone(ctx context.Context, ref model.TemplateRef, dir string) error {
	var refs []plumbing.ReferenceName
	if ref.Branch != "" {
		refs = []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(ref.Branch),
			plumbing.NewTagReferenceName(ref.Branch),
		}
	} else {
		refs = []plumbing.ReferenceName{""}
	}

	var err error
	for _, name := range refs {
		_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:           ref.Location,
			ReferenceName: name,
			SingleBranch:  true,
			Depth:         p.Depth,
			Tags:          git.NoTags,
		})
		if err == nil {
			return nil
		}
		debug.Debug("[git] Clone of %s at %q failed: %v", ref.Location, name, err)
		if !errors.Is(err, plumbing.ErrReferenceNotFound) && !isNoMatchingRef(err) {
			break
		}
		if rerr := resetDir(dir); rerr != nil {
			return NewFetchError(p.Name(), ref.Location, rerr)
		}
	}

	switch {
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return NewNotFoundError(p.Name(), ref.Location)
	case errors.Is(err, transport.ErrAuthenticationRequired), errors.Is(err, transport.ErrAuthorizationFailed):
		return NewAuthError(p.Name(), ref.Location)
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError(p.Name(), ref.Location)
	default:
		return NewFetchError(p.Name(), ref.Location, err)
	}
}

// isNoMatchingRef reports the error go-git returns when a single-branch
// clone asks for a reference the remote does not advertise.
func isNoMatchingRef(err error) bool {
	var noMatch git.NoMatchingRefSpecError
	return errors.As(err, &noMatch)
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// removeGitDir deletes the clone's metadata directory, retrying with
// exponential backoff while the filesystem refuses.
func removeGitDir(ctx context.Context, dir string) error {
	gitDir := filepath.Join(dir, model.VCSDir)
	b := backoff.NewExponentialBackOff(backoff.WithInitialInterval(50 * time.Millisecond))
	policy := backoff.WithContext(backoff.WithMaxRetries(b, removeAttempts-1), ctx)

	return backoff.RetryNotify(func() error {
		return os.RemoveAll(gitDir)
	}, policy, func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Str("dir", gitDir).Msg("failed to remove git metadata")
	})
}
