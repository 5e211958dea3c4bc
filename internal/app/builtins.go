package app

import (
	"fmt"
	"runtime"
	"strings"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/template/model"
	"github.com/tacogips/projgen/internal/template/render"
	"github.com/tacogips/projgen/internal/template/schema"
	"github.com/tacogips/projgen/internal/template/vars"
)

// builtins are the values the engine injects before any placeholder is
// resolved.
type builtins struct {
	ProjectName string
	Authors     string
	OSArch      string
	IsInit      bool
	WithinVCS   bool
}

func (b builtins) insert(store *vars.Store) {
	store.Insert(schema.ProjectName, model.StringValue(b.ProjectName))
	store.Insert(schema.ProjectNameSnake, model.StringValue(render.CaseFuncs["snake_case"](b.ProjectName)))
	store.Insert(schema.Authors, model.StringValue(b.Authors))
	store.Insert(schema.OSArch, model.StringValue(b.OSArch))
	store.Insert(schema.IsInit, model.BoolValue(b.IsInit))
	store.Insert(schema.WithinVCS, model.BoolValue(b.WithinVCS))
}

// NormalizeProjectName returns the name used for the project. Names already
// in snake_case or kebab-case are kept; anything else is kebab-cased unless
// force is set.
func NormalizeProjectName(name string, force bool) string {
	if force {
		return name
	}
	if render.CaseFuncs["snake_case"](name) == name {
		return name
	}
	kebab := render.CaseFuncs["kebab_case"](name)
	if kebab != name {
		log.Warn().Str("from", name).Str("to", kebab).Msg("renaming project")
	}
	return kebab
}

// osArch returns the host platform as GOOS-GOARCH.
func osArch() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// withinVCS reports whether dir is inside a git work tree.
func withinVCS(dir string) bool {
	_, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// gitIdentity returns user.name and user.email from the global git config.
// Missing or unreadable configuration yields empty strings.
func gitIdentity() (string, string) {
	cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope)
	if err != nil {
		debug.Debug("[app] Global git config not readable: %v", err)
		return "", ""
	}
	return cfg.User.Name, cfg.User.Email
}

// discoverAuthors builds the authors value as "name <email>" or "name".
// Environment variables take precedence over the git identity, which takes
// precedence over the login name.
func discoverAuthors(lookup func(string) (string, bool), identity func() (string, string)) string {
	first := func(keys ...string) string {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	gitName, gitEmail := identity()

	name := first("PROJGEN_AUTHOR", "GIT_AUTHOR_NAME", "GIT_COMMITTER_NAME")
	if name == "" {
		name = strings.TrimSpace(gitName)
	}
	if name == "" {
		name = first("USER", "USERNAME", "NAME")
	}

	email := first("PROJGEN_EMAIL", "GIT_AUTHOR_EMAIL", "GIT_COMMITTER_EMAIL")
	if email == "" {
		email = strings.TrimSpace(gitEmail)
	}
	if email == "" {
		email = first("EMAIL")
	}

	switch {
	case name == "":
		log.Warn().Msg("could not determine the current user, authors is empty")
		return ""
	case email == "":
		return name
	default:
		return fmt.Sprintf("%s <%s>", name, email)
	}
}
