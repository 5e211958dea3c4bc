// Package provider stages a template into a private working directory.
//
// A template is either a local directory, which is copied, or a git
// repository, which is cloned. Either way the caller receives a staged tree
// it may modify freely, with the version-control metadata removed.
package provider

import (
	"context"
	"os"

	"github.com/tacogips/projgen/internal/config"
	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/sandbox"
	"github.com/tacogips/projgen/internal/template/model"
)

var log = debug.Logger("provider")

// Provider abstracts template source locations (local filesystem, git).
type Provider interface {
	// Resolve converts a location string to a TemplateRef.
	Resolve(location string) (model.TemplateRef, error)

	// Fetch stages the template referenced by ref into stagingDir and
	// loads its configuration. stagingDir must exist and be empty.
	Fetch(ctx context.Context, ref model.TemplateRef, stagingDir string) (*model.Template, error)

	// Name returns the provider name (e.g., "git", "local").
	Name() string
}

// stage selects ref.Subfolder inside the staged tree and loads the
// template configuration found there.
func stage(provider string, ref model.TemplateRef, stagedRoot string) (*model.Template, error) {
	root := stagedRoot
	if ref.Subfolder != "" {
		sub, err := sandbox.ToSandboxedAbsolute(stagedRoot, ref.Subfolder)
		if err != nil {
			return nil, NewInvalidTemplateError(provider, ref.Location, "subfolder escapes the template", err)
		}
		root = sub
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewInvalidTemplateError(provider, ref.Location, "subfolder '"+ref.Subfolder+"' not found in template", err)
		}
		return nil, NewFetchError(provider, ref.Location, err)
	}
	if !info.IsDir() {
		return nil, NewInvalidTemplateError(provider, ref.Location, "template root must be a directory", nil)
	}

	cfg, err := config.LoadTemplateConfig(root)
	if err != nil {
		return nil, NewInvalidTemplateError(provider, ref.Location, "failed to read "+model.ConfigFile, err)
	}

	log.Debug().Str("provider", provider).Str("root", root).Msg("template staged")
	return &model.Template{Ref: ref, Config: cfg, RootPath: root}, nil
}
