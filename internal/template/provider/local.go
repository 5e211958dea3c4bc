package provider

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/sandbox"
	"github.com/tacogips/projgen/internal/template/model"
)

// LocalProvider implements Provider for local filesystem templates.
type LocalProvider struct {
	// BaseDir is the base directory for resolving relative paths.
	// If empty, uses current working directory.
	BaseDir string
}

// NewLocalProvider creates a new local filesystem provider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// NewLocalProviderWithBase creates a new local provider with a base directory.
func NewLocalProviderWithBase(baseDir string) *LocalProvider {
	return &LocalProvider{
		BaseDir: baseDir,
	}
}

// Name returns the provider name.
func (p *LocalProvider) Name() string {
	return "local"
}

// Resolve converts a local path to a TemplateRef.
func (p *LocalProvider) Resolve(path string) (model.TemplateRef, error) {
	debug.Debug("[local] Resolving path: %s", path)
	if path == "" {
		return model.TemplateRef{}, NewInvalidURLError(p.Name(), path, fmt.Errorf("path cannot be empty"))
	}

	if p.BaseDir != "" && !filepath.IsAbs(path) && path[0] != '~' {
		path = filepath.Join(p.BaseDir, path)
	}
	absPath, err := sandbox.ToAbsolute(path)
	if err != nil {
		return model.TemplateRef{}, NewInvalidURLError(p.Name(), path, err)
	}
	debug.Debug("[local] Absolute path: %s", absPath)

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.TemplateRef{}, NewNotFoundError(p.Name(), path)
		}
		return model.TemplateRef{}, NewFetchError(p.Name(), path, err)
	}
	if !info.IsDir() {
		return model.TemplateRef{}, NewInvalidTemplateError(p.Name(), path, "path must be a directory", nil)
	}

	return model.TemplateRef{
		Provider: p.Name(),
		Location: absPath,
	}, nil
}

// Fetch copies the template directory into stagingDir.
func (p *LocalProvider) Fetch(ctx context.Context, ref model.TemplateRef, stagingDir string) (*model.Template, error) {
	debug.Debug("[local] Starting fetch for: %s", ref.Location)

	if ref.Provider != p.Name() {
		return nil, NewInvalidURLError(p.Name(), ref.Location,
			fmt.Errorf("invalid provider: expected 'local', got '%s'", ref.Provider))
	}

	n, err := copyTree(ctx, ref.Location, stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(p.Name(), ref.Location)
		}
		return nil, NewFetchError(p.Name(), ref.Location, err)
	}
	debug.Debug("[local] Copied %d files into %s", n, stagingDir)

	return stage(p.Name(), ref, stagingDir)
}

// copyTree copies src into dst, skipping version-control metadata.
// Symlinks are recreated, not followed. It returns the number of entries copied.
func copyTree(ctx context.Context, src, dst string) (int, error) {
	count := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if d.Name() == model.VCSDir && rel != "." {
				return filepath.SkipDir
			}
			return os.MkdirAll(target, 0755)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if err := os.Symlink(link, target); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := copyFile(path, target, info.Mode().Perm()); err != nil {
				return err
			}
		default:
			debug.Debug("[local] Skipping non-regular file: %s", path)
			return nil
		}
		count++
		return nil
	})
	return count, err
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
