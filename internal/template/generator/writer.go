package generator

import (
	"os"
	"path/filepath"

	"github.com/tacogips/projgen/internal/debug"
)

// writeFile writes content to path with the executable bits of mode kept.
// The content goes to a temporary file in the same directory which is then
// renamed over path, so a reader never sees a partial file at path.
func writeFile(path string, content []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := createDir(dir); err != nil {
		return err
	}

	perm := os.FileMode(0644)
	if mode&0111 != 0 {
		perm = 0755
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return newGeneratorError(GeneratorWriteFailed, "failed to create temporary file", path, err)
	}
	tempFile := f.Name()

	_, err = f.Write(content)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tempFile, perm)
	}
	if err != nil {
		_ = os.Remove(tempFile)
		return newGeneratorError(GeneratorWriteFailed, "failed to write file content", path, err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		_ = os.Remove(tempFile)
		return newGeneratorError(GeneratorWriteFailed, "failed to rename temporary file", path, err)
	}

	debug.Debug("[generator] File written: %s (size: %d bytes, mode: %o)", path, len(content), perm)
	return nil
}

// writeSymlink recreates a symbolic link, replacing whatever is at path.
func writeSymlink(path, target string) error {
	if err := createDir(filepath.Dir(path)); err != nil {
		return err
	}
	if _, err := os.Lstat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return newGeneratorError(GeneratorWriteFailed, "failed to replace existing file", path, err)
		}
	}
	if err := os.Symlink(target, path); err != nil {
		return newGeneratorError(GeneratorWriteFailed, "failed to create symlink", path, err)
	}
	debug.Debug("[generator] Symlink created: %s -> %s", path, target)
	return nil
}

// createDir creates a directory and any necessary parents with 0755.
func createDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return newGeneratorError(GeneratorWriteFailed, "failed to create directory", path, err)
	}
	return nil
}

// exists reports whether anything, including a dangling symlink, is at path.
func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
