package generator

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tacogips/projgen/internal/debug"
	"github.com/tacogips/projgen/internal/template/render"
)

// binaryExtensions are never rendered regardless of content.
var binaryExtensions = map[string]bool{
	// Images
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".ico": true, ".webp": true,
	// Archives
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true, ".rar": true, ".7z": true, ".jar": true,
	// Executables
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true, ".wasm": true,
	// Media
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wav": true,
	// Documents
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	// Fonts
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true,
}

// IsBinary reports whether a file must be copied without rendering: a known
// binary extension, a NUL byte in the first 512 bytes, or invalid UTF-8.
func IsBinary(rel string, content []byte) bool {
	if binaryExtensions[strings.ToLower(filepath.Ext(rel))] {
		return true
	}
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.IndexByte(head, 0) != -1 {
		return true
	}
	return !utf8.Valid(content)
}

// processContent renders content unless the file is binary or has no markup.
func processContent(rel string, content []byte, r render.Renderer, vars map[string]interface{}) ([]byte, error) {
	if IsBinary(rel, content) {
		debug.Debug("[generator] Skipping template processing for binary file: %s (size: %d bytes)", rel, len(content))
		return content, nil
	}
	if !render.HasMarkup(string(content)) {
		return content, nil
	}

	out, err := r.Render(string(content), vars)
	if err != nil {
		return nil, err
	}
	debug.Debug("[generator] Rendered %s (input: %d bytes, output: %d bytes)", rel, len(content), len(out))
	return []byte(out), nil
}
