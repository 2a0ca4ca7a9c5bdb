package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/KeMezz/taskdown/internal/logging"
	"github.com/KeMezz/taskdown/pkg/types"
)

// URLPrefix is prepended to the base name of every saved asset.
const URLPrefix = "asset://localhost/"

// Layout of the assets directory inside a vault.
const (
	MetaDir   = ".taskdown"
	AssetsDir = "assets"
)

const (
	dirPermissions  = 0755
	filePermissions = 0644
)

// Writer stores binary assets inside a vault without ever writing outside
// its assets directory.
//
// Saves are not synchronized with each other: concurrent saves of the same
// name race and the last write wins.
type Writer struct {
	log *logging.Logger
}

// NewWriter creates a Writer. A nil logger discards output.
func NewWriter(log *logging.Logger) *Writer {
	if log == nil {
		log = logging.Discard()
	}
	return &Writer{log: log.With("component", "assets")}
}

// Dir returns the assets directory of the vault at vaultRoot.
func Dir(vaultRoot string) string {
	return filepath.Join(vaultRoot, MetaDir, AssetsDir)
}

// Save writes data to <vaultRoot>/.taskdown/assets/<base name of filename>
// and returns its asset:// locator. Any directory part of filename is
// discarded. Existing files are overwritten.
//
// Both the assets directory and the parent of the target are resolved
// (symlinks included) and the target must lie inside the resolved assets
// directory; otherwise Save fails with types.ErrPathTraversal and writes
// nothing.
func (w *Writer) Save(filename string, data []byte, vaultRoot string) (string, error) {
	base, err := BaseName(filename)
	if err != nil {
		return "", err
	}

	assetsDir := Dir(vaultRoot)
	if err := os.MkdirAll(assetsDir, dirPermissions); err != nil {
		return "", fmt.Errorf("%w: creating assets directory: %w", types.ErrIO, err)
	}

	canonicalDir, err := canonicalize(assetsDir)
	if err != nil {
		return "", fmt.Errorf("%w: resolving assets directory: %w", types.ErrIO, err)
	}

	target := filepath.Join(assetsDir, base)

	// Resolve the parent again; symlinks may have changed since the last step
	canonicalParent, err := canonicalize(filepath.Dir(target))
	if err != nil {
		return "", fmt.Errorf("%w: resolving asset path: %w", types.ErrIO, err)
	}
	canonicalFile := filepath.Join(canonicalParent, base)

	if !Contains(canonicalDir, canonicalFile) {
		w.log.Warn("asset path escapes vault", "filename", filename, "resolved", canonicalFile)
		return "", fmt.Errorf("%w: %s", types.ErrPathTraversal, filename)
	}
	if err := checkExistingLink(canonicalDir, canonicalFile); err != nil {
		w.log.Warn("asset path escapes vault", "filename", filename, "error", err)
		return "", err
	}

	if err := os.WriteFile(target, data, filePermissions); err != nil {
		return "", fmt.Errorf("%w: writing asset: %w", types.ErrIO, err)
	}

	w.log.Debug("asset saved", "name", base, "bytes", len(data))
	return URLPrefix + base, nil
}

// BaseName returns the final path element of filename. It fails with
// types.ErrInvalidFilename when filename has no usable base name ("", "/",
// "..") or is not valid UTF-8.
func BaseName(filename string) (string, error) {
	if !utf8.ValidString(filename) {
		return "", fmt.Errorf("%w: not valid UTF-8", types.ErrInvalidFilename)
	}

	base := filepath.Base(filepath.Clean(filename))
	switch base {
	case ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("%w: %q has no base name", types.ErrInvalidFilename, filename)
	}
	return base, nil
}

// Contains reports whether path lies inside dir, comparing whole path
// components: "/a/b2" is not inside "/a/b". Both paths should already be
// canonical.
func Contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// canonicalize returns the absolute path of p with every symlink resolved.
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// checkExistingLink rejects a symlink at path whose target is outside dir or
// cannot be resolved. Writing through such a link would leave the vault.
func checkExistingLink(dir, path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: inspecting asset path: %w", types.ErrIO, err)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return nil
	}

	resolved, err := canonicalize(path)
	if err != nil || !Contains(dir, resolved) {
		return fmt.Errorf("%w: %s is a link leaving the assets directory", types.ErrPathTraversal, filepath.Base(path))
	}
	return nil
}
