// Package overlay replaces the toolchain checkout with an operator supplied
// source tree.
package overlay

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
	"git.home.luguber.info/inful/cjbootstrap/internal/workspace"
)

// Apply wipes toolchainDir and repopulates it from sourceDir. The source is
// validated before anything is deleted.
func Apply(sourceDir, toolchainDir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := filepath.Abs(sourceDir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve kernel path").
			WithContext("path", sourceDir).Build()
	}
	ok, err := workspace.IsDir(src)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot access kernel path").
			WithContext("path", src).Build()
	}
	if !ok {
		return errors.FileSystemError("kernel path does not exist or is not a directory").
			WithContext("path", src).Build()
	}
	if err := checkDisjoint(src, toolchainDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot read kernel path").
			WithContext("path", src).Build()
	}

	logger.Info("Replacing toolchain sources", logfields.Path(src), logfields.Dir(toolchainDir))
	if err := workspace.Recreate(toolchainDir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to recreate toolchain directory").
			WithContext("path", toolchainDir).Build()
	}

	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(toolchainDir, entry.Name())
		if err := workspace.CopyTree(from, to); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to copy kernel sources").
				WithContext("path", from).Build()
		}
		logger.Debug("Copied", logfields.Path(from))
	}

	logger.Info("Toolchain sources replaced", logfields.Dir(toolchainDir), slog.Int("entries", len(entries)))
	return nil
}

// checkDisjoint rejects a kernel path that is, contains, or sits inside the
// toolchain directory: the wipe would delete the source, or the copy would
// recurse into its own output.
func checkDisjoint(src, toolchainDir string) error {
	realSrc, err := filepath.EvalSymlinks(src)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve kernel path").
			WithContext("path", src).Build()
	}
	realDst, err := realPath(toolchainDir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve toolchain directory").
			WithContext("path", toolchainDir).Build()
	}
	if within(realSrc, realDst) || within(realDst, realSrc) {
		return errors.FileSystemError("kernel path and toolchain directory overlap").
			WithContext("path", realSrc).
			WithContext("dir", realDst).Build()
	}
	return nil
}

// realPath resolves symlinks in the longest existing prefix of p, so a
// toolchain directory that does not exist yet still compares correctly.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	var rest []string
	for cur := abs; ; {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}

// within reports whether p is base or lies below it.
func within(p, base string) bool {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
