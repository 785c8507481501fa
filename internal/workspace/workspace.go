package workspace

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
)

// Exists reports whether anything is present at path. Errors other than
// "does not exist" are returned so callers do not mistake EACCES for absence.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// IsDir reports whether path exists and is a directory (following symlinks).
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info.IsDir(), nil
	case stderrors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Recreate removes dir and everything below it, then creates it empty.
func Recreate(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	slog.Debug("Recreated directory", logfields.Dir(dir))
	return nil
}

// CopyTree merges the contents of src into dst. Directories are created as
// needed, existing files are overwritten, symlinks are recreated as links and
// file modes and modification times are preserved.
func CopyTree(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !srcInfo.IsDir() {
		return CopyFile(src, dst)
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			if err := copySymlink(srcPath, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			if err := CopyTree(srcPath, dstPath); err != nil {
				return err
			}
		default:
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	// Directory mtimes change while children are written; restore last.
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
}

// CopyFile copies a single regular file, preserving mode and modification time.
func CopyFile(src, dst string) error {
	// #nosec G304 -- src comes from the operator supplied overlay tree
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", src)
	}

	// A read-only destination from an earlier copy would make O_TRUNC fail.
	if err := os.Remove(dst); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return err
	}

	// #nosec G304 -- dst is below the toolchain directory
	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()|0o200)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	return os.Symlink(target, dst)
}
