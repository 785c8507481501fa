// Package paths resolves the configured project root into an absolute,
// existing and writable directory.
package paths

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"git.home.luguber.info/inful/cjbootstrap/internal/confirm"
	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
)

// StripQuotes trims whitespace and removes one pair of surrounding quotes when
// the first and last characters are the same quote character.
func StripQuotes(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Join resolves raw against baseDir without touching the filesystem.
func Join(raw, baseDir string) string {
	p := StripQuotes(raw)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}

// Writable reports whether the current process may write into dir.
func Writable(dir string) bool {
	return unix.Access(dir, unix.W_OK) == nil
}

// Resolver turns a configured root into a usable directory, asking the
// confirmer before creating it or before continuing without write access.
type Resolver struct {
	confirmer confirm.Confirmer
	logger    *slog.Logger
	writable  func(string) bool
}

// NewResolver constructs a Resolver.
func NewResolver(c confirm.Confirmer, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{confirmer: c, logger: logger, writable: Writable}
}

// Resolve returns the absolute root for raw relative to baseDir.
func (r *Resolver) Resolve(ctx context.Context, raw, baseDir string) (string, error) {
	root := Join(raw, baseDir)
	if !filepath.IsAbs(root) {
		return "", errors.ConfigError("project root must be an absolute path after resolving").
			WithContext("path", root).Build()
	}

	info, err := os.Stat(root)
	switch {
	case stderrors.Is(err, os.ErrNotExist):
		if err := r.create(ctx, root); err != nil {
			return "", err
		}
	case err != nil:
		return "", errors.WrapError(err, errors.CategoryFileSystem, "cannot stat project root").
			WithContext("path", root).Build()
	case !info.IsDir():
		return "", errors.FileSystemError("project root is not a directory").
			WithContext("path", root).Build()
	}

	if !r.writable(root) {
		r.logger.Warn("Project root is not writable", logfields.Path(root))
		ok, err := r.confirmer.Confirm(ctx, "Project root "+root+" is not writable. Continue anyway?")
		if err != nil {
			return "", promptFailed(err, root)
		}
		if !ok {
			return "", errors.FileSystemError("project root is not writable").
				WithContext("path", root).Build()
		}
	}

	r.logger.Debug("Project root resolved", logfields.Path(root))
	return root, nil
}

func (r *Resolver) create(ctx context.Context, root string) error {
	ok, err := r.confirmer.Confirm(ctx, "Project root "+root+" does not exist. Create it?")
	if err != nil {
		return promptFailed(err, root)
	}
	if !ok {
		return errors.FileSystemError("aborted due to missing project root").
			WithContext("path", root).Build()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create project root").
			WithContext("path", root).Build()
	}
	r.logger.Info("Created project root", logfields.Path(root))
	return nil
}

func promptFailed(err error, root string) error {
	if stderrors.Is(err, context.Canceled) {
		return errors.WrapError(err, errors.CategoryCanceled, "prompt interrupted").
			WithContext("path", root).Build()
	}
	return errors.WrapError(err, errors.CategoryInternal, "confirmation prompt failed").
		WithContext("path", root).Build()
}
