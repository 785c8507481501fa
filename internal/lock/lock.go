// Package lock enforces one bootstrap run per project root with an advisory flock.
package lock

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
)

// Lock is a held exclusive lock. Release it when the run ends.
type Lock struct {
	f    *os.File
	path string
}

// Acquire takes a non-blocking exclusive lock on path, creating the file if
// needed. A lock held by another process yields a lock-category error.
func Acquire(path string) (*Lock, error) {
	// #nosec G304 -- lock path is derived from the resolved project root
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open lock file").
			WithContext("path", path).Build()
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		holder := readHolder(f)
		_ = f.Close()
		if stderrors.Is(err, unix.EWOULDBLOCK) {
			b := errors.LockError("another bootstrap run holds the project lock").
				WithContext("path", path)
			if holder != "" {
				b = b.WithContext("pid", holder)
			}
			return nil, b.Build()
		}
		return nil, errors.WrapError(err, errors.CategoryLock, "failed to acquire project lock").
			WithContext("path", path).Build()
	}

	// Record our pid for diagnostics; the flock is what actually excludes.
	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{f: f, path: path}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. The file is left in place so that a concurrent
// Acquire never locks an unlinked inode.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	defer func() { l.f = nil }()
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		_ = l.f.Close()
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	return l.f.Close()
}

func readHolder(f *os.File) string {
	buf := make([]byte, 32)
	n, _ := f.ReadAt(buf, 0)
	return strings.TrimSpace(string(buf[:n]))
}
