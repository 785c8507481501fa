package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// FileAssertions provides utilities for asserting file system state in tests.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper rooted at baseDir.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{
		t:       t,
		baseDir: baseDir,
	}
}

// AssertFileExists validates that a regular file exists.
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if stat, err := os.Stat(fullPath); err != nil {
		fa.t.Errorf("Expected file to exist: %s", fullPath)
	} else if stat.IsDir() {
		fa.t.Errorf("Expected %s to be a file, but it's a directory", fullPath)
	}
	return fa
}

// AssertNotExists validates that nothing exists at the path.
func (fa *FileAssertions) AssertNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Lstat(fullPath); err == nil {
		fa.t.Errorf("Expected %s not to exist", fullPath)
	}
	return fa
}

// AssertDirExists validates that a directory exists.
func (fa *FileAssertions) AssertDirExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if stat, err := os.Stat(fullPath); os.IsNotExist(err) {
		fa.t.Errorf("Expected directory to exist: %s", fullPath)
	} else if err == nil && !stat.IsDir() {
		fa.t.Errorf("Expected %s to be a directory, but it's a file", fullPath)
	}
	return fa
}

// AssertDirEmpty validates that a directory exists and has no entries.
func (fa *FileAssertions) AssertDirEmpty(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		fa.t.Errorf("Failed to read directory %s: %v", fullPath, err)
		return fa
	}
	if len(entries) != 0 {
		fa.t.Errorf("Expected %s to be empty, found %d entries", fullPath, len(entries))
	}
	return fa
}

// AssertFileContains validates that a file contains expected content.
func (fa *FileAssertions) AssertFileContains(relativePath, expectedContent string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)

	// #nosec G304 - test helper, paths are controlled by test code
	content, err := os.ReadFile(fullPath)
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", fullPath, err)
		return fa
	}

	if !strings.Contains(string(content), expectedContent) {
		fa.t.Errorf("Expected file %s to contain %q\nActual content:\n%s",
			relativePath, expectedContent, string(content))
	}
	return fa
}

// AssertMode validates the permission bits of a path.
func (fa *FileAssertions) AssertMode(relativePath string, want os.FileMode) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	stat, err := os.Stat(fullPath)
	if err != nil {
		fa.t.Errorf("Failed to stat %s: %v", fullPath, err)
		return fa
	}
	if got := stat.Mode().Perm(); got != want {
		fa.t.Errorf("Expected %s to have mode %v, got %v", fullPath, want, got)
	}
	return fa
}

// AssertModTime validates the modification time of a path to the second.
func (fa *FileAssertions) AssertModTime(relativePath string, want time.Time) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	stat, err := os.Stat(fullPath)
	if err != nil {
		fa.t.Errorf("Failed to stat %s: %v", fullPath, err)
		return fa
	}
	if !stat.ModTime().Truncate(time.Second).Equal(want.Truncate(time.Second)) {
		fa.t.Errorf("Expected %s to have mtime %v, got %v", fullPath, want, stat.ModTime())
	}
	return fa
}

// WriteFile creates a file (and its parents) below baseDir.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
