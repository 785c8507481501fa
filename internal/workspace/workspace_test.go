package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/cjbootstrap/internal/testutil"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()

	ok, err := Exists(dir)
	if err != nil || !ok {
		t.Fatalf("Exists(%s) = %v, %v; want true", dir, ok, err)
	}

	ok, err = Exists(filepath.Join(dir, "missing"))
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v; want false", ok, err)
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	testutil.WriteFile(t, file, "x")

	if ok, _ := IsDir(dir); !ok {
		t.Errorf("IsDir(dir) = false")
	}
	if ok, _ := IsDir(file); ok {
		t.Errorf("IsDir(file) = true")
	}
	if ok, _ := IsDir(filepath.Join(dir, "nope")); ok {
		t.Errorf("IsDir(missing) = true")
	}
}

func TestRecreateRemovesPreviousContents(t *testing.T) {
	base := t.TempDir()
	build := filepath.Join(base, "build")
	testutil.WriteFile(t, filepath.Join(build, "CMakeCache.txt"), "stale")
	testutil.WriteFile(t, filepath.Join(build, "bin", "cjhead"), "old")

	if err := Recreate(build); err != nil {
		t.Fatalf("Recreate() failed: %v", err)
	}
	testutil.NewFileAssertions(t, base).AssertDirEmpty("build")

	// Missing directories are simply created.
	fresh := filepath.Join(base, "fresh")
	if err := Recreate(fresh); err != nil {
		t.Fatalf("Recreate() failed: %v", err)
	}
	testutil.NewFileAssertions(t, base).AssertDirEmpty("fresh")
}

func TestCopyTreePreservesModeAndTime(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	script := filepath.Join(src, "build.py")
	testutil.WriteFile(t, script, "#!/usr/bin/env python3\n")
	if err := os.Chmod(script, 0o755); err != nil {
		t.Fatal(err)
	}
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(script, stamp, stamp); err != nil {
		t.Fatal(err)
	}
	testutil.WriteFile(t, filepath.Join(src, "src", "lib", "core.cj"), "package core\n")
	if err := os.Symlink("build.py", filepath.Join(src, "link.py")); err != nil {
		t.Fatal(err)
	}

	if err := CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree() failed: %v", err)
	}

	testutil.NewFileAssertions(t, dst).
		AssertFileExists("build.py").
		AssertMode("build.py", 0o755).
		AssertModTime("build.py", stamp).
		AssertFileContains("src/lib/core.cj", "package core")

	target, err := os.Readlink(filepath.Join(dst, "link.py"))
	if err != nil || target != "build.py" {
		t.Errorf("symlink not preserved: %q, %v", target, err)
	}
}

func TestCopyTreeOverwritesExisting(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.WriteFile(t, filepath.Join(src, "a", "x.txt"), "new")
	testutil.WriteFile(t, filepath.Join(dst, "a", "x.txt"), "old")
	testutil.WriteFile(t, filepath.Join(dst, "a", "keep.txt"), "kept")

	if err := os.Chmod(filepath.Join(dst, "a", "x.txt"), 0o400); err != nil {
		t.Fatal(err)
	}

	if err := CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree() failed: %v", err)
	}
	testutil.NewFileAssertions(t, dst).
		AssertFileContains("a/x.txt", "new").
		AssertFileContains("a/keep.txt", "kept")
}
