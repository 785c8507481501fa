package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// SetupTestGitRepo initializes a temporary repository with one commit on
// branch containing files. Returns the repository and its directory, which is
// usable as a clone URL.
func SetupTestGitRepo(t *testing.T, branch string, files map[string]string) (*git.Repository, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to initialize git repo: %v", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}

	for name, content := range files {
		WriteFile(t, filepath.Join(dir, name), content)
		if _, err := w.Add(name); err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
	}

	hash, err := w.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), hash)
	if err := repo.Storer.SetReference(ref); err != nil {
		t.Fatalf("failed to create branch %s: %v", branch, err)
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, ref.Name())); err != nil {
		t.Fatalf("failed to point HEAD at %s: %v", branch, err)
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		t.Fatalf("repository not initialized: %v", err)
	}
	return repo, dir
}
