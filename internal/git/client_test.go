package git

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cjbootstrap/internal/testutil"
)

func TestCloneSingleBranch(t *testing.T) {
	repo, src := testutil.SetupTestGitRepo(t, "dev", map[string]string{
		"build.py":  "#!/usr/bin/env python3\n",
		"README.md": "toolchain\n",
	})
	head, err := repo.Head()
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "cangjie")
	commit, err := NewClient(nil).Clone(t.Context(), CloneOptions{URL: src, Branch: "dev", Dir: dst})
	require.NoError(t, err)
	assert.Equal(t, head.Hash().String(), commit)

	testutil.NewFileAssertions(t, dst).
		AssertFileExists("build.py").
		AssertFileContains("README.md", "toolchain")
}

func TestCloneMissingBranch(t *testing.T) {
	_, src := testutil.SetupTestGitRepo(t, "dev", map[string]string{"a.txt": "a"})

	_, err := NewClient(nil).Clone(t.Context(), CloneOptions{URL: src, Branch: "nope", Dir: filepath.Join(t.TempDir(), "x")})
	require.Error(t, err)
	var bnf *BranchNotFoundError
	assert.True(t, stderrors.As(err, &bnf), "got %T: %v", err, err)
}

func TestCloneCanceled(t *testing.T) {
	_, src := testutil.SetupTestGitRepo(t, "dev", map[string]string{"a.txt": "a"})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewClient(nil).Clone(ctx, CloneOptions{URL: src, Branch: "dev", Dir: filepath.Join(t.TempDir(), "x")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestClassifyCloneError(t *testing.T) {
	tests := []struct {
		msg    string
		target any
	}{
		{"authentication required", new(*AuthError)},
		{"repository not found", new(*NotFoundError)},
		{"couldn't find remote ref refs/heads/x", new(*BranchNotFoundError)},
		{"unsupported protocol scheme", new(*UnsupportedProtocolError)},
		{"429 too many requests", new(*RateLimitError)},
		{"dial tcp: i/o timeout", new(*NetworkTimeoutError)},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := classifyCloneError("https://example.com/r.git", "main", stderrors.New(tt.msg))
			assert.True(t, stderrors.As(err, tt.target), "got %T", err)
		})
	}

	err := classifyCloneError("u", "b", stderrors.New("something odd"))
	assert.Contains(t, err.Error(), "failed to clone repository u")
}

func TestAuthMethod(t *testing.T) {
	m, err := (*Auth)(nil).method()
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = (&Auth{Type: "token", Token: "t"}).method()
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = (&Auth{Type: "token"}).method()
	require.Error(t, err)

	_, err = (&Auth{Type: "basic", Username: "u"}).method()
	require.Error(t, err)

	_, err = (&Auth{Type: "kerberos"}).method()
	require.Error(t, err)
}
