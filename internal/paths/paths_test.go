package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/testutil"
)

func TestStripQuotes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"/opt/proj"`, "/opt/proj"},
		{`'../proj'`, "../proj"},
		{`  "spaced"  `, "spaced"},
		{`"mismatch'`, `"mismatch'`},
		{`"`, `"`},
		{`""`, ""},
		{`plain`, "plain"},
		{`"inner"quote"`, `inner"quote`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripQuotes(tt.in))
		})
	}
}

func TestJoinMatchesJoinThenClean(t *testing.T) {
	base := "/srv/app/build"
	for _, raw := range []string{"..", "../..", "./x/../y", "a/b/", "'..'", `"sub dir"`} {
		want := filepath.Clean(filepath.Join(base, StripQuotes(raw)))
		assert.Equal(t, want, Join(raw, base), raw)
	}
}

func TestJoinKeepsAbsoluteRoot(t *testing.T) {
	assert.Equal(t, "/opt/proj", Join("/opt/proj", "/elsewhere"))
	assert.Equal(t, "/opt/proj", Join(`"/opt//proj/"`, "/elsewhere"))
}

func TestResolveExistingWritableRootUnchanged(t *testing.T) {
	root := t.TempDir()
	c := &testutil.Confirmer{}
	got, err := NewResolver(c, nil).Resolve(t.Context(), root, "/unused")
	require.NoError(t, err)
	assert.Equal(t, root, got)
	assert.Zero(t, c.Asked())
}

func TestResolveRelativeRoot(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "proj"), 0o750))

	got, err := NewResolver(&testutil.Confirmer{}, nil).Resolve(t.Context(), `"proj/./"`, base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "proj"), got)
}

func TestResolveCreatesMissingRootAfterConfirmation(t *testing.T) {
	base := t.TempDir()
	c := &testutil.Confirmer{Answers: []bool{true}}

	got, err := NewResolver(c, nil).Resolve(t.Context(), "a/b", base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "a", "b"), got)
	testutil.NewFileAssertions(t, base).AssertDirExists("a/b")
	assert.Equal(t, 1, c.Asked())
}

func TestResolveDeclinedCreationIsFilesystemError(t *testing.T) {
	base := t.TempDir()
	_, err := NewResolver(&testutil.Confirmer{}, nil).Resolve(t.Context(), "missing", base)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
	testutil.NewFileAssertions(t, base).AssertNotExists("missing")
}

func TestResolveRootIsFile(t *testing.T) {
	base := t.TempDir()
	testutil.WriteFile(t, filepath.Join(base, "file"), "x")
	_, err := NewResolver(&testutil.Confirmer{}, nil).Resolve(t.Context(), "file", base)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestResolveNotWritable(t *testing.T) {
	root := t.TempDir()

	declined := &testutil.Confirmer{}
	r := NewResolver(declined, nil)
	r.writable = func(string) bool { return false }
	_, err := r.Resolve(t.Context(), root, "/")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
	assert.Equal(t, 1, declined.Asked())

	accepted := &testutil.Confirmer{Default: true}
	r = NewResolver(accepted, nil)
	r.writable = func(string) bool { return false }
	got, err := r.Resolve(t.Context(), root, "/")
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestWritable(t *testing.T) {
	assert.True(t, Writable(t.TempDir()))
	assert.False(t, Writable(filepath.Join(t.TempDir(), "missing")))
}
