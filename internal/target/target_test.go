package target

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cjbootstrap/internal/config"
	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/runner"
	"git.home.luguber.info/inful/cjbootstrap/internal/testutil"
)

func settings(root string) Settings {
	build := filepath.Join(root, "build")
	return Settings{
		BuildDir:     build,
		SourceDir:    "..",
		Generator:    "cmake",
		Compiler:     "make",
		Jobs:         32,
		Artifact:     filepath.Join(build, "bin", "cjhead"),
		Strip:        "strip",
		StripArgs:    []string{"--strip-all"},
		StripFailure: config.StripFailureFatal,
	}
}

// produceArtifact makes the fake compiler leave a binary behind.
func produceArtifact(t *testing.T, fake *testutil.FakeRunner, artifact string) {
	fake.On("make").Do(func(runner.Command) error {
		testutil.WriteFile(t, artifact, "\x7fELF")
		return nil
	})
}

func TestBuildTargetHappyPath(t *testing.T) {
	s := settings(t.TempDir())
	fake := testutil.NewFakeRunner()
	produceArtifact(t, fake, s.Artifact)

	res, err := NewBuilder(fake, s, nil).BuildTarget(t.Context())
	require.NoError(t, err)
	assert.True(t, res.Stripped)
	assert.Equal(t, s.Artifact, res.Artifact)

	assert.Equal(t, []string{
		"cmake ..",
		"make -j32",
		"strip --strip-all " + s.Artifact,
	}, fake.Lines())
	for _, c := range fake.Commands() {
		assert.Equal(t, s.BuildDir, c.Dir)
	}
}

func TestBuildTargetAlwaysStartsClean(t *testing.T) {
	s := settings(t.TempDir())
	fake := testutil.NewFakeRunner()
	produceArtifact(t, fake, s.Artifact)
	b := NewBuilder(fake, s, nil)

	for i := 0; i < 2; i++ {
		marker := filepath.Join(s.BuildDir, "marker")
		testutil.WriteFile(t, marker, "previous run")

		_, err := b.BuildTarget(t.Context())
		require.NoError(t, err)
		_, statErr := os.Stat(marker)
		assert.True(t, os.IsNotExist(statErr), "run %d: build dir not recreated", i)
	}
	assert.Equal(t, 2, fake.Count("cmake"))
	assert.Equal(t, 2, fake.Count("make"))
}

func TestBuildTargetMissingArtifact(t *testing.T) {
	s := settings(t.TempDir())
	fake := testutil.NewFakeRunner()

	_, err := NewBuilder(fake, s, nil).BuildTarget(t.Context())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryArtifact))
	assert.Equal(t, 0, fake.Count("strip"))
}

func TestBuildTargetGeneratorFailureStops(t *testing.T) {
	s := settings(t.TempDir())
	fake := testutil.NewFakeRunner()
	fake.On("cmake").Exit(1)

	_, err := NewBuilder(fake, s, nil).BuildTarget(t.Context())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryCommand))
	assert.Equal(t, []string{"cmake .."}, fake.Lines())
}

func TestBuildTargetCustomJobsAndSource(t *testing.T) {
	s := settings(t.TempDir())
	s.Jobs = 4
	s.SourceDir = "/src/cjhead"
	fake := testutil.NewFakeRunner()
	produceArtifact(t, fake, s.Artifact)

	_, err := NewBuilder(fake, s, nil).BuildTarget(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "cmake /src/cjhead", fake.Lines()[0])
	assert.Equal(t, "make -j4", fake.Lines()[1])
}

func TestBuildTargetStripFailurePolicy(t *testing.T) {
	t.Run("fatal", func(t *testing.T) {
		s := settings(t.TempDir())
		fake := testutil.NewFakeRunner()
		produceArtifact(t, fake, s.Artifact)
		fake.On("strip").Exit(1)

		res, err := NewBuilder(fake, s, nil).BuildTarget(t.Context())
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, errors.HasSeverity(err, errors.SeverityFatal))
	})

	t.Run("warn", func(t *testing.T) {
		s := settings(t.TempDir())
		s.StripFailure = config.StripFailureWarn
		fake := testutil.NewFakeRunner()
		produceArtifact(t, fake, s.Artifact)
		fake.On("strip").Exit(1)

		res, err := NewBuilder(fake, s, nil).BuildTarget(t.Context())
		require.Error(t, err)
		require.NotNil(t, res)
		assert.False(t, res.Stripped)
		assert.True(t, errors.HasSeverity(err, errors.SeverityWarning))
		testutil.NewFileAssertions(t, s.BuildDir).AssertFileExists("bin/cjhead")
	})
}

func TestSettingsFrom(t *testing.T) {
	cfg := &config.BuildConfig{BuildDir: "/r/build", TargetSourceDir: "..", Generator: "cmake", Jobs: 8, Artifact: "/r/build/bin/cjhead"}
	s := SettingsFrom(cfg)
	assert.Equal(t, "/r/build", s.BuildDir)
	assert.Equal(t, 8, s.Jobs)
	assert.Equal(t, "/r/build/bin/cjhead", s.Artifact)
}
