package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cjbootstrap/internal/eventstore"
	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/runner"
	"git.home.luguber.info/inful/cjbootstrap/internal/testutil"
)

func runCLI(t *testing.T, configure func(*Global), args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, configure)
	return code, stdout.String(), stderr.String()
}

func TestVersionFlag(t *testing.T) {
	code, out, _ := runCLI(t, nil, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "cjbootstrap")
}

func TestPromptFlagsAreExclusive(t *testing.T) {
	code, _, stderr := runCLI(t, nil, "--yes", "--no-input")
	assert.Equal(t, errors.ExitUsage, code)
	assert.Contains(t, stderr, "can't be used together")
}

func TestMissingConfigExitsWithConfigCode(t *testing.T) {
	code, _, stderr := runCLI(t, nil, "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, errors.ExitConfig, code)
	assert.Contains(t, stderr, "configuration file not found")
}

func TestConfigPathFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "from-env.yaml")
	t.Setenv("CJBOOTSTRAP_CONFIG", path)

	code, _, stderr := runCLI(t, nil)
	assert.Equal(t, errors.ExitConfig, code)
	assert.Contains(t, stderr, "from-env.yaml")
}

func TestInitWritesExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")

	code, out, _ := runCLI(t, nil, "--init", "-c", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, path)
	testutil.NewFileAssertions(t, filepath.Dir(path)).AssertFileContains("config.yaml", "toolchain:")

	code, _, _ = runCLI(t, nil, "--init", "-c", path)
	assert.Equal(t, errors.ExitConfig, code)

	code, _, _ = runCLI(t, nil, "--init", "--force", "-c", path)
	assert.Equal(t, 0, code)
}

func TestFullRun(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "project")
	require.NoError(t, os.MkdirAll(root, 0o750))
	cfgPath := filepath.Join(dir, "config", "config.yaml")
	testutil.WriteFile(t, cfgPath, "project:\n  root: ../project\n"+
		"toolchain:\n  repo: https://example.com/cangjie.git\n  branch: main\n"+
		"build:\n  target: native\n"+
		"journal:\n  path: state/journal.db\n  keep_runs: 1\n")
	metricsPath := filepath.Join(dir, "metrics", "cjbootstrap.prom")

	fake := testutil.NewFakeRunner()
	fake.On("make").Do(func(c runner.Command) error {
		testutil.WriteFile(t, filepath.Join(c.Dir, "bin", "cjhead"), "ELF")
		return nil
	})
	configure := func(g *Global) {
		g.Runner = fake
		g.Confirmer = &testutil.Confirmer{}
	}

	code, out, stderr := runCLI(t, configure, "-c", cfgPath, "--metrics-file", metricsPath, "--log-format", "json")
	require.Equal(t, 0, code, stderr)

	assert.Equal(t, 1, fake.Count("git", "clone"))
	assert.Equal(t, 1, fake.Count("strip"))
	assert.Contains(t, out, "build_target")
	assert.Contains(t, stderr, `"msg":"Bootstrap finished"`)

	testutil.NewFileAssertions(t, dir).
		AssertFileContains("metrics/cjbootstrap.prom", "cjbootstrap_run_outcomes_total").
		AssertFileExists("config/state/journal.db").
		AssertFileExists("project/.cjbootstrap.lock")

	code, _, stderr = runCLI(t, configure, "-c", cfgPath)
	require.Equal(t, 0, code, stderr)

	store, err := eventstore.NewSQLiteStore(filepath.Join(dir, "config", "state", "journal.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ids, err := store.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestVerboseMirrorsCommandOutput(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cmd := runner.Command{Name: "sh", Args: []string{"-c", "echo from-child"}}

	var quiet bytes.Buffer
	_, err := (&CLI{}).commandRunner(&quiet, logger).Run(t.Context(), cmd)
	require.NoError(t, err)
	assert.Empty(t, quiet.String())

	var verbose bytes.Buffer
	_, err = (&CLI{Verbose: true}).commandRunner(&verbose, logger).Run(t.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, "from-child\n", verbose.String())
}

func TestFailedRunReturnsCategoryExitCode(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	testutil.WriteFile(t, cfgPath, "project:\n  root: .\n"+
		"toolchain:\n  repo: https://example.com/cangjie.git\n  branch: main\n")

	fake := testutil.NewFakeRunner()
	fake.On("git", "clone").Exit(128)
	configure := func(g *Global) {
		g.Runner = fake
		g.Confirmer = &testutil.Confirmer{}
	}

	code, _, stderr := runCLI(t, configure, "-c", cfgPath)
	assert.Equal(t, errors.ExitCommand, code)
	assert.Contains(t, stderr, "Error:")
	assert.Equal(t, 0, fake.Count("cmake"))
}
