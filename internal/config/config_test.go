package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
)

const minimalConfig = "project:\n" +
	"  root: \"..\"\n" +
	"toolchain:\n" +
	"  repo: https://example.com/cangjie.git\n" +
	"  branch: dev\n"

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeConfig(t, dir, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, "..", cfg.Project.Root)
	assert.Equal(t, "cangjie", cfg.Paths.ToolchainDir)
	assert.Equal(t, "build.py", cfg.Paths.ToolchainBuildScript)
	assert.Equal(t, filepath.Join("output", "envsetup.sh"), cfg.Paths.EnvSetupScript)
	assert.Equal(t, filepath.Join("cangjie", "output"), cfg.Paths.ToolchainOutputDir)
	assert.Equal(t, "build", cfg.Paths.BuildDir)
	assert.Equal(t, CloneBackendExec, cfg.Toolchain.CloneBackend)
	assert.Equal(t, "native", cfg.Build.Target)
	assert.Equal(t, 32, cfg.Target.Jobs)
	assert.Equal(t, []string{"--strip-all"}, cfg.Target.StripArgs)
	assert.Equal(t, StripFailureFatal, cfg.Target.StripFailure)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestLoadMissingFileIsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("CJB_TEST_BRANCH", "release-1.0")
	dir := t.TempDir()
	content := strings.Replace(minimalConfig, "branch: dev", "branch: ${CJB_TEST_BRANCH}", 1)

	cfg, err := Load(writeConfig(t, dir, content))
	require.NoError(t, err)
	assert.Equal(t, "release-1.0", cfg.Toolchain.Branch)
}

func TestLoadReadsDotEnvNextToConfig(t *testing.T) {
	const key = "CJB_TEST_DOTENV_REPO"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=https://mirror.example.com/cj.git\n"), 0o600))
	content := strings.Replace(minimalConfig, "https://example.com/cangjie.git", "${"+key+"}", 1)

	cfg, err := Load(writeConfig(t, dir, content))
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/cj.git", cfg.Toolchain.Repo)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader(minimalConfig + "bogus: true\n"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing root", "toolchain:\n  repo: r\n  branch: b\n"},
		{"missing repo", "project:\n  root: .\ntoolchain:\n  branch: b\n"},
		{"blank branch", "project:\n  root: .\ntoolchain:\n  repo: r\n  branch: \"  \"\n"},
		{"negative jobs", minimalConfig + "target:\n  jobs: -1\n"},
		{"absolute build dir", minimalConfig + "paths:\n  build_dir: /tmp/build\n"},
		{"bad backend", "project:\n  root: .\ntoolchain:\n  repo: r\n  branch: b\n  clone_backend: svn\n"},
		{"bad strip policy", minimalConfig + "target:\n  strip_failure: ignore\n"},
		{"bad log format", minimalConfig + "logging:\n  format: xml\n"},
		{"auth without go-git", minimalConfig + "  auth:\n    type: token\n    token: x\n"},
		{"bad auth type", "project:\n  root: .\ntoolchain:\n  repo: r\n  branch: b\n  clone_backend: go-git\n  auth:\n    type: kerberos\n"},
		{"negative depth", minimalConfig + "  depth: -1\n"},
		{"negative keep_runs", minimalConfig + "journal:\n  keep_runs: -3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig), "got %v", err)
		})
	}
}

func TestParseNormalizesEnums(t *testing.T) {
	content := "project:\n  root: .\n" +
		"toolchain:\n  repo: r\n  branch: b\n  clone_backend: GO_GIT\n" +
		"target:\n  strip_failure: \" Warn \"\n" +
		"logging:\n  level: DEBUG\n  format: JSON\n"
	cfg, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, CloneBackendGoGit, cfg.Toolchain.CloneBackend)
	assert.Equal(t, StripFailureWarn, cfg.Target.StripFailure)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
}

func TestParseLogFormat(t *testing.T) {
	f, err := ParseLogFormat("Json")
	require.NoError(t, err)
	assert.Equal(t, LogFormatJSON, f)

	_, err = ParseLogFormat("yaml")
	require.Error(t, err)
}

func TestResolveAnchorsPathsAtRoot(t *testing.T) {
	cfg, err := Parse(strings.NewReader(minimalConfig + "build:\n  no_tests: true\n  target: aarch64\n"))
	require.NoError(t, err)

	root := filepath.Join(string(filepath.Separator), "work", "proj")
	bc := cfg.Resolve(root + string(filepath.Separator))

	assert.Equal(t, root, bc.Root)
	assert.Equal(t, filepath.Join(root, "cangjie"), bc.ToolchainDir)
	assert.Equal(t, filepath.Join(root, "cangjie", "build.py"), bc.BuildScript)
	assert.Equal(t, filepath.Join(root, "cangjie", "output", "envsetup.sh"), bc.EnvSetupScript)
	assert.Equal(t, filepath.Join(root, "cangjie", "output"), bc.ToolchainOutputDir)
	assert.Equal(t, filepath.Join(root, "build"), bc.BuildDir)
	assert.Equal(t, "..", bc.TargetSourceDir)
	assert.Equal(t, filepath.Join(root, "build", "bin", "cjhead"), bc.Artifact)
	assert.Equal(t, filepath.Join(root, ".cjbootstrap.lock"), bc.LockPath())
	assert.True(t, bc.Options.NoTests)
	assert.Equal(t, "aarch64", bc.Options.Target)
}

func TestResolveTargetSourceDir(t *testing.T) {
	cfg, err := Parse(strings.NewReader(minimalConfig + "paths:\n  target_src_dir: src\n"))
	require.NoError(t, err)
	bc := cfg.Resolve("/work")
	assert.Equal(t, filepath.Join("/work", "src"), bc.TargetSourceDir)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "..", cfg.Project.Root)
	assert.Equal(t, "main", cfg.Toolchain.Branch)

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	require.NoError(t, Init(path, true))
}

func TestParseGoGitAuth(t *testing.T) {
	content := "project:\n  root: .\n" +
		"toolchain:\n  repo: r\n  branch: b\n  clone_backend: go-git\n  depth: 1\n" +
		"  auth:\n    type: Token\n    token: secret\n"
	cfg, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.NotNil(t, cfg.Toolchain.Auth)
	assert.Equal(t, AuthTypeToken, cfg.Toolchain.Auth.Type)

	bc := cfg.Resolve("/work")
	assert.Equal(t, 1, bc.CloneDepth)
	assert.Equal(t, "secret", bc.Auth.Token)
}
