package config

import (
	"path/filepath"
	"slices"
)

// BuildConfig is the resolved view of a Config: every path is absolute and the
// values are fixed for the lifetime of a run.
type BuildConfig struct {
	Root string

	ToolchainDir       string
	BuildScript        string
	EnvSetupScript     string
	ToolchainOutputDir string

	// TargetSourceDir is the argument handed to the generator. It is ".." (the
	// parent of the build directory) unless paths.target_src_dir is configured.
	TargetSourceDir string
	BuildDir        string

	Repo         string
	Branch       string
	CloneBackend CloneBackend
	CloneDepth   int
	Auth         *AuthConfig

	Options BuildFlags

	Generator    string
	Compiler     string
	Jobs         int
	Artifact     string
	Strip        string
	StripArgs    []string
	StripFailure StripFailurePolicy
}

// Resolve anchors the configured paths at root, which must already be absolute.
func (c *Config) Resolve(root string) *BuildConfig {
	root = filepath.Clean(root)
	toolchainDir := filepath.Join(root, c.Paths.ToolchainDir)
	buildDir := filepath.Join(root, c.Paths.BuildDir)

	src := ".."
	if c.Paths.TargetSourceDir != "" {
		src = c.Paths.TargetSourceDir
		if !filepath.IsAbs(src) {
			src = filepath.Join(root, src)
		}
	}

	return &BuildConfig{
		Root:               root,
		ToolchainDir:       toolchainDir,
		BuildScript:        filepath.Join(toolchainDir, c.Paths.ToolchainBuildScript),
		EnvSetupScript:     filepath.Join(toolchainDir, c.Paths.EnvSetupScript),
		ToolchainOutputDir: filepath.Join(root, c.Paths.ToolchainOutputDir),
		TargetSourceDir:    src,
		BuildDir:           buildDir,
		Repo:               c.Toolchain.Repo,
		Branch:             c.Toolchain.Branch,
		CloneBackend:       c.Toolchain.CloneBackend,
		CloneDepth:         c.Toolchain.Depth,
		Auth:               c.Toolchain.Auth,
		Options:            c.Build,
		Generator:          c.Target.Generator,
		Compiler:           c.Target.Compiler,
		Jobs:               c.Target.Jobs,
		Artifact:           filepath.Join(buildDir, c.Target.Artifact),
		Strip:              c.Target.Strip,
		StripArgs:          slices.Clone(c.Target.StripArgs),
		StripFailure:       c.Target.StripFailure,
	}
}

// LockPath is the advisory lock file guarding a root against concurrent runs.
func (b *BuildConfig) LockPath() string {
	return filepath.Join(b.Root, ".cjbootstrap.lock")
}
