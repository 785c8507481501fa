package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "config/config.yaml"

// Config represents the on-disk bootstrap configuration.
type Config struct {
	Project   ProjectConfig   `yaml:"project"`
	Paths     PathsConfig     `yaml:"paths"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Build     BuildFlags      `yaml:"build"`
	Target    TargetConfig    `yaml:"target"`
	Logging   LoggingConfig   `yaml:"logging"`
	Journal   JournalConfig   `yaml:"journal"`

	// BaseDir is the absolute directory of the loaded file; relative roots resolve against it.
	BaseDir string `yaml:"-"`
}

// ProjectConfig holds the raw (unresolved) project root.
type ProjectConfig struct {
	Root string `yaml:"root"`
}

// PathsConfig names the directories the pipeline works in. Script paths are relative
// to the toolchain directory; everything else is relative to the project root.
type PathsConfig struct {
	ToolchainDir         string `yaml:"toolchain_dir"`
	ToolchainBuildScript string `yaml:"toolchain_build_script"`
	EnvSetupScript       string `yaml:"envsetup_sh"`
	ToolchainOutputDir   string `yaml:"toolchain_output_dir"`
	TargetSourceDir      string `yaml:"target_src_dir,omitempty"`
	BuildDir             string `yaml:"build_dir"`
}

// ToolchainConfig identifies the upstream toolchain repository.
type ToolchainConfig struct {
	Repo         string       `yaml:"repo"`
	Branch       string       `yaml:"branch"`
	CloneBackend CloneBackend `yaml:"clone_backend,omitempty"`
	// Depth and Auth only apply to the go-git back-end; the git binary uses its
	// own credential helpers.
	Depth int         `yaml:"depth,omitempty"`
	Auth  *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig holds credentials for the toolchain remote.
type AuthConfig struct {
	Type     AuthType `yaml:"type"`
	Token    string   `yaml:"token,omitempty"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty"`
}

// BuildFlags are the options handed to the toolchain's build entry point.
type BuildFlags struct {
	NoTests      bool   `yaml:"no_tests"`
	CJNative     bool   `yaml:"cjnative"`
	Target       string `yaml:"target"`
	EnableAssert bool   `yaml:"enable_assert"`
}

// TargetConfig describes how the dependent component is generated, compiled and stripped.
type TargetConfig struct {
	Artifact     string             `yaml:"artifact"`
	Generator    string             `yaml:"generator"`
	Compiler     string             `yaml:"compiler"`
	Jobs         int                `yaml:"jobs"`
	Strip        string             `yaml:"strip"`
	StripArgs    []string           `yaml:"strip_args,omitempty"`
	StripFailure StripFailurePolicy `yaml:"strip_failure,omitempty"`
}

// LoggingConfig selects the slog level and handler format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// JournalConfig enables the SQLite run journal when Path is set.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
	// KeepRuns bounds the journal to the newest N runs; 0 keeps every run.
	KeepRuns int `yaml:"keep_runs,omitempty"`
}

// Load reads, expands and validates the configuration file at configPath.
// A .env file next to the configuration is loaded first; it never overrides
// variables already present in the process environment.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot resolve configuration path").
			WithContext("path", configPath).Build()
	}

	if _, statErr := os.Stat(absPath); statErr != nil {
		if stderrors.Is(statErr, os.ErrNotExist) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", absPath).Build()
		}
		return nil, errors.WrapError(statErr, errors.CategoryConfig, "cannot stat configuration file").
			WithContext("path", absPath).Build()
	}

	baseDir := filepath.Dir(absPath)
	if err := loadEnvFile(baseDir); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration file").
			WithContext("path", absPath).Build()
	}

	cfg, err := Parse(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", absPath)
		}
		return nil, err
	}
	cfg.BaseDir = baseDir
	return cfg, nil
}

// Parse decodes a configuration document, applies defaults and validates it.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").Build()
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile(dir string) error {
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to load .env file").
			WithContext("path", envPath).Build()
	}
	return nil
}

func applyDefaults(cfg *Config) {
	p := &cfg.Paths
	if p.ToolchainDir == "" {
		p.ToolchainDir = "cangjie"
	}
	if p.ToolchainBuildScript == "" {
		p.ToolchainBuildScript = "build.py"
	}
	if p.EnvSetupScript == "" {
		p.EnvSetupScript = filepath.Join("output", "envsetup.sh")
	}
	if p.ToolchainOutputDir == "" {
		p.ToolchainOutputDir = filepath.Join(p.ToolchainDir, "output")
	}
	if p.BuildDir == "" {
		p.BuildDir = "build"
	}

	cfg.Toolchain.Repo = strings.TrimSpace(cfg.Toolchain.Repo)
	cfg.Toolchain.Branch = strings.TrimSpace(cfg.Toolchain.Branch)
	if cfg.Toolchain.CloneBackend == "" {
		cfg.Toolchain.CloneBackend = CloneBackendExec
	}

	if strings.TrimSpace(cfg.Build.Target) == "" {
		cfg.Build.Target = "native"
	}

	t := &cfg.Target
	if t.Artifact == "" {
		t.Artifact = filepath.Join("bin", "cjhead")
	}
	if t.Generator == "" {
		t.Generator = "cmake"
	}
	if t.Compiler == "" {
		t.Compiler = "make"
	}
	if t.Jobs == 0 {
		t.Jobs = 32
	}
	if t.Strip == "" {
		t.Strip = "strip"
	}
	if t.StripArgs == nil {
		t.StripArgs = []string{"--strip-all"}
	}
	if t.StripFailure == "" {
		t.StripFailure = StripFailureFatal
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}
