package config

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
)

const exampleHeader = `# cjbootstrap configuration
#
# project.root is resolved relative to the directory of this file.
# Values may reference environment variables as ${VAR}; a .env file next to
# this file is loaded first.
`

// Example returns the configuration written by Init.
func Example() Config {
	cfg := Config{
		Project: ProjectConfig{Root: ".."},
		Toolchain: ToolchainConfig{
			Repo:   "https://gitcode.com/Cangjie/cangjie_compiler.git",
			Branch: "main",
		},
		Build: BuildFlags{
			NoTests:  true,
			CJNative: true,
			Target:   "native",
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
	applyDefaults(&cfg)
	return cfg
}

// Init writes an example configuration to configPath. An existing file is only
// replaced when force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	} else if err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot stat configuration file").
			WithContext("path", configPath).Build()
	}

	example := Example()
	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example configuration").Build()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create configuration directory").
			WithContext("path", filepath.Dir(configPath)).Build()
	}
	// #nosec G306 -- configuration is not secret
	if err := os.WriteFile(configPath, append([]byte(exampleHeader), data...), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration file").
			WithContext("path", configPath).Build()
	}
	return nil
}
