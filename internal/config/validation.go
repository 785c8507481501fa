package config

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
)

// validate checks required fields and normalizes enumerations in place.
func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Project.Root) == "" {
		return invalid("project.root is required", nil)
	}
	if cfg.Toolchain.Repo == "" {
		return invalid("toolchain.repo is required", nil)
	}
	if cfg.Toolchain.Branch == "" {
		return invalid("toolchain.branch is required", nil)
	}
	if cfg.Target.Jobs < 0 {
		return invalid("target.jobs must be positive", nil)
	}

	for field, rel := range map[string]string{
		"paths.toolchain_dir":        cfg.Paths.ToolchainDir,
		"paths.toolchain_output_dir": cfg.Paths.ToolchainOutputDir,
		"paths.build_dir":            cfg.Paths.BuildDir,
		"target.artifact":            cfg.Target.Artifact,
	} {
		if filepath.IsAbs(rel) {
			return invalid(field+" must be relative", nil).WithContext("value", rel)
		}
	}

	var err error
	if cfg.Toolchain.CloneBackend, err = cloneBackends.normalize(cfg.Toolchain.CloneBackend); err != nil {
		return invalid("invalid toolchain.clone_backend", err)
	}
	if cfg.Journal.KeepRuns < 0 {
		return invalid("journal.keep_runs must not be negative", nil)
	}
	if cfg.Toolchain.Depth < 0 {
		return invalid("toolchain.depth must not be negative", nil)
	}
	if a := cfg.Toolchain.Auth; a != nil {
		if a.Type == "" {
			a.Type = AuthTypeNone
		}
		if a.Type, err = authTypes.normalize(a.Type); err != nil {
			return invalid("invalid toolchain.auth.type", err)
		}
		if a.Type != AuthTypeNone && cfg.Toolchain.CloneBackend != CloneBackendGoGit {
			return invalid("toolchain.auth requires clone_backend: go-git", nil)
		}
	}
	if cfg.Target.StripFailure, err = stripPolicies.normalize(cfg.Target.StripFailure); err != nil {
		return invalid("invalid target.strip_failure", err)
	}
	if cfg.Logging.Level, err = logLevels.normalize(cfg.Logging.Level); err != nil {
		return invalid("invalid logging.level", err)
	}
	if cfg.Logging.Format, err = logFormats.normalize(cfg.Logging.Format); err != nil {
		return invalid("invalid logging.format", err)
	}
	return nil
}

func invalid(msg string, cause error) *errors.ClassifiedError {
	return errors.ConfigError(msg).WithCause(cause).Build()
}
