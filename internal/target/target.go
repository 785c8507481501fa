// Package target builds the dependent component against the installed toolchain.
package target

import (
	"context"
	"log/slog"
	"strconv"

	"git.home.luguber.info/inful/cjbootstrap/internal/config"
	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
	"git.home.luguber.info/inful/cjbootstrap/internal/runner"
	"git.home.luguber.info/inful/cjbootstrap/internal/workspace"
)

// Settings are the resolved target build parameters.
type Settings struct {
	BuildDir     string
	SourceDir    string // generator argument, ".." by default
	Generator    string
	Compiler     string
	Jobs         int
	Artifact     string // absolute path of the expected binary
	Strip        string
	StripArgs    []string
	StripFailure config.StripFailurePolicy
}

// SettingsFrom extracts the target settings of a resolved configuration.
func SettingsFrom(cfg *config.BuildConfig) Settings {
	return Settings{
		BuildDir:     cfg.BuildDir,
		SourceDir:    cfg.TargetSourceDir,
		Generator:    cfg.Generator,
		Compiler:     cfg.Compiler,
		Jobs:         cfg.Jobs,
		Artifact:     cfg.Artifact,
		Strip:        cfg.Strip,
		StripArgs:    cfg.StripArgs,
		StripFailure: cfg.StripFailure,
	}
}

// Result describes the produced artifact.
type Result struct {
	Artifact string
	Stripped bool
}

// Builder performs a clean generate, compile and strip cycle.
type Builder struct {
	runner   runner.Runner
	settings Settings
	logger   *slog.Logger
}

// NewBuilder returns a Builder.
func NewBuilder(r runner.Runner, s Settings, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{runner: r, settings: s, logger: logger}
}

// BuildTarget always starts from an empty build directory. A missing artifact
// after a successful compile is an artifact error and strip is not attempted.
// When the strip policy is "warn" a strip failure is returned as a
// warning-severity error alongside a valid Result.
func (b *Builder) BuildTarget(ctx context.Context) (*Result, error) {
	s := b.settings

	b.logger.Info("Preparing clean build directory", logfields.Dir(s.BuildDir))
	if err := workspace.Recreate(s.BuildDir); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to recreate build directory").
			WithContext("path", s.BuildDir).Build()
	}

	steps := []runner.Command{
		{Name: s.Generator, Args: []string{s.SourceDir}, Dir: s.BuildDir},
		{Name: s.Compiler, Args: []string{"-j" + strconv.Itoa(s.Jobs)}, Dir: s.BuildDir},
	}
	for _, cmd := range steps {
		if _, err := b.runner.Run(ctx, cmd); err != nil {
			return nil, err
		}
	}

	found, err := workspace.Exists(s.Artifact)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot check artifact").
			WithContext("path", s.Artifact).Build()
	}
	if !found {
		return nil, errors.ArtifactMissing("build finished but artifact was not produced").
			WithContext("path", s.Artifact).Build()
	}

	res := &Result{Artifact: s.Artifact}
	args := append(append([]string{}, s.StripArgs...), s.Artifact)
	if _, err := b.runner.Run(ctx, runner.Command{Name: s.Strip, Args: args, Dir: s.BuildDir}); err != nil {
		if s.StripFailure != config.StripFailureWarn || errors.HasCategory(err, errors.CategoryCanceled) {
			return nil, err
		}
		b.logger.Warn("Strip failed, keeping unstripped artifact", logfields.Path(s.Artifact), logfields.Error(err))
		return res, errors.WrapError(err, errors.CategoryCommand, "strip failed").
			Warning().
			WithContext("path", s.Artifact).Build()
	}
	res.Stripped = true

	b.logger.Info("Artifact ready", logfields.Path(s.Artifact))
	return res, nil
}
