// Package toolchain makes sure the upstream toolchain is checked out and built.
//
// Both steps are gated on filesystem presence only: an existing checkout is
// never re-cloned and an existing output directory is never rebuilt.
package toolchain

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
	"git.home.luguber.info/inful/cjbootstrap/internal/runner"
	"git.home.luguber.info/inful/cjbootstrap/internal/workspace"
)

// Status describes what a toolchain step did.
type Status string

const (
	StatusCloned     Status = "cloned"
	StatusConfigured Status = "configured" // cloned, environment setup script already present
	StatusPresent    Status = "present"    // checkout existed, nothing done
	StatusPrebuilt   Status = "prebuilt"   // output directory existed, nothing done
	StatusBuilt      Status = "built"
)

// Skipped reports whether the step performed no work.
func (s Status) Skipped() bool { return s == StatusPresent || s == StatusPrebuilt }

// Installer ensures the toolchain source tree exists.
type Installer struct {
	cloner    Cloner
	envSetup  string
	outputDir string
	logger    *slog.Logger
}

// NewInstaller returns an Installer. envSetup and outputDir are absolute paths.
func NewInstaller(c Cloner, envSetup, outputDir string, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{cloner: c, envSetup: envSetup, outputDir: outputDir, logger: logger}
}

// EnsureInstalled clones branch of repoURL into dir unless dir already exists
// or the toolchain output directory is already present.
func (i *Installer) EnsureInstalled(ctx context.Context, dir, repoURL, branch string) (Status, error) {
	built, err := exists(i.outputDir)
	if err != nil {
		return "", err
	}
	if built {
		i.logger.Info("Toolchain output present, skipping checkout", logfields.Dir(i.outputDir))
		return StatusPrebuilt, nil
	}

	present, err := exists(dir)
	if err != nil {
		return "", err
	}
	if present {
		i.logger.Info("Toolchain repository already exists, skipping clone", logfields.Dir(dir))
		return StatusPresent, nil
	}

	i.logger.Info("Cloning toolchain repository", logfields.URL(repoURL), logfields.Branch(branch), logfields.Dir(dir))
	if err := i.cloner.Clone(ctx, repoURL, branch, dir); err != nil {
		return "", err
	}

	configured, err := exists(i.envSetup)
	if err != nil {
		return "", err
	}
	if configured {
		i.logger.Info("Toolchain environment already configured", logfields.Path(i.envSetup))
		return StatusConfigured, nil
	}
	return StatusCloned, nil
}

// Builder runs the toolchain's own build and install entry points.
type Builder struct {
	runner runner.Runner
	dir    string
	script string
	logger *slog.Logger
}

// NewBuilder returns a Builder invoking script (absolute) with dir as working directory.
func NewBuilder(r runner.Runner, dir, script string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{runner: r, dir: dir, script: script, logger: logger}
}

// Build runs "<script> build <opts>" then "<script> install" unless outputDir exists.
func (b *Builder) Build(ctx context.Context, outputDir string, opts Options) (Status, error) {
	built, err := exists(outputDir)
	if err != nil {
		return "", err
	}
	if built {
		b.logger.Info("Toolchain already built, skipping", logfields.Dir(outputDir))
		return StatusPrebuilt, nil
	}

	b.logger.Info("Building toolchain", logfields.Command(b.script, append([]string{"build"}, opts.Args()...)...))
	steps := []runner.Command{
		{Name: b.script, Args: append([]string{"build"}, opts.Args()...), Dir: b.dir},
		{Name: b.script, Args: []string{"install"}, Dir: b.dir},
	}
	for _, cmd := range steps {
		if _, err := b.runner.Run(ctx, cmd); err != nil {
			return "", err
		}
	}
	return StatusBuilt, nil
}

func exists(path string) (bool, error) {
	ok, err := workspace.Exists(path)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "cannot check path").
			WithContext("path", path).Build()
	}
	return ok, nil
}
