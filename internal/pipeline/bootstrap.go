// Package pipeline runs the bootstrap stages against a project root.
//
// The pipeline is linear: resolve_paths, then install_toolchain (or
// overlay_kernel when a kernel path is given), then build_toolchain and
// build_target. Each stage checks the filesystem before acting; there is no
// persisted pipeline state besides the directories the stages produce.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/cjbootstrap/internal/config"
	"git.home.luguber.info/inful/cjbootstrap/internal/confirm"
	"git.home.luguber.info/inful/cjbootstrap/internal/console"
	"git.home.luguber.info/inful/cjbootstrap/internal/eventstore"
	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/git"
	"git.home.luguber.info/inful/cjbootstrap/internal/lock"
	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
	"git.home.luguber.info/inful/cjbootstrap/internal/metrics"
	"git.home.luguber.info/inful/cjbootstrap/internal/paths"
	"git.home.luguber.info/inful/cjbootstrap/internal/runner"
	"git.home.luguber.info/inful/cjbootstrap/internal/version"
)

// State is shared by the stages of one run.
type State struct {
	Config     *config.Config
	KernelPath string
	// Build is populated by resolve_paths.
	Build  *config.BuildConfig
	Report *Report

	lock *lock.Lock
}

// Options selects what a run does.
type Options struct {
	// ConfigPath is recorded in the journal only; Config must already be loaded.
	ConfigPath string
	// KernelPath switches install_toolchain for overlay_kernel when set.
	KernelPath string
	RunID      string
}

// Deps are the collaborators a run needs. Runner and Confirmer are required.
type Deps struct {
	Runner    runner.Runner
	Confirmer confirm.Confirmer
	Git       *git.Client
	Logger    *slog.Logger
	Printer   *console.Printer
	Recorder  metrics.Recorder
	Journal   eventstore.Store
	// Progress receives go-git clone progress.
	Progress io.Writer
}

// Bootstrap drives one run of the pipeline.
type Bootstrap struct {
	cfg  *config.Config
	opts Options
	deps Deps
}

// New returns a Bootstrap for cfg. A run id is generated when opts.RunID is empty.
func New(cfg *config.Config, opts Options, deps Deps) *Bootstrap {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Logger = deps.Logger.With(logfields.RunID(opts.RunID))
	if deps.Printer == nil {
		deps.Printer = console.Quiet()
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.NoopRecorder{}
	}
	if deps.Git == nil {
		deps.Git = git.NewClient(deps.Logger)
	}
	return &Bootstrap{cfg: cfg, opts: opts, deps: deps}
}

// RunID identifies this run in logs and the journal.
func (b *Bootstrap) RunID() string { return b.opts.RunID }

// Stages returns the stage list for this run.
func (b *Bootstrap) Stages() []StageDef {
	overlay := b.opts.KernelPath != ""
	return NewPipeline().
		Add(StageResolvePaths, b.resolvePaths).
		AddIf(!overlay, StageInstallToolchain, b.installToolchain).
		AddIf(overlay, StageOverlayKernel, b.overlayKernel).
		Add(StageBuildToolchain, b.buildToolchain).
		Add(StageBuildTarget, b.buildTarget).
		Build()
}

// Run executes every stage and returns the report together with the error
// that aborted the run, if any. The project lock is held from resolve_paths
// until Run returns.
func (b *Bootstrap) Run(ctx context.Context) (*Report, error) {
	if b.deps.Runner == nil || b.deps.Confirmer == nil {
		return nil, errors.InternalError("bootstrap requires a command runner and a confirmer").Build()
	}

	st := &State{Config: b.cfg, KernelPath: b.opts.KernelPath, Report: NewReport(b.opts.RunID)}
	obs := b.observers(ctx)

	defer func() {
		if err := st.lock.Release(); err != nil {
			b.deps.Logger.Warn("Failed to release lock", logfields.Error(err))
		}
	}()

	obs.OnRunStart(st.Report)
	err := RunStages(ctx, st, b.Stages(), obs)
	st.Report.Finish(err)
	obs.OnRunComplete(st.Report)
	return st.Report, err
}

func (b *Bootstrap) observers(ctx context.Context) Observer {
	obs := Observers{
		LogObserver{Logger: b.deps.Logger},
		ConsoleObserver{Printer: b.deps.Printer},
		RecorderObserver{Recorder: b.deps.Recorder},
	}
	if b.deps.Journal != nil {
		obs = append(obs, NewJournalObserver(ctx, b.deps.Journal, eventstore.RunStarted{
			Root:       paths.Join(b.cfg.Project.Root, b.cfg.BaseDir),
			ConfigPath: b.opts.ConfigPath,
			KernelPath: b.opts.KernelPath,
			Version:    version.Version,
		}, b.deps.Logger))
	}
	return obs
}

// kernelSource resolves the kernel path against the working directory.
func (b *Bootstrap) kernelSource() (string, error) {
	p := paths.StripQuotes(b.opts.KernelPath)
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve kernel path").
			WithContext("path", p).Build()
	}
	return abs, nil
}
