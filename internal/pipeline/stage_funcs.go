package pipeline

import (
	"context"
	"time"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/lock"
	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
	"git.home.luguber.info/inful/cjbootstrap/internal/overlay"
	"git.home.luguber.info/inful/cjbootstrap/internal/paths"
	"git.home.luguber.info/inful/cjbootstrap/internal/target"
	"git.home.luguber.info/inful/cjbootstrap/internal/toolchain"
)

func (b *Bootstrap) resolvePaths(ctx context.Context, st *State) error {
	resolver := paths.NewResolver(b.deps.Confirmer, b.deps.Logger)
	root, err := resolver.Resolve(ctx, st.Config.Project.Root, st.Config.BaseDir)
	if err != nil {
		return err
	}
	st.Build = st.Config.Resolve(root)
	st.Report.Root = root

	l, err := lock.Acquire(st.Build.LockPath())
	if err != nil {
		return err
	}
	st.lock = l
	b.deps.Logger.Debug("Project root resolved", logfields.Dir(root), logfields.Path(l.Path()))
	return nil
}

func (b *Bootstrap) installToolchain(ctx context.Context, st *State) error {
	bc := st.Build
	cloner := toolchain.NewCloner(bc, b.deps.Runner, b.deps.Git, b.deps.Progress)
	inst := toolchain.NewInstaller(cloner, bc.EnvSetupScript, bc.ToolchainOutputDir, b.deps.Logger)

	t0 := time.Now()
	status, err := inst.EnsureInstalled(ctx, bc.ToolchainDir, bc.Repo, bc.Branch)
	switch {
	case err != nil:
		b.deps.Recorder.ObserveCloneDuration(string(bc.CloneBackend), time.Since(t0), false)
		return err
	case status == toolchain.StatusPrebuilt:
		return Skip("toolchain output already present")
	case status == toolchain.StatusPresent:
		return Skip("toolchain checkout already present")
	}
	b.deps.Recorder.ObserveCloneDuration(string(bc.CloneBackend), time.Since(t0), true)
	if status == toolchain.StatusConfigured {
		b.deps.Logger.Info("Toolchain already configured", logfields.Path(bc.EnvSetupScript))
	}
	return nil
}

func (b *Bootstrap) overlayKernel(_ context.Context, st *State) error {
	src, err := b.kernelSource()
	if err != nil {
		return err
	}
	return overlay.Apply(src, st.Build.ToolchainDir, b.deps.Logger)
}

func (b *Bootstrap) buildToolchain(ctx context.Context, st *State) error {
	bc := st.Build
	builder := toolchain.NewBuilder(b.deps.Runner, bc.ToolchainDir, bc.BuildScript, b.deps.Logger)
	status, err := builder.Build(ctx, bc.ToolchainOutputDir, toolchain.OptionsFrom(bc.Options))
	if err != nil {
		return err
	}
	if status.Skipped() {
		return Skip("toolchain output already present")
	}
	b.deps.Printer.Note("run `source %s` to use the toolchain", bc.EnvSetupScript)
	return nil
}

func (b *Bootstrap) buildTarget(ctx context.Context, st *State) error {
	builder := target.NewBuilder(b.deps.Runner, target.SettingsFrom(st.Build), b.deps.Logger)
	res, err := builder.BuildTarget(ctx)
	if err != nil {
		if res != nil && errors.HasSeverity(err, errors.SeverityWarning) {
			return NewWarnStageError(StageBuildTarget, err)
		}
		return err
	}
	b.deps.Printer.Note("artifact: %s", res.Artifact)
	return nil
}
