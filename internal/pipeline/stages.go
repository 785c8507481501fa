package pipeline

import (
	"context"
	"fmt"
)

// Stage is a discrete unit of work in a bootstrap run.
type Stage func(ctx context.Context, st *State) error

// StageName is a strongly-typed identifier for a pipeline stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StageResolvePaths     StageName = "resolve_paths"
	StageInstallToolchain StageName = "install_toolchain"
	StageOverlayKernel    StageName = "overlay_kernel"
	StageBuildToolchain   StageName = "build_toolchain"
	StageBuildTarget      StageName = "build_target"
)

// StageErrorKind decides whether a failed stage ends the run.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"
	StageErrorWarning  StageErrorKind = "warning" // recorded, the run continues
	StageErrorCanceled StageErrorKind = "canceled"
)

// StageError attributes err to the stage that returned it.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string {
	if e.Kind == StageErrorFatal {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageResult is what the report and the metrics record for a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultSkipped  StageResult = "skipped"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{StageErrorFatal, stage, err}
}

// NewWarnStageError lets a stage report a failure it has tolerated, such as a
// strip failure under strip_failure: warn.
func NewWarnStageError(stage StageName, err error) *StageError {
	return &StageError{StageErrorWarning, stage, err}
}

func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{StageErrorCanceled, stage, err}
}

// SkipError is returned by a stage that found its work already done.
type SkipError struct{ Reason string }

func (e *SkipError) Error() string { return "skipped: " + e.Reason }

// Skip returns a SkipError carrying reason.
func Skip(reason string) error { return &SkipError{Reason: reason} }

// StageDef is one entry of the stage list.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline assembles the stage list of a run. The overlay and install stages
// are mutually exclusive, hence AddIf.
type Pipeline struct{ defs []StageDef }

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	return p.AddIf(true, name, fn)
}

func (p *Pipeline) AddIf(cond bool, name StageName, fn Stage) *Pipeline {
	if cond {
		p.defs = append(p.defs, StageDef{Name: name, Fn: fn})
	}
	return p
}

// Build returns the stages in the order they were added.
func (p *Pipeline) Build() []StageDef {
	return append([]StageDef(nil), p.defs...)
}

// Names lists the stage names of defs in order.
func Names(defs []StageDef) []StageName {
	out := make([]StageName, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}
