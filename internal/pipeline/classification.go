package pipeline

import (
	"context"
	stderrors "errors"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
)

// StageOutcome is the normalized result of one stage execution.
type StageOutcome struct {
	Stage  StageName
	Error  *StageError
	Result StageResult
	// Reason is set for skipped stages.
	Reason string
	Abort  bool
}

func resultFromStageErrorKind(k StageErrorKind) StageResult {
	switch k {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	case StageErrorFatal:
		return StageResultFatal
	default:
		return StageResultFatal
	}
}

// ClassifyStageResult converts the raw error returned by a stage into a
// StageOutcome. Stages may return a StageError directly; anything else is
// classified from its error category and severity.
func ClassifyStageResult(stage StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var skip *SkipError
	if stderrors.As(err, &skip) {
		return StageOutcome{Stage: stage, Result: StageResultSkipped, Reason: skip.Reason}
	}

	var se *StageError
	if !stderrors.As(err, &se) {
		se = stageErrorFor(stage, err)
	}

	return StageOutcome{
		Stage:  stage,
		Error:  se,
		Result: resultFromStageErrorKind(se.Kind),
		Abort:  se.Kind != StageErrorWarning,
	}
}

func stageErrorFor(stage StageName, err error) *StageError {
	switch {
	case isCanceled(err):
		return NewCanceledStageError(stage, err)
	case errors.HasSeverity(err, errors.SeverityWarning):
		return NewWarnStageError(stage, err)
	default:
		return NewFatalStageError(stage, err)
	}
}

func isCanceled(err error) bool {
	return errors.HasCategory(err, errors.CategoryCanceled) ||
		stderrors.Is(err, context.Canceled) ||
		stderrors.Is(err, context.DeadlineExceeded)
}
