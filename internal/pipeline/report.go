package pipeline

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/cjbootstrap/internal/metrics"
)

// Outcome is the final state of a run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// StageRecord is the recorded outcome of one stage.
type StageRecord struct {
	Name     StageName
	Result   StageResult
	Duration time.Duration
	Reason   string
	Err      error
}

// Report accumulates what happened during a run.
type Report struct {
	RunID   string
	Start   time.Time
	End     time.Time
	Root    string
	Stages  []StageRecord
	Outcome Outcome
	// Err is the error that ended the run, nil on success.
	Err error
}

// NewReport starts a report for runID.
func NewReport(runID string) *Report {
	return &Report{RunID: runID, Start: time.Now()}
}

// Record appends the outcome of a stage.
func (r *Report) Record(out StageOutcome, d time.Duration) {
	rec := StageRecord{Name: out.Stage, Result: out.Result, Duration: d, Reason: out.Reason}
	if out.Error != nil {
		rec.Err = out.Error
	}
	r.Stages = append(r.Stages, rec)
}

// Result returns the recorded result for stage and whether it ran.
func (r *Report) Result(stage StageName) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == stage {
			return s.Result, true
		}
	}
	return "", false
}

// Finish stamps the end time and derives the outcome from err and the
// recorded stage results.
func (r *Report) Finish(err error) {
	r.End = time.Now()
	r.Err = err
	r.DeriveOutcome()
}

// DeriveOutcome sets Outcome from the run error and recorded warnings.
func (r *Report) DeriveOutcome() {
	if r.Err != nil {
		var se *StageError
		if (stderrors.As(r.Err, &se) && se.Kind == StageErrorCanceled) || isCanceled(r.Err) {
			r.Outcome = OutcomeCanceled
			return
		}
		r.Outcome = OutcomeFailed
		return
	}
	for _, s := range r.Stages {
		if s.Result == StageResultWarning {
			r.Outcome = OutcomeWarning
			return
		}
	}
	r.Outcome = OutcomeSuccess
}

// Duration is the wall time of the run so far.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	parts := make([]string, 0, len(r.Stages))
	for _, s := range r.Stages {
		parts = append(parts, fmt.Sprintf("%s=%s", s.Name, s.Result))
	}
	return fmt.Sprintf("outcome=%s duration=%s stages=[%s]",
		r.Outcome, r.Duration().Truncate(time.Millisecond), strings.Join(parts, " "))
}

func resultLabel(r StageResult) metrics.ResultLabel {
	switch r {
	case StageResultSuccess:
		return metrics.ResultSuccess
	case StageResultSkipped:
		return metrics.ResultSkipped
	case StageResultWarning:
		return metrics.ResultWarning
	case StageResultCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}
