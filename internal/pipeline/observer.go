package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/cjbootstrap/internal/console"
	"git.home.luguber.info/inful/cjbootstrap/internal/eventstore"
	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
	"git.home.luguber.info/inful/cjbootstrap/internal/logfields"
	"git.home.luguber.info/inful/cjbootstrap/internal/metrics"
)

// Observer receives callbacks around stage execution and the run lifecycle.
// Stage code never talks to logs, metrics or the journal about its own
// outcome; observers do.
type Observer interface {
	OnRunStart(report *Report)
	OnStageStart(stage StageName)
	OnStageComplete(out StageOutcome, d time.Duration)
	OnRunComplete(report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(*Report)                          {}
func (NoopObserver) OnStageStart(StageName)                      {}
func (NoopObserver) OnStageComplete(StageOutcome, time.Duration) {}
func (NoopObserver) OnRunComplete(*Report)                       {}

// Observers fans callbacks out in order.
type Observers []Observer

func (o Observers) OnRunStart(r *Report) {
	for _, ob := range o {
		ob.OnRunStart(r)
	}
}

func (o Observers) OnStageStart(stage StageName) {
	for _, ob := range o {
		ob.OnStageStart(stage)
	}
}

func (o Observers) OnStageComplete(out StageOutcome, d time.Duration) {
	for _, ob := range o {
		ob.OnStageComplete(out, d)
	}
}

func (o Observers) OnRunComplete(r *Report) {
	for _, ob := range o {
		ob.OnRunComplete(r)
	}
}

// LogObserver writes structured stage events to slog.
type LogObserver struct{ Logger *slog.Logger }

func (l LogObserver) OnRunStart(r *Report) {
	l.Logger.Info("Bootstrap started", logfields.RunID(r.RunID))
}

func (l LogObserver) OnStageStart(stage StageName) {
	l.Logger.Debug("Stage started", logfields.Stage(string(stage)))
}

func (l LogObserver) OnStageComplete(out StageOutcome, d time.Duration) {
	attrs := []any{
		logfields.Stage(string(out.Stage)),
		logfields.Result(string(out.Result)),
		logfields.Duration(d),
	}
	switch out.Result {
	case StageResultSuccess:
		l.Logger.Info("Stage completed", attrs...)
	case StageResultSkipped:
		l.Logger.Info("Stage skipped", append(attrs, slog.String("reason", out.Reason))...)
	case StageResultWarning:
		l.Logger.Warn("Stage completed with warnings", append(attrs, logfields.Error(out.Error))...)
	default:
		l.Logger.Error("Stage failed", append(attrs, logfields.Error(out.Error))...)
	}
}

func (l LogObserver) OnRunComplete(r *Report) {
	l.Logger.Info("Bootstrap finished",
		logfields.Result(string(r.Outcome)),
		logfields.Duration(r.Duration()),
		slog.String("summary", r.Summary()))
}

// ConsoleObserver prints human progress lines.
type ConsoleObserver struct{ Printer *console.Printer }

func (c ConsoleObserver) OnRunStart(*Report) {}

func (c ConsoleObserver) OnStageStart(stage StageName) { c.Printer.Stage(string(stage)) }

func (c ConsoleObserver) OnStageComplete(out StageOutcome, d time.Duration) {
	name := string(out.Stage)
	switch out.Result {
	case StageResultSuccess:
		c.Printer.Done(name, d)
	case StageResultSkipped:
		c.Printer.Skipped(name, out.Reason)
	case StageResultWarning:
		c.Printer.Warn(name, out.Error.Err)
	default:
		c.Printer.Failed(name, out.Error.Err)
	}
}

func (c ConsoleObserver) OnRunComplete(*Report) {}

// RecorderObserver adapts metrics.Recorder into an Observer.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnRunStart(*Report)     {}
func (r RecorderObserver) OnStageStart(StageName) {}

func (r RecorderObserver) OnStageComplete(out StageOutcome, d time.Duration) {
	if r.Recorder == nil {
		return
	}
	if out.Result != StageResultSkipped {
		r.Recorder.ObserveStageDuration(string(out.Stage), d)
	}
	r.Recorder.IncStageResult(string(out.Stage), resultLabel(out.Result))
}

func (r RecorderObserver) OnRunComplete(report *Report) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveRunDuration(report.Duration())
	r.Recorder.IncRunOutcome(metrics.OutcomeLabel(report.Outcome))
}

// JournalObserver appends run events to an event store. Journal failures are
// logged and never change the outcome of the run.
type JournalObserver struct {
	ctx     context.Context
	store   eventstore.Store
	runID   string
	started eventstore.RunStarted
	logger  *slog.Logger
}

// NewJournalObserver returns a JournalObserver. Appends use a context detached
// from cancellation so an interrupted run still records how it ended.
func NewJournalObserver(ctx context.Context, store eventstore.Store, started eventstore.RunStarted, logger *slog.Logger) *JournalObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalObserver{ctx: context.WithoutCancel(ctx), store: store, started: started, logger: logger}
}

func (j *JournalObserver) OnRunStart(r *Report) {
	j.logPreviousRun()
	j.record(r.RunID, eventstore.TypeRunStarted, j.started)
}

func (j *JournalObserver) OnStageStart(StageName) {}

func (j *JournalObserver) OnStageComplete(out StageOutcome, d time.Duration) {
	ev := eventstore.StageCompleted{
		Stage:      string(out.Stage),
		Result:     string(out.Result),
		DurationMS: d.Milliseconds(),
	}
	if out.Error != nil {
		ev.Error = out.Error.Err.Error()
	}
	j.record(j.runID, eventstore.TypeStageCompleted, ev)
}

func (j *JournalObserver) OnRunComplete(r *Report) {
	ev := eventstore.RunFinished{
		Outcome:    string(r.Outcome),
		DurationMS: r.Duration().Milliseconds(),
		ExitCode:   errors.ExitCode(r.Err),
	}
	if r.Err != nil {
		ev.Error = r.Err.Error()
	}
	j.record(r.RunID, eventstore.TypeRunFinished, ev)
}

func (j *JournalObserver) record(runID, eventType string, payload any) {
	if runID != "" {
		j.runID = runID
	}
	if err := eventstore.Record(j.ctx, j.store, j.runID, eventType, payload); err != nil {
		j.logger.Warn("Failed to append journal event",
			slog.String("event_type", eventType), logfields.Error(err))
	}
}

func (j *JournalObserver) logPreviousRun() {
	sum, err := eventstore.LastRun(j.ctx, j.store)
	if err != nil {
		j.logger.Debug("Cannot read previous run from journal", logfields.Error(err))
		return
	}
	if sum == nil {
		return
	}
	outcome := "incomplete"
	if sum.Finished != nil {
		outcome = sum.Finished.Outcome
	}
	j.logger.Info("Previous run",
		logfields.RunID(sum.RunID),
		logfields.Result(outcome),
		slog.Time("started_at", sum.StartedAt),
		slog.Int("stages", len(sum.Stages)))
}
