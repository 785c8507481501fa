package pipeline

import (
	"context"
	"time"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
)

// RunStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage. Later stages read what earlier ones left on
// disk, so nothing runs after an abort.
func RunStages(ctx context.Context, st *State, stages []StageDef, obs Observer) error {
	if obs == nil {
		obs = NoopObserver{}
	}
	for _, def := range stages {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(def.Name,
				errors.WrapError(ctx.Err(), errors.CategoryCanceled, "run canceled").Build())
			out := StageOutcome{Stage: def.Name, Error: se, Result: StageResultCanceled, Abort: true}
			st.Report.Record(out, 0)
			obs.OnStageComplete(out, 0)
			return se
		default:
		}

		obs.OnStageStart(def.Name)

		t0 := time.Now()
		err := def.Fn(ctx, st)
		dur := time.Since(t0)

		out := ClassifyStageResult(def.Name, err)
		st.Report.Record(out, dur)
		obs.OnStageComplete(out, dur)

		if out.Abort {
			return out.Error
		}
	}
	return nil
}
