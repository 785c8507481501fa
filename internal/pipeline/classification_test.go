package pipeline

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cjbootstrap/internal/foundation/errors"
)

func TestClassifyStageResult(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result StageResult
		abort  bool
	}{
		{"nil", nil, StageResultSuccess, false},
		{"skip", Skip("present"), StageResultSkipped, false},
		{"plain error", stderrors.New("boom"), StageResultFatal, true},
		{"command error", errors.CommandError("exit 1").Build(), StageResultFatal, true},
		{"warning severity", errors.CommandError("strip").Warning().Build(), StageResultWarning, false},
		{"canceled category", errors.CanceledError("stop").Build(), StageResultCanceled, true},
		{"context canceled", context.Canceled, StageResultCanceled, true},
		{"explicit warn", NewWarnStageError(StageBuildTarget, stderrors.New("w")), StageResultWarning, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ClassifyStageResult(StageBuildTarget, tt.err)
			assert.Equal(t, tt.result, out.Result)
			assert.Equal(t, tt.abort, out.Abort)
			if tt.err == nil || tt.result == StageResultSkipped {
				assert.Nil(t, out.Error)
				return
			}
			require.NotNil(t, out.Error)
			assert.Equal(t, StageBuildTarget, out.Error.Stage)
		})
	}
}

func TestSkipCarriesReason(t *testing.T) {
	out := ClassifyStageResult(StageInstallToolchain, Skip("toolchain checkout already present"))
	assert.Equal(t, "toolchain checkout already present", out.Reason)
}

func TestPipelineBuilder(t *testing.T) {
	noop := func(context.Context, *State) error { return nil }
	defs := NewPipeline().
		Add(StageResolvePaths, noop).
		AddIf(false, StageInstallToolchain, noop).
		AddIf(true, StageOverlayKernel, noop).
		Build()
	assert.Equal(t, []StageName{StageResolvePaths, StageOverlayKernel}, Names(defs))
}

func TestRunStagesStopsOnFatal(t *testing.T) {
	var ran []StageName
	stage := func(name StageName, err error) StageDef {
		return StageDef{Name: name, Fn: func(context.Context, *State) error {
			ran = append(ran, name)
			return err
		}}
	}
	st := &State{Report: NewReport("test")}
	err := RunStages(context.Background(), st, []StageDef{
		stage(StageResolvePaths, nil),
		stage(StageInstallToolchain, Skip("present")),
		stage(StageBuildToolchain, errors.CommandError("exit 2").Build()),
		stage(StageBuildTarget, nil),
	}, nil)

	require.Error(t, err)
	assert.Equal(t, []StageName{StageResolvePaths, StageInstallToolchain, StageBuildToolchain}, ran)
	st.Report.Finish(err)
	assert.Equal(t, OutcomeFailed, st.Report.Outcome)
	assert.Contains(t, st.Report.Summary(), "install_toolchain=skipped")
}
