package eventstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Journal event types.
const (
	TypeRunStarted     = "RunStarted"
	TypeStageCompleted = "StageCompleted"
	TypeRunFinished    = "RunFinished"
)

// RunStarted records the inputs of a run.
type RunStarted struct {
	Root       string `json:"root"`
	ConfigPath string `json:"config_path"`
	KernelPath string `json:"kernel_path,omitempty"`
	Version    string `json:"version"`
}

// StageCompleted records one stage outcome.
type StageCompleted struct {
	Stage      string `json:"stage"`
	Result     string `json:"result"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RunFinished records the final outcome of a run.
type RunFinished struct {
	Outcome    string `json:"outcome"`
	DurationMS int64  `json:"duration_ms"`
	ExitCode   int    `json:"exit_code"`
	Error      string `json:"error,omitempty"`
}

// Record marshals payload and appends it as eventType for runID.
func Record(ctx context.Context, s Store, runID, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return s.Append(ctx, runID, eventType, data, nil)
}

// RunSummary is a read model of a single run rebuilt from its events.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	Started    RunStarted
	Stages     []StageCompleted
	Finished   *RunFinished
	FinishedAt time.Time
}

// Summarize folds the entries of one run into a RunSummary.
func Summarize(entries []Entry) (*RunSummary, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	sum := &RunSummary{RunID: entries[0].RunID}
	for _, e := range entries {
		switch e.Type {
		case TypeRunStarted:
			sum.StartedAt = e.At
			if err := json.Unmarshal(e.Payload, &sum.Started); err != nil {
				return nil, fmt.Errorf("unmarshal %s: %w", e.Type, err)
			}
		case TypeStageCompleted:
			var sc StageCompleted
			if err := json.Unmarshal(e.Payload, &sc); err != nil {
				return nil, fmt.Errorf("unmarshal %s: %w", e.Type, err)
			}
			sum.Stages = append(sum.Stages, sc)
		case TypeRunFinished:
			var rf RunFinished
			if err := json.Unmarshal(e.Payload, &rf); err != nil {
				return nil, fmt.Errorf("unmarshal %s: %w", e.Type, err)
			}
			sum.Finished = &rf
			sum.FinishedAt = e.At
		}
	}
	return sum, nil
}

// LastRun summarizes the newest run in s, or returns nil for an empty journal.
func LastRun(ctx context.Context, s Store) (*RunSummary, error) {
	ids, err := s.RecentRuns(ctx, 1)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	entries, err := s.Run(ctx, ids[0])
	if err != nil {
		return nil, err
	}
	return Summarize(entries)
}
