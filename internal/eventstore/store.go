// Package eventstore is the optional run journal: an append-only SQLite log of
// run and stage outcomes. It is an audit trail only and never gates a stage.
package eventstore

import "context"

// Store persists journal entries grouped by run id.
type Store interface {
	// Append adds an entry for runID.
	Append(ctx context.Context, runID, entryType string, payload []byte, metadata map[string]string) error

	// Run returns the entries of runID in insertion order.
	Run(ctx context.Context, runID string) ([]Entry, error)

	// RecentRuns returns up to limit run ids, newest first.
	RecentRuns(ctx context.Context, limit int) ([]string, error)

	// Prune deletes every run except the newest keep runs and reports how
	// many entries were removed.
	Prune(ctx context.Context, keep int) (int64, error)

	Close() error
}
