package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS journal (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT    NOT NULL,
	entry_type TEXT    NOT NULL,
	at_ms      INTEGER NOT NULL,
	payload    BLOB    NOT NULL,
	metadata   TEXT
);
CREATE INDEX IF NOT EXISTS journal_run ON journal(run_id);
CREATE INDEX IF NOT EXISTS journal_type ON journal(entry_type, seq);
`

// SQLiteStore is the Store backed by a SQLite file (pure Go driver).
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates the journal at dbPath. ":memory:" gives a
// throwaway journal for tests.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer per run; a single connection also keeps ":memory:" coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, runID, entryType string, payload []byte, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var meta []byte
	if len(metadata) > 0 {
		var err error
		if meta, err = json.Marshal(metadata); err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}
	if payload == nil {
		payload = []byte{}
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO journal (run_id, entry_type, at_ms, payload, metadata) VALUES (?, ?, ?, ?, ?)",
		runID, entryType, time.Now().UnixMilli(), payload, meta,
	); err != nil {
		return fmt.Errorf("insert %s entry: %w", entryType, err)
	}
	return nil
}

func (s *SQLiteStore) Run(ctx context.Context, runID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT seq, run_id, entry_type, at_ms, payload, metadata FROM journal WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			atMS int64
			meta []byte
		)
		if err := rows.Scan(&e.Seq, &e.RunID, &e.Type, &atMS, &e.Payload, &meta); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.At = time.UnixMilli(atMS)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata of entry %d: %w", e.Seq, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id FROM journal WHERE entry_type = ? ORDER BY seq DESC LIMIT ?",
		TypeRunStarted, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM journal WHERE run_id NOT IN (
			SELECT run_id FROM journal WHERE entry_type = ? ORDER BY seq DESC LIMIT ?
		)`, TypeRunStarted, keep)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
