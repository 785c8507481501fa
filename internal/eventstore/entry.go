package eventstore

import "time"

// Entry is one journal row.
type Entry struct {
	Seq      int64
	RunID    string
	Type     string
	At       time.Time
	Payload  []byte
	Metadata map[string]string
}
