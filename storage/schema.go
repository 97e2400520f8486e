package storage

import "time"

// Schema version for migrations
const SchemaVersion = 1

// Outcome values stored in the journal.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeTransport = "transport"
	OutcomeCanceled  = "canceled"
)

// Entry is one completed submission cycle.
type Entry struct {
	ID        int64         `db:"id"`
	SessionID string        `db:"session_id"`
	Seq       int64         `db:"seq"`
	Command   string        `db:"command"`
	Outcome   string        `db:"outcome"`  // one of the Outcome constants
	Kind      string        `db:"kind"`     // response kind, empty on transport errors
	Rendered  string        `db:"rendered"` // plain text of the result
	Error     string        `db:"error"`
	Duration  time.Duration `db:"duration_ms"`
	CreatedAt time.Time     `db:"created_at"`
}

// Succeeded reports whether the server accepted the command.
func (e Entry) Succeeded() bool {
	return e.Outcome == OutcomeSuccess
}

// Schema is the SQL DDL for creating all tables
const Schema = `
CREATE TABLE IF NOT EXISTS journal (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    command TEXT NOT NULL,
    outcome TEXT NOT NULL,
    kind TEXT NOT NULL DEFAULT '',
    rendered TEXT NOT NULL DEFAULT '',
    error TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_session ON journal(session_id, id);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

INSERT OR IGNORE INTO schema_version (version, applied_at) VALUES (1, unixepoch());
`
