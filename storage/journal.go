package storage

import (
	"fmt"
	"time"
)

// Journal records every completed submission for the life of the process.
type Journal struct {
	db        *DB
	sessionID string
}

// NewJournal creates a journal bound to one console session.
func NewJournal(db *DB, sessionID string) *Journal {
	return &Journal{db: db, sessionID: sessionID}
}

// SessionID returns the session the journal writes under.
func (j *Journal) SessionID() string {
	return j.sessionID
}

// Record appends an entry and returns its id.
func (j *Journal) Record(e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := j.db.conn.Exec(`
		INSERT INTO journal (session_id, seq, command, outcome, kind, rendered, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.sessionID,
		e.Seq,
		e.Command,
		e.Outcome,
		e.Kind,
		e.Rendered,
		e.Error,
		e.Duration.Milliseconds(),
		e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record journal entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read journal entry id: %w", err)
	}
	return id, nil
}

// List returns entries oldest first. A positive limit keeps the newest
// limit entries.
func (j *Journal) List(limit int) ([]Entry, error) {
	query := `
		SELECT id, session_id, seq, command, outcome, kind, rendered, error, duration_ms, created_at
		FROM journal
		WHERE session_id = ?
		ORDER BY id ASC`
	args := []any{j.sessionID}
	if limit > 0 {
		query = `
		SELECT * FROM (
			SELECT id, session_id, seq, command, outcome, kind, rendered, error, duration_ms, created_at
			FROM journal
			WHERE session_id = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC`
		args = append(args, limit)
	}

	rows, err := j.db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMs, createdAt int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.Command, &e.Outcome, &e.Kind,
			&e.Rendered, &e.Error, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal: %w", err)
	}
	return entries, nil
}

// Stats counts entries per outcome.
func (j *Journal) Stats() (map[string]int64, error) {
	rows, err := j.db.conn.Query(`
		SELECT outcome, COUNT(*) FROM journal
		WHERE session_id = ?
		GROUP BY outcome`, j.sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count journal entries: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan journal stats: %w", err)
		}
		stats[outcome] = n
	}
	return stats, rows.Err()
}
