package main

import "strings"

const useDatabasePrefix = "USE DATABASE"

// SessionTracker holds the active database and the commands the server
// accepted. It is not safe for concurrent use; Console serializes access.
type SessionTracker struct {
	state   SessionState
	history []string
}

// NewSessionTracker returns a tracker with no database and empty history.
func NewSessionTracker() *SessionTracker {
	return &SessionTracker{}
}

// Apply records the outcome of a command. Failures leave the tracker
// untouched. A successful USE DATABASE switches the active database to the
// upper-cased name; nothing ever clears it.
func (t *SessionTracker) Apply(command string, resp Response) bool {
	if resp == nil || IsFailure(resp) {
		return false
	}
	t.history = append(t.history, command)

	if name, ok := parseUseDatabase(command); ok {
		t.state = SessionState{CurrentDatabase: name, HasDatabase: true}
	}
	return true
}

// parseUseDatabase extracts the target of a USE DATABASE command.
func parseUseDatabase(command string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(command))
	if !strings.HasPrefix(upper, useDatabasePrefix) {
		return "", false
	}
	return strings.TrimSpace(upper[len(useDatabasePrefix):]), true
}

// State returns the current session state.
func (t *SessionTracker) State() SessionState {
	return t.state
}

// History returns a copy of the accepted commands, oldest first.
func (t *SessionTracker) History() []string {
	return append([]string(nil), t.history...)
}

// Len returns the number of accepted commands.
func (t *SessionTracker) Len() int {
	return len(t.history)
}
