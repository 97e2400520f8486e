package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var okResponse = DatabaseNotice{Message: "Database 'x' created"}

func TestSessionTracker_UseDatabase(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		expected string
	}{
		{"upper cases the name", "USE DATABASE mydb", "MYDB"},
		{"prefix is case insensitive", "use database Shop", "SHOP"},
		{"surrounding space", "   USE DATABASE   inventory  ", "INVENTORY"},
		{"empty remainder", "USE DATABASE", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewSessionTracker()
			assert.True(t, tracker.Apply(tt.command, RawFallback{Payload: []byte(`{}`)}))
			state := tracker.State()
			assert.True(t, state.HasDatabase)
			assert.Equal(t, tt.expected, state.CurrentDatabase)
		})
	}
}

func TestSessionTracker_OtherCommandsKeepDatabase(t *testing.T) {
	tracker := NewSessionTracker()
	tracker.Apply("USE DATABASE mydb", okResponse)

	for _, cmd := range []string{"SHOW TABLES", "DROP DATABASE mydb", "CREATE DATABASE other", "SELECT * FROM users"} {
		tracker.Apply(cmd, okResponse)
		assert.Equal(t, SessionState{CurrentDatabase: "MYDB", HasDatabase: true}, tracker.State())
	}
	assert.Equal(t, 5, tracker.Len())
}

func TestSessionTracker_FailureChangesNothing(t *testing.T) {
	tracker := NewSessionTracker()
	tracker.Apply("SHOW DATABASES", DatabasesList{})

	assert.False(t, tracker.Apply("USE DATABASE missing", Failure{Message: "Database 'missing' not found"}))
	assert.False(t, tracker.Apply("SHOW DATABASES", nil))

	assert.Equal(t, []string{"SHOW DATABASES"}, tracker.History())
	assert.False(t, tracker.State().HasDatabase)
}

func TestSessionTracker_HistoryOrder(t *testing.T) {
	tracker := NewSessionTracker()
	commands := []string{"CREATE DATABASE a", "SHOW DATABASES", "CREATE DATABASE a"}
	for _, cmd := range commands {
		tracker.Apply(cmd, okResponse)
	}
	assert.Equal(t, commands, tracker.History())

	history := tracker.History()
	history[0] = "mutated"
	assert.Equal(t, "CREATE DATABASE a", tracker.History()[0])
}
