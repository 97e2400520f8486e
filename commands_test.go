package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCommand(t *testing.T) {
	registry := NewCommandRegistry()

	tests := []struct {
		name            string
		input           string
		expectFound     bool
		expectCommand   string
		expectMatches   int
		expectAmbiguous bool
	}{
		{
			name:          "exact match with colon",
			input:         ":quit",
			expectFound:   true,
			expectCommand: ":quit",
			expectMatches: 1,
		},
		{
			name:          "partial match single - q",
			input:         ":q",
			expectFound:   true,
			expectCommand: ":quit",
			expectMatches: 1,
		},
		{
			name:          "partial match single - he",
			input:         ":he",
			expectFound:   true,
			expectCommand: ":help",
			expectMatches: 1,
		},
		{
			name:          "partial match single - hi",
			input:         ":hi",
			expectFound:   true,
			expectCommand: ":history",
			expectMatches: 1,
		},
		{
			name:          "partial match single - c",
			input:         ":c",
			expectFound:   true,
			expectCommand: ":clear",
			expectMatches: 1,
		},
		{
			name:          "partial match single - e",
			input:         ":e",
			expectFound:   true,
			expectCommand: ":export",
			expectMatches: 1,
		},
		{
			name:          "slash prefix is accepted",
			input:         "/server",
			expectFound:   true,
			expectCommand: ":server",
			expectMatches: 1,
		},
		{
			name:            "ambiguous - h",
			input:           ":h",
			expectFound:     false,
			expectMatches:   2,
			expectAmbiguous: true,
		},
		{
			name:          "no match",
			input:         ":xyz",
			expectFound:   false,
			expectMatches: 0,
		},
		{
			name:          "bare colon",
			input:         ":",
			expectFound:   false,
			expectMatches: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, matches, found := registry.FindCommand(tt.input)

			require.Equal(t, tt.expectFound, found)
			require.Len(t, matches, tt.expectMatches)
			if tt.expectFound {
				require.Equal(t, tt.expectCommand, cmd.Name)
				require.NotNil(t, cmd.Handler)
			}
			if tt.expectAmbiguous {
				require.Greater(t, len(matches), 1)
			}
		})
	}
}

func TestNormalizeCommandName(t *testing.T) {
	assert.Equal(t, ":help", normalizeCommandName("help"))
	assert.Equal(t, ":help", normalizeCommandName("/help"))
	assert.Equal(t, ":help", normalizeCommandName("  :help "))
	assert.Equal(t, "", normalizeCommandName("   "))
}

func TestIsConsoleCommand(t *testing.T) {
	assert.True(t, isConsoleCommand(":help"))
	assert.True(t, isConsoleCommand("  :q"))
	assert.False(t, isConsoleCommand("SHOW DATABASES"))
	assert.False(t, isConsoleCommand("SELECT ':' FROM t"))
}

func TestGetAllCommandsKeepsOrder(t *testing.T) {
	registry := NewCommandRegistry()

	var names []string
	for _, cmd := range registry.GetAllCommands() {
		names = append(names, cmd.Name)
		assert.NotEmpty(t, cmd.Description)
	}
	assert.Equal(t, []string{":help", ":history", ":clear", ":export", ":server", ":quit"}, names)
}

func TestRegisterCommandReplaces(t *testing.T) {
	registry := NewCommandRegistry()
	registry.RegisterCommand("help", "custom", handleHelpCommand)

	cmd, ok := registry.GetCommand(":help")
	require.True(t, ok)
	assert.Equal(t, "custom", cmd.Description)
	assert.Len(t, registry.GetAllCommands(), 6)
}

func TestRunAmbiguousCommand(t *testing.T) {
	m := newTestModel(t, &fakeQuerier{})

	cmd := m.commandRegistry.Run(&m, ":h")

	assert.Nil(t, cmd)
	toasts := m.commandLine.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "warning", toasts[0].Type)
	assert.Contains(t, toasts[0].Message, ":help")
	assert.Contains(t, toasts[0].Message, ":history")
}

func TestHistoryCommandFilters(t *testing.T) {
	q := &fakeQuerier{replies: map[string]string{
		"SHOW DATABASES":    `{"status":"success","databases":[]}`,
		"USE DATABASE shop": `{"status":"success","message":"ok"}`,
	}}
	m := newTestModel(t, q)
	m = submitText(t, m, "SHOW DATABASES")
	m = submitText(t, m, "USE DATABASE shop")

	cmd := m.commandRegistry.Run(&m, ":history shop")
	require.NotNil(t, cmd)

	assert.Equal(t, ViewHistory, m.content.GetActiveView())
	assert.Equal(t, "shop", m.content.history.Filter())
	assert.Equal(t, 1, m.content.history.GetItemCount())
}

func TestExportCommandRejectsUnknownType(t *testing.T) {
	m := newTestModel(t, &fakeQuerier{})

	cmd := m.commandRegistry.Run(&m, ":export pdf")

	assert.Nil(t, cmd)
	toasts := m.commandLine.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "error", toasts[0].Type)
	assert.Contains(t, toasts[0].Message, "unknown export type 'pdf'")
}

func TestServerCommandWithoutSource(t *testing.T) {
	m := newTestModel(t, &fakeQuerier{})

	cmd := m.commandRegistry.Run(&m, ":server")

	assert.Nil(t, cmd)
	toasts := m.commandLine.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "error", toasts[0].Type)
}

func TestQuitCommand(t *testing.T) {
	m := newTestModel(t, &fakeQuerier{})

	m.content.ShowHelp("index")
	cmd := m.commandRegistry.Run(&m, ":q")
	require.NotNil(t, cmd)
	assert.Equal(t, ViewResults, m.content.GetActiveView(), "quit leaves a side view first")

	cmd = m.commandRegistry.Run(&m, ":q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
