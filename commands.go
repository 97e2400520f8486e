package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const toastTimeout = 3 * time.Second

// Command represents a console command. Console commands start with ':'
// and are never sent to the server.
type Command struct {
	Name        string
	Description string
	Handler     func(*TUIModel, []string) tea.Cmd
}

// CommandRegistry holds all available commands
type CommandRegistry struct {
	Commands map[string]Command
	order    []string
}

func normalizeCommandName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "/") {
		return ":" + strings.TrimPrefix(name, "/")
	}
	if !strings.HasPrefix(name, ":") {
		return ":" + name
	}
	return name
}

// isConsoleCommand reports whether input is addressed to mascot itself
func isConsoleCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), ":")
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() CommandRegistry {
	registry := CommandRegistry{
		Commands: make(map[string]Command),
	}

	registry.RegisterCommand(":help", "Show help (usage: :help [topic])", handleHelpCommand)
	registry.RegisterCommand(":history", "Browse accepted commands (usage: :history [filter])", handleHistoryCommand)
	registry.RegisterCommand(":clear", "Clear the results panel and the error banner", handleClearCommand)
	registry.RegisterCommand(":export", "Export the session and open it in $EDITOR (usage: :export [transcript|script])", handleExportCommand)
	registry.RegisterCommand(":server", "Show server information", handleServerCommand)
	registry.RegisterCommand(":quit", "Quit the application", handleQuitCommand)

	return registry
}

// RegisterCommand registers a new command
func (cr *CommandRegistry) RegisterCommand(name, description string, handler func(*TUIModel, []string) tea.Cmd) {
	normalized := normalizeCommandName(name)
	if normalized == "" {
		return
	}
	if _, exists := cr.Commands[normalized]; !exists {
		cr.order = append(cr.order, normalized)
	}
	cr.Commands[normalized] = Command{
		Name:        normalized,
		Description: description,
		Handler:     handler,
	}
}

// GetCommand gets a command by name
func (cr CommandRegistry) GetCommand(name string) (Command, bool) {
	cmd, exists := cr.Commands[normalizeCommandName(name)]
	return cmd, exists
}

// FindCommand finds commands by prefix (like vim).
// found is true only when exactly one command matches.
func (cr CommandRegistry) FindCommand(prefix string) (exactMatch Command, matches []string, found bool) {
	normalized := normalizeCommandName(prefix)
	if normalized == "" || normalized == ":" {
		return Command{}, nil, false
	}

	if cmd, exists := cr.Commands[normalized]; exists {
		return cmd, []string{normalized}, true
	}

	var matched []string
	for _, name := range cr.order {
		if strings.HasPrefix(name, normalized) {
			matched = append(matched, name)
		}
	}
	if len(matched) == 1 {
		return cr.Commands[matched[0]], matched, true
	}
	return Command{}, matched, false
}

// GetAllCommands returns all registered commands
func (cr CommandRegistry) GetAllCommands() []Command {
	commands := make([]Command, 0, len(cr.order))
	for _, name := range cr.order {
		if cmd, ok := cr.Commands[name]; ok {
			commands = append(commands, cmd)
		}
	}
	return commands
}

// Run resolves and executes a console command line such as ":h keys"
func (cr CommandRegistry) Run(model *TUIModel, input string) tea.Cmd {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return nil
	}
	cmd, matches, found := cr.FindCommand(fields[0])
	if !found {
		if len(matches) > 1 {
			model.commandLine.AddToast(fmt.Sprintf("Ambiguous command %s: %s", fields[0], strings.Join(matches, ", ")), "warning", toastTimeout)
			return nil
		}
		model.commandLine.AddToast(fmt.Sprintf("Unknown command: %s", fields[0]), "error", toastTimeout)
		return nil
	}
	return cmd.Handler(model, fields[1:])
}

// Command handlers

type showHelpMsg struct {
	topic string
}

type serverInfoMsg struct {
	info ServerInfo
	err  error
}

type exportDoneMsg struct {
	path string
	err  error
}

func handleHelpCommand(model *TUIModel, args []string) tea.Cmd {
	topic := "index"
	if len(args) > 0 {
		topic = args[0]
	}
	return func() tea.Msg {
		return showHelpMsg{topic: topic}
	}
}

func handleHistoryCommand(model *TUIModel, args []string) tea.Cmd {
	return model.content.ShowHistory(model.console.History(), strings.Join(args, " "))
}

func handleClearCommand(model *TUIModel, args []string) tea.Cmd {
	model.console.ClearResult()
	model.syncFromConsole()
	return nil
}

func handleServerCommand(model *TUIModel, args []string) tea.Cmd {
	if model.info == nil {
		model.commandLine.AddToast("Server information is not available", "error", toastTimeout)
		return nil
	}
	model.commandLine.AddToast("Fetching server information...", "info", toastTimeout)
	info := model.info
	timeout := model.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		si, err := info.Info(ctx)
		return serverInfoMsg{info: si, err: err}
	}
}

func handleExportCommand(model *TUIModel, args []string) tea.Cmd {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	exportType, err := parseExportType(arg)
	if err != nil {
		model.commandLine.AddToast(err.Error(), "error", toastTimeout)
		return nil
	}

	snap := model.console.Snapshot()
	meta := exportMeta{
		SessionID: model.console.SessionID(),
		ServerURL: model.serverURL,
		Database:  snap.State.CurrentDatabase,
	}
	path, err := exportJournal(model.console.Journal(), meta, exportType)
	if err != nil {
		model.commandLine.AddToast(fmt.Sprintf("Export failed: %v", err), "error", toastTimeout)
		return nil
	}

	return tea.ExecProcess(openInEditor(path), func(err error) tea.Msg {
		return exportDoneMsg{path: path, err: err}
	})
}

func handleQuitCommand(model *TUIModel, args []string) tea.Cmd {
	// From help, history or server views go back to the results panel
	if model.content.GetActiveView() != ViewResults {
		return model.content.ShowResults()
	}
	model.console.Cancel()
	return tea.Quit
}
