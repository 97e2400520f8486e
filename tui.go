package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	ctrlCDebounceTime = 200 * time.Millisecond  // Debounce duplicate ctrl-c events
	ctrlCWindowTime   = 2000 * time.Millisecond // Window for double ctrl-c to quit
)

// serverInfoSource fetches the service description for :server
type serverInfoSource interface {
	Info(ctx context.Context) (ServerInfo, error)
}

// TUIModel represents the bubbletea model for the console
type TUIModel struct {
	config    *Config
	console   *Console
	info      serverInfoSource
	logger    *slog.Logger
	serverURL string
	timeout   time.Duration
	ctx       context.Context

	width, height int
	theme         *Theme

	// UI Components
	prompt      PromptComponent
	status      StatusComponent
	content     ContentComponent
	commandLine *CommandLineComponent

	commandRegistry CommandRegistry

	// errorText is shown on the banner above the prompt
	errorText string

	// History navigation over accepted commands
	historyCursor        int
	historySaved         bool
	historyPendingPrompt string

	ctrlCPressedTime time.Time
}

// submissionDoneMsg carries the outcome of a request back to the event loop
type submissionDoneMsg struct {
	outcome Outcome
}

// NewTUIModel creates a new TUI model
func NewTUIModel(config *Config, console *Console, info serverInfoSource, logger *slog.Logger) *TUIModel {
	if config == nil {
		config = defaultConfig()
	}
	if config.Server.Timeout <= 0 {
		config.Server.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	theme := NewTheme()

	model := &TUIModel{
		config:          config,
		console:         console,
		info:            info,
		logger:          logger,
		serverURL:       config.Server.URL,
		timeout:         config.Server.Timeout,
		ctx:             context.Background(),
		theme:           theme,
		prompt:          NewPromptComponent(80, 2),
		status:          NewStatusComponent(80, config.Server.URL),
		content:         NewContentComponent(80, 18, config.UI.Markdown, config.Server.URL),
		commandLine:     NewCommandLineComponent(),
		commandRegistry: NewCommandRegistry(),
	}
	model.syncFromConsole()
	return model
}

// Init implements bubbletea.Model
func (m TUIModel) Init() tea.Cmd {
	return nil
}

// Update implements bubbletea.Model
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	start := time.Now()
	defer func() {
		if duration := time.Since(start); duration > 100*time.Millisecond {
			slog.Warn("[bubbletea] Update() SLOW", "duration", duration, "msg_type", fmt.Sprintf("%T", msg))
		}
	}()

	// Update command line to remove expired toasts
	m.commandLine.Update()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.content, cmd = m.content.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateComponentDimensions()
		return m, nil

	default:
		return m.handleCustomMessages(msg)
	}
}

// handleKeyMsg processes keyboard input
func (m TUIModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	// Ignore terminal query responses such as ]11;rgb:... or [1;1R
	if strings.HasPrefix(keyStr, "]") || strings.Contains(keyStr, "rgb:") {
		return m, nil
	}
	if strings.HasPrefix(keyStr, "[") && strings.HasSuffix(keyStr, "R") && strings.Contains(keyStr, ";") {
		return m, nil
	}

	if keyStr == "ctrl+c" && m.content.GetActiveView() == ViewResults {
		return m.handleCtrlC()
	}
	if !m.ctrlCPressedTime.IsZero() {
		m.ctrlCPressedTime = time.Time{}
	}

	if m.content.GetActiveView() != ViewResults {
		var cmd tea.Cmd
		m.content, cmd = m.content.Update(msg)
		return m, cmd
	}

	switch keyStr {
	case "enter":
		return m.submit(false)
	case "alt+enter":
		return m.submit(true)
	case "ctrl+l":
		return m, handleClearCommand(&m, nil)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.content, cmd = m.content.Update(msg)
		return m, cmd
	case "up":
		if m.prompt.OnFirstLine() {
			if handled := m.handleHistoryNavigation(-1); handled {
				return m, nil
			}
		}
	case "down":
		if m.prompt.OnLastLine() {
			if handled := m.handleHistoryNavigation(1); handled {
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	m.updateComponentDimensions()
	return m, cmd
}

// handleCtrlC cancels a running request on the first press and quits on the second
func (m TUIModel) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()
	timeSinceFirst := now.Sub(m.ctrlCPressedTime)
	slog.Debug("Got CTRL-C", "ctrlCPressed", !m.ctrlCPressedTime.IsZero(), "timeSinceFirst", timeSinceFirst)

	// Ignore duplicate ctrl-c events within debounce window
	if !m.ctrlCPressedTime.IsZero() && timeSinceFirst < ctrlCDebounceTime {
		return m, nil
	}
	if !m.ctrlCPressedTime.IsZero() && timeSinceFirst < ctrlCWindowTime {
		m.console.Cancel()
		return m, tea.Quit
	}

	m.ctrlCPressedTime = now
	if m.console.Cancel() {
		m.commandLine.AddToast("Request canceled. Press CTRL-C again in less than 2s to exit", "info", 3*time.Second)
		return m, nil
	}
	m.commandLine.AddToast("Press CTRL-C in less than 2s to exit", "info", 3*time.Second)
	return m, nil
}

// submit starts a submission for the prompt text. force skips the loading gate.
func (m TUIModel) submit(force bool) (tea.Model, tea.Cmd) {
	raw := m.prompt.Value()
	if strings.TrimSpace(raw) == "" {
		return m, nil
	}

	if isConsoleCommand(raw) {
		m.prompt.Reset()
		m.resetHistoryNavigation()
		m.updateComponentDimensions()
		return m, m.commandRegistry.Run(&m, raw)
	}

	sub, ok := m.console.Begin(m.ctx, raw, force)
	if !ok {
		m.commandLine.AddToast("A command is still running. Alt+Enter sends anyway", "warning", toastTimeout)
		return m, nil
	}
	m.logger.Debug("submitting", "seq", sub.Seq, "command", sub.Command, "force", force)

	m.commandLine.ClearToasts()
	m.prompt.Reset()
	m.resetHistoryNavigation()
	m.syncFromConsole()

	return m, tea.Batch(m.status.StartWaiting(), m.runSubmission(sub))
}

// runSubmission performs the request off the event loop
func (m *TUIModel) runSubmission(sub *Submission) tea.Cmd {
	console := m.console
	return func() tea.Msg {
		return submissionDoneMsg{outcome: console.Execute(sub)}
	}
}

// handleCustomMessages handles all custom message types
func (m TUIModel) handleCustomMessages(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submissionDoneMsg:
		out := msg.outcome
		if !m.console.Complete(out) {
			return m, nil
		}
		switch {
		case out.Canceled():
			m.commandLine.AddToast("Canceled", "info", toastTimeout)
		case out.Err != nil:
			m.status.SetError()
		default:
			m.status.SetConnected(true)
			if !IsFailure(out.Response) {
				m.content.Results().SetResult(out.Command, m.console.Snapshot().Result, out.Duration)
			}
		}
		m.syncFromConsole()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.status, cmd = m.status.Update(msg)
		return m, cmd

	case ChangeModeMsg:
		m.status.SetView(msg.View)
		if msg.View == ViewResults {
			m.prompt.Focus()
		} else {
			m.prompt.Blur()
		}
		return m, nil

	case showHelpMsg:
		return m, m.content.ShowHelp(msg.topic)

	case historySelectedMsg:
		m.prompt.SetValue(msg.command)
		m.prompt.TextArea.CursorEnd()
		m.resetHistoryNavigation()
		m.updateComponentDimensions()
		return m, nil

	case serverInfoMsg:
		if msg.err != nil {
			m.logger.Warn("failed to fetch server info", "error", msg.err)
			m.status.SetError()
			m.commandLine.AddToast(connectivityNotice, "error", toastTimeout)
			return m, nil
		}
		m.status.SetConnected(true)
		title := msg.info.Name
		if title == "" {
			title = "Server"
		}
		return m, m.content.ShowServer(title, msg.info.Markdown(m.serverURL))

	case exportDoneMsg:
		if msg.err != nil {
			m.commandLine.AddToast(fmt.Sprintf("Editor exited with error: %v", msg.err), "error", toastTimeout)
			return m, nil
		}
		m.commandLine.AddToast(fmt.Sprintf("Exported to %s", msg.path), "success", toastTimeout)
		return m, nil
	}
	return m, nil
}

// syncFromConsole copies the console state into the status bar, banner and panel
func (m *TUIModel) syncFromConsole() {
	snap := m.console.Snapshot()
	m.status.SetSession(snap.State, len(snap.History))
	if !snap.Loading {
		m.status.StopWaiting()
	}
	m.prompt.SetBusy(snap.Loading)
	m.errorText = snap.Error
	if snap.Result == nil && m.content.Results().Result() != nil {
		m.content.Results().Clear()
	}
	m.updateComponentDimensions()
}

func (m *TUIModel) resetHistoryNavigation() {
	m.historyCursor = len(m.console.History())
	m.historySaved = false
	m.historyPendingPrompt = ""
}

// handleHistoryNavigation walks accepted commands. direction < 0 goes older.
func (m *TUIModel) handleHistoryNavigation(direction int) bool {
	history := m.console.History()
	if len(history) == 0 {
		return false
	}
	if m.historyCursor > len(history) || (!m.historySaved && m.historyCursor != len(history)) {
		m.historyCursor = len(history)
	}

	switch {
	case direction < 0:
		if !m.historySaved {
			m.historyPendingPrompt = m.prompt.Value()
			m.historySaved = true
			m.historyCursor = len(history)
		}
		if m.historyCursor > 0 {
			m.historyCursor--
		}
		m.prompt.SetValue(history[m.historyCursor])
		m.prompt.TextArea.CursorEnd()
		m.updateComponentDimensions()
		return true

	case direction > 0:
		if !m.historySaved {
			return false
		}
		if m.historyCursor < len(history)-1 {
			m.historyCursor++
			m.prompt.SetValue(history[m.historyCursor])
		} else {
			// Past the newest entry, restore what was being typed
			m.historyCursor = len(history)
			m.prompt.SetValue(m.historyPendingPrompt)
			m.historySaved = false
		}
		m.prompt.TextArea.CursorEnd()
		m.updateComponentDimensions()
		return true
	}
	return false
}

func (m *TUIModel) updateComponentDimensions() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// Layout, bottom to top: command line, status line, prompt, error
	// banner, then content takes the remaining space.
	commandLineHeight := 1
	statusHeight := 1
	width := m.width - 2

	m.prompt.SetScreenHeight(m.height)
	promptHeight := m.prompt.CalculateDesiredHeight()
	promptWithBorder := promptHeight + 2

	bannerHeight := 0
	if m.errorText != "" {
		bannerHeight = lipgloss.Height(renderErrorBanner(m.errorText, m.width))
	}

	contentHeight := max(m.height-commandLineHeight-statusHeight-promptWithBorder-bannerHeight, 0)

	m.status.SetWidth(m.width)
	m.commandLine.SetWidth(m.width)
	m.content.SetSize(width, contentHeight)
	m.prompt.SetWidth(width)
	m.prompt.SetHeight(promptHeight)
}

// View implements bubbletea.Model
func (m TUIModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	parts := []string{m.content.View()}
	if m.errorText != "" {
		parts = append(parts, renderErrorBanner(m.errorText, m.width))
	}
	parts = append(parts,
		m.prompt.View(),
		m.status.View(),
		m.commandLine.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
