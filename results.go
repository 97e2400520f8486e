package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	commandPrefix = "❯ "
	welcomeText   = "Connected to %s\nType a command and press Enter. :help shows what is available."
)

// ResultsComponent shows the last accepted command and its result
type ResultsComponent struct {
	Viewport viewport.Model
	Width    int
	Height   int
	Style    lipgloss.Style

	serverURL string
	command   string
	duration  time.Duration
	result    *Result
}

// NewResultsComponent creates a new results component
func NewResultsComponent(width, height int, serverURL string) ResultsComponent {
	r := ResultsComponent{
		Viewport:  viewport.New(width, height),
		Width:     width,
		Height:    height,
		serverURL: serverURL,
		Style: lipgloss.NewStyle().
			Width(width).
			Height(height),
	}
	r.UpdateContent()
	return r
}

// SetSize updates the width & height of the results component
func (r *ResultsComponent) SetSize(width, height int) {
	if height < 0 {
		height = 0
	}
	r.Width = width
	r.Height = height
	r.Style = r.Style.Width(width).Height(height)
	r.Viewport.Width = width
	r.Viewport.Height = height
	r.UpdateContent()
}

// SetResult displays res as the reply to command. A nil result shows the
// welcome text.
func (r *ResultsComponent) SetResult(command string, res *Result, duration time.Duration) {
	r.command = command
	r.result = res
	r.duration = duration
	r.UpdateContent()
	r.Viewport.GotoTop()
}

// Clear empties the panel
func (r *ResultsComponent) Clear() {
	r.SetResult("", nil, 0)
}

// Result returns what is displayed, or nil.
func (r *ResultsComponent) Result() *Result {
	return r.result
}

// UpdateContent re-renders the viewport content for the current width
func (r *ResultsComponent) UpdateContent() {
	if r.result == nil {
		msg := fmt.Sprintf(welcomeText, r.serverURL)
		r.Viewport.SetContent(globalTheme.EmptyState.Render(wordwrap.String(msg, max(r.Width, 10))))
		return
	}

	header := globalTheme.ActiveItem.Render(commandPrefix) + wordwrap.String(oneLine(r.command), max(r.Width-4, 10))
	if r.duration > 0 {
		header += globalTheme.EmptyState.Render(fmt.Sprintf("  (%s)", r.duration.Round(time.Millisecond)))
	}
	r.Viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		renderResultView(*r.result, r.Width),
	))
}

// Update handles scrolling
func (r ResultsComponent) Update(msg tea.Msg) (ResultsComponent, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			r.Viewport.ScrollUp(1)
		case tea.MouseButtonWheelDown:
			r.Viewport.ScrollDown(1)
		}
		return r, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			r.Viewport.HalfPageUp()
		case "pgdown":
			r.Viewport.HalfPageDown()
		}
		return r, nil
	}
	var cmd tea.Cmd
	r.Viewport, cmd = r.Viewport.Update(msg)
	return r, cmd
}

// View renders the results component
func (r ResultsComponent) View() string {
	return r.Style.Render(r.Viewport.View())
}
