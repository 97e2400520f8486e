package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewType represents the active view
type ViewType int

const (
	ViewResults ViewType = iota
	ViewHelp
	ViewHistory
	ViewServer
)

// String names the view for the status bar
func (v ViewType) String() string {
	switch v {
	case ViewHelp:
		return "HELP"
	case ViewHistory:
		return "HISTORY"
	case ViewServer:
		return "SERVER"
	}
	return "PROMPT"
}

// NavigationMode represents how navigation works in the current view
type NavigationMode int

const (
	NavText NavigationMode = iota // Text scrolling (results, help, server)
	NavList                       // List selection (history)
)

// ChangeModeMsg tells the model which view now has focus
type ChangeModeMsg struct {
	View ViewType
}

// historySelectedMsg carries a history entry chosen from the history view
type historySelectedMsg struct {
	command string
}

// ContentComponent manages all main content views with unified navigation
type ContentComponent struct {
	activeView ViewType
	width      int
	height     int

	results ResultsComponent
	help    HelpWindow
	history HistoryWindow

	navMode      NavigationMode
	viewport     viewport.Model // For text navigation
	selectedItem int            // For list navigation
	scrollOffset int            // For list navigation

	// Exit handling
	lastEscapeTime time.Time
	escDebounceMs  int
}

// NewContentComponent creates a new content component
func NewContentComponent(width, height int, markdownEnabled bool, serverURL string) ContentComponent {
	return ContentComponent{
		activeView:    ViewResults,
		width:         width,
		height:        height,
		results:       NewResultsComponent(width, height, serverURL),
		help:          NewHelpWindow(markdownEnabled),
		history:       NewHistoryWindow(),
		navMode:       NavText,
		viewport:      viewport.New(width, height),
		escDebounceMs: 300,
	}
}

// SetSize updates the dimensions
func (c *ContentComponent) SetSize(width, height int) {
	c.width = width
	c.height = height
	// title bar
	c.viewport.Width = width
	c.viewport.Height = max(height-1, 0)
	c.results.SetSize(width, height)
	c.help.SetSize(width, height)
	c.history.SetSize(width, height)
	if c.activeView == ViewHelp || c.activeView == ViewServer {
		c.viewport.SetContent(c.help.RenderContent())
	}
}

// GetActiveView returns the current view type
func (c *ContentComponent) GetActiveView() ViewType {
	return c.activeView
}

// Results returns the results panel
func (c *ContentComponent) Results() *ResultsComponent {
	return &c.results
}

func changeMode(v ViewType) tea.Cmd {
	return func() tea.Msg { return ChangeModeMsg{View: v} }
}

// ShowResults switches back to the results panel
func (c *ContentComponent) ShowResults() tea.Cmd {
	c.activeView = ViewResults
	c.navMode = NavText
	return changeMode(ViewResults)
}

// ShowHelp switches to help view
func (c *ContentComponent) ShowHelp(topic string) tea.Cmd {
	c.activeView = ViewHelp
	c.navMode = NavText
	c.help.SetTopic(topic)
	c.viewport.SetContent(c.help.RenderContent())
	c.viewport.GotoTop()
	return changeMode(ViewHelp)
}

// ShowServer displays server information as markdown
func (c *ContentComponent) ShowServer(title, markdown string) tea.Cmd {
	c.activeView = ViewServer
	c.navMode = NavText
	c.help.SetPage(title, markdown)
	c.viewport.SetContent(c.help.RenderContent())
	c.viewport.GotoTop()
	return changeMode(ViewServer)
}

// ShowHistory switches to the history list
func (c *ContentComponent) ShowHistory(history []string, filter string) tea.Cmd {
	c.activeView = ViewHistory
	c.navMode = NavList
	c.history.SetHistory(history, filter)
	c.selectedItem = 0
	c.scrollOffset = 0
	return changeMode(ViewHistory)
}

// Update handles messages and navigation
func (c *ContentComponent) Update(msg tea.Msg) (ContentComponent, tea.Cmd) {
	if c.activeView == ViewResults {
		var cmd tea.Cmd
		c.results, cmd = c.results.Update(msg)
		return *c, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := c.handleExitKeys(msg); cmd != nil {
			return *c, cmd
		}
		switch c.navMode {
		case NavText:
			c.handleTextNavigation(msg)
		case NavList:
			return *c, c.handleListNavigation(msg)
		}

	case tea.MouseMsg:
		if c.navMode == NavText {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				c.viewport.ScrollUp(1)
			case tea.MouseButtonWheelDown:
				c.viewport.ScrollDown(1)
			}
		}
	}

	return *c, nil
}

// handleExitKeys handles Esc, q and Ctrl+C for leaving a view
func (c *ContentComponent) handleExitKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return c.ShowResults()
	case "esc":
		now := time.Now()
		if !c.lastEscapeTime.IsZero() && now.Sub(c.lastEscapeTime) < time.Duration(c.escDebounceMs)*time.Millisecond {
			c.lastEscapeTime = time.Time{}
			return c.ShowResults()
		}
		c.lastEscapeTime = now
	}
	return nil
}

// handleTextNavigation handles navigation for the help and server views
func (c *ContentComponent) handleTextNavigation(msg tea.KeyMsg) {
	switch msg.String() {
	case "j", "down":
		c.viewport.ScrollDown(1)
	case "k", "up":
		c.viewport.ScrollUp(1)
	case "ctrl+d":
		c.viewport.HalfPageDown()
	case "ctrl+u":
		c.viewport.HalfPageUp()
	case "ctrl+f", "pgdown":
		c.viewport.PageDown()
	case "ctrl+b", "pgup":
		c.viewport.PageUp()
	case "g", "home":
		c.viewport.GotoTop()
	case "G", "end":
		c.viewport.GotoBottom()
	}
}

// handleListNavigation handles navigation for the history list
func (c *ContentComponent) handleListNavigation(msg tea.KeyMsg) tea.Cmd {
	itemCount := c.history.GetItemCount()
	visibleSlots := c.history.GetVisibleSlots()
	if itemCount == 0 {
		return nil
	}

	switch msg.String() {
	case "j", "down":
		if c.selectedItem < itemCount-1 {
			c.selectedItem++
		}
	case "k", "up":
		if c.selectedItem > 0 {
			c.selectedItem--
		}
	case "ctrl+d":
		c.selectedItem = min(c.selectedItem+max(visibleSlots/2, 1), itemCount-1)
	case "ctrl+u":
		c.selectedItem = max(c.selectedItem-max(visibleSlots/2, 1), 0)
	case "g", "home":
		c.selectedItem = 0
	case "G", "end":
		c.selectedItem = itemCount - 1
	case "enter":
		if item := c.history.GetSelectedItem(c.selectedItem); item != nil {
			command := item.Command
			return tea.Batch(
				c.ShowResults(),
				func() tea.Msg { return historySelectedMsg{command: command} },
			)
		}
	}

	if c.selectedItem >= c.scrollOffset+visibleSlots {
		c.scrollOffset = c.selectedItem - visibleSlots + 1
	}
	if c.selectedItem < c.scrollOffset {
		c.scrollOffset = c.selectedItem
	}
	return nil
}

// View renders the active view
func (c *ContentComponent) View() string {
	switch c.activeView {
	case ViewHelp:
		return c.renderTextView(fmt.Sprintf(" Help: %s ", c.help.GetTopic()))
	case ViewServer:
		return c.renderTextView(fmt.Sprintf(" %s ", c.help.GetTopic()))
	case ViewHistory:
		return lipgloss.NewStyle().
			Height(c.height).
			Render(c.history.RenderList(c.selectedItem, c.scrollOffset))
	}
	return c.results.View()
}

// renderTextView renders a titled viewport
func (c *ContentComponent) renderTextView(title string) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(globalTheme.PromptBorder).
		Background(globalTheme.PaneBackground).
		Padding(0, 1)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		c.viewport.View(),
	)

	return lipgloss.NewStyle().
		Height(c.height).
		Render(content)
}
