package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusComponent represents the status bar component
type StatusComponent struct {
	ServerURL    string
	Database     string
	HasDatabase  bool
	HistoryCount int
	Connected    bool
	HasError     bool
	Width        int
	Style        lipgloss.Style
	view         ViewType

	spinner            spinner.Model
	waitingForResponse bool
	waitingSince       time.Time
}

// NewStatusComponent creates a new status component
func NewStatusComponent(width int, serverURL string) StatusComponent {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(globalTheme.Warning)
	return StatusComponent{
		ServerURL: serverURL,
		Width:     width,
		Style: lipgloss.NewStyle().
			Foreground(globalTheme.TextColor),
		spinner: sp,
	}
}

// SetSession copies the session state into the status bar
func (s *StatusComponent) SetSession(state SessionState, historyCount int) {
	s.Database = state.CurrentDatabase
	s.HasDatabase = state.HasDatabase
	s.HistoryCount = historyCount
}

// SetView records which view has focus
func (s *StatusComponent) SetView(v ViewType) {
	s.view = v
}

// StartWaiting marks the status bar as waiting for a reply and starts the spinner
func (s *StatusComponent) StartWaiting() tea.Cmd {
	wasWaiting := s.waitingForResponse
	s.waitingForResponse = true
	s.waitingSince = time.Now()
	if wasWaiting {
		return nil
	}
	return s.spinner.Tick
}

// StopWaiting clears the waiting indicator
func (s *StatusComponent) StopWaiting() {
	s.waitingForResponse = false
}

// IsWaiting reports whether a request is in flight
func (s StatusComponent) IsWaiting() bool {
	return s.waitingForResponse
}

// SetConnected records the outcome of the last exchange with the server
func (s *StatusComponent) SetConnected(connected bool) {
	s.Connected = connected
	if connected {
		s.HasError = false
	}
}

// SetError marks the status component as having an error
func (s *StatusComponent) SetError() {
	s.HasError = true
}

// ClearError clears the error state
func (s *StatusComponent) ClearError() {
	s.HasError = false
}

// getStatusIcon returns the appropriate status icon based on connection and error state
func (s StatusComponent) getStatusIcon() string {
	if s.HasError {
		return "❌"
	}
	if s.Connected {
		return "✅"
	}
	return "🔌"
}

// SetWidth updates the width of the status component
func (s *StatusComponent) SetWidth(width int) {
	s.Width = width
}

// Update advances the spinner while waiting
func (s StatusComponent) Update(msg tea.Msg) (StatusComponent, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok {
		if !s.waitingForResponse {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

// View renders the status component
func (s StatusComponent) View() string {
	leftSection := s.renderLeftSection()
	middleSection := s.renderMiddleSection()
	rightSection := s.renderRightSection()

	leftWidth := lipgloss.Width(leftSection)
	rightWidth := lipgloss.Width(rightSection)
	middleWidth := lipgloss.Width(middleSection)

	availableSpace := s.Width
	if leftWidth+middleWidth+rightWidth > availableSpace {
		if leftWidth+rightWidth > availableSpace {
			maxRightWidth := availableSpace - leftWidth - 3 // Leave space for "..."
			if maxRightWidth > 0 {
				rightSection = s.truncateString(rightSection, maxRightWidth)
			} else {
				rightSection = ""
			}
		}
		middleSection = ""
	}

	leftWidth = lipgloss.Width(leftSection)
	rightWidth = lipgloss.Width(rightSection)
	middleWidth = lipgloss.Width(middleSection)

	var statusLine string
	if middleSection != "" {
		total := leftWidth + middleWidth + rightWidth
		leftSpacing := (availableSpace - total) / 2
		rightSpacing := availableSpace - total - leftSpacing
		statusLine = leftSection + strings.Repeat(" ", leftSpacing) + middleSection + strings.Repeat(" ", rightSpacing) + rightSection
	} else {
		spacing := max(availableSpace-leftWidth-rightWidth, 0)
		statusLine = leftSection + strings.Repeat(" ", spacing) + rightSection
	}

	return s.Style.
		Width(s.Width).
		Render(statusLine)
}

// renderLeftSection renders the focused view and the database in use
func (s StatusComponent) renderLeftSection() string {
	parts := []string{" " + s.view.String()}
	if !s.HasDatabase {
		parts = append(parts, lipgloss.NewStyle().Foreground(globalTheme.Muted).Render("🗄 no database"))
		return strings.Join(parts, " ")
	}
	db := s.Database
	if db == "" {
		db = `""`
	}
	parts = append(parts, "🗄 "+lipgloss.NewStyle().Foreground(globalTheme.Warning).Render(db))
	return strings.Join(parts, " ")
}

// renderMiddleSection renders the history count and the waiting indicator
func (s StatusComponent) renderMiddleSection() string {
	statusStr := fmt.Sprintf("📜 %d", s.HistoryCount)
	if s.waitingForResponse {
		statusStr += "  " + s.spinner.View()
		if !s.waitingSince.IsZero() {
			if waited := int(time.Since(s.waitingSince).Seconds()); waited >= 3 {
				statusStr += fmt.Sprintf(" %ds", waited)
			}
		}
	}
	return lipgloss.NewStyle().Foreground(globalTheme.TextColor).Render(statusStr)
}

// renderRightSection renders the server address and connection icon
func (s StatusComponent) renderRightSection() string {
	server := strings.TrimPrefix(strings.TrimPrefix(s.ServerURL, "http://"), "https://")
	return fmt.Sprintf("%s %s ", lipgloss.NewStyle().Foreground(globalTheme.TextColor).Render(server), s.getStatusIcon())
}

// truncateString truncates a string to fit within maxWidth, adding "..." if needed
func (s StatusComponent) truncateString(str string, maxWidth int) string {
	if lipgloss.Width(str) <= maxWidth {
		return str
	}
	if maxWidth <= 3 {
		return "..."
	}

	left, right := 0, len(str)
	for left < right {
		mid := (left + right + 1) / 2
		if lipgloss.Width(str[:mid]+"...") <= maxWidth {
			left = mid
		} else {
			right = mid - 1
		}
	}
	if left == 0 {
		return "..."
	}
	return str[:left] + "..."
}
