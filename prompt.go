package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// Placeholder text constants
const (
	PlaceholderDefault = "Type a command. Enter to run, Ctrl+J for a new line, :help for help"
	PlaceholderBusy    = "Waiting for the server. Alt+Enter runs anyway, Ctrl+C cancels"
)

// PromptComponent represents the command input area
type PromptComponent struct {
	TextArea     textarea.Model
	Height       int
	Width        int
	MaxHeight    int // Maximum height (50% of screen height)
	ScreenHeight int // Total screen height
	Style        lipgloss.Style
	busy         bool
}

// NewPromptComponent creates a new prompt component
func NewPromptComponent(width, height int) PromptComponent {
	ta := textarea.New()
	ta.Placeholder = PlaceholderDefault
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.Focus()

	ta.SetWidth(width - 2) // Account for borders
	ta.SetHeight(height)

	// Enter submits; it is handled by the TUI before reaching the textarea
	ta.KeyMap = textarea.KeyMap{
		CharacterBackward:          key.NewBinding(key.WithKeys("left", "ctrl+b")),
		CharacterForward:           key.NewBinding(key.WithKeys("right", "ctrl+f")),
		DeleteAfterCursor:          key.NewBinding(key.WithKeys("ctrl+k")),
		DeleteBeforeCursor:         key.NewBinding(key.WithKeys("ctrl+u")),
		DeleteCharacterBackward:    key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
		DeleteCharacterForward:     key.NewBinding(key.WithKeys("delete", "ctrl+d")),
		DeleteWordBackward:         key.NewBinding(key.WithKeys("ctrl+w", "alt+backspace")),
		DeleteWordForward:          key.NewBinding(key.WithKeys("alt+d", "alt+delete")),
		InsertNewline:              key.NewBinding(key.WithKeys("ctrl+j")),
		LineEnd:                    key.NewBinding(key.WithKeys("end", "ctrl+e")),
		LineStart:                  key.NewBinding(key.WithKeys("home", "ctrl+a")),
		LineNext:                   key.NewBinding(key.WithKeys("down")),
		LinePrevious:               key.NewBinding(key.WithKeys("up")),
		Paste:                      key.NewBinding(key.WithKeys("ctrl+v")),
		WordBackward:               key.NewBinding(key.WithKeys("alt+left", "alt+b")),
		WordForward:                key.NewBinding(key.WithKeys("alt+right", "alt+f")),
		InputBegin:                 key.NewBinding(key.WithKeys("ctrl+home")),
		InputEnd:                   key.NewBinding(key.WithKeys("ctrl+end")),
		UppercaseWordForward:       key.NewBinding(key.WithKeys("alt+u")),
		LowercaseWordForward:       key.NewBinding(key.WithKeys("alt+l")),
		CapitalizeWordForward:      key.NewBinding(key.WithKeys("alt+c")),
		TransposeCharacterBackward: key.NewBinding(key.WithKeys("ctrl+t")),
	}

	return PromptComponent{
		TextArea: ta,
		Height:   height,
		Width:    width,
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(globalTheme.PromptBorder).
			Width(width).
			Height(height),
	}
}

// SetWidth updates the width of the prompt component
func (p *PromptComponent) SetWidth(width int) {
	p.Width = width
	p.Style = p.Style.Width(width)
	p.TextArea.SetWidth(width - 2)
}

// SetHeight updates the height of the prompt component
// Height is constrained to MaxHeight (50% of screen)
func (p *PromptComponent) SetHeight(height int) {
	if p.MaxHeight > 0 && height > p.MaxHeight {
		height = p.MaxHeight
	}
	p.Height = height
	p.Style = p.Style.Height(height)
	p.TextArea.SetHeight(height)
}

// SetScreenHeight updates the screen height and recalculates max height
func (p *PromptComponent) SetScreenHeight(screenHeight int) {
	p.ScreenHeight = screenHeight
	p.MaxHeight = screenHeight / 2
	if p.Height > p.MaxHeight {
		p.SetHeight(p.Height)
	}
}

// CalculateDesiredHeight returns the desired height based on content
func (p *PromptComponent) CalculateDesiredHeight() int {
	lines := strings.Count(p.TextArea.Value(), "\n") + 1
	lines = max(lines, 2)
	if p.MaxHeight > 0 && lines > p.MaxHeight {
		return p.MaxHeight
	}
	return lines
}

// SetBusy dims the prompt while a request is in flight
func (p *PromptComponent) SetBusy(busy bool) {
	p.busy = busy
	if busy {
		p.TextArea.Placeholder = PlaceholderBusy
		p.Style = p.Style.BorderForeground(globalTheme.DarkBorder)
		return
	}
	p.TextArea.Placeholder = PlaceholderDefault
	p.Style = p.Style.BorderForeground(globalTheme.PromptBorder)
}

// SetValue sets the text value of the prompt
func (p *PromptComponent) SetValue(value string) {
	p.TextArea.SetValue(value)
}

// Value returns the current text value
func (p PromptComponent) Value() string {
	return p.TextArea.Value()
}

// Reset clears the input
func (p *PromptComponent) Reset() {
	p.TextArea.Reset()
}

// OnFirstLine reports whether the cursor is on the first input line
func (p PromptComponent) OnFirstLine() bool {
	return p.TextArea.Line() == 0
}

// OnLastLine reports whether the cursor is on the last input line
func (p PromptComponent) OnLastLine() bool {
	return p.TextArea.Line() >= p.TextArea.LineCount()-1
}

// Focus gives focus to the prompt
func (p *PromptComponent) Focus() {
	p.TextArea.Focus()
}

// Blur removes focus from the prompt
func (p *PromptComponent) Blur() {
	p.TextArea.Blur()
}

// Update handles messages for the prompt component
func (p PromptComponent) Update(msg tea.Msg) (PromptComponent, tea.Cmd) {
	var cmd tea.Cmd
	p.TextArea, cmd = p.TextArea.Update(msg)
	return p, cmd
}

// View renders the prompt component
func (p PromptComponent) View() string {
	return p.Style.Render(wordwrap.String(p.TextArea.View(), p.Width))
}
