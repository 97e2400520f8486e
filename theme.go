package main

import "github.com/charmbracelet/lipgloss"

// globalTheme is the application-wide theme instance
var globalTheme *Theme

// Theme defines the colors and styles for the UI.
type Theme struct {
	// Terminal7 color scheme
	PromptBorder     lipgloss.Color
	ResultBorder     lipgloss.Color
	TextColor        lipgloss.Color
	Warning          lipgloss.Color
	Error            lipgloss.Color
	Success          lipgloss.Color
	PromptBackground lipgloss.Color
	PaneBackground   lipgloss.Color
	DarkBorder       lipgloss.Color
	Muted            lipgloss.Color

	// Results panel
	Notice       lipgloss.Style
	ActiveItem   lipgloss.Style
	Item         lipgloss.Style
	SectionTitle lipgloss.Style
	EmptyState   lipgloss.Style
	ErrorBanner  lipgloss.Style
	TableHeader  lipgloss.Style
	TableCell    lipgloss.Style
	TableBorder  lipgloss.Style
	MatchLabel   lipgloss.Style
	JSON         lipgloss.Style

	// Borders and highlights
	Border    lipgloss.Style
	Highlight lipgloss.Style
}

// NewTheme creates and returns a new Theme with Terminal7 colors.
// It also sets the global theme instance.
func NewTheme() *Theme {
	promptBorder := lipgloss.Color("#F952F9")
	resultBorder := lipgloss.Color("#F4DB53")
	textColor := lipgloss.Color("#01FAFA")
	warning := lipgloss.Color("#F4DB53")
	errorColor := lipgloss.Color("#F54545")
	success := lipgloss.Color("#00FF00")
	promptBackground := lipgloss.Color("#271D30")
	paneBackground := lipgloss.Color("#000000")
	darkBorder := lipgloss.Color("#373702")
	muted := lipgloss.Color("#808080")

	theme := &Theme{
		PromptBorder:     promptBorder,
		ResultBorder:     resultBorder,
		TextColor:        textColor,
		Warning:          warning,
		Error:            errorColor,
		Success:          success,
		PromptBackground: promptBackground,
		PaneBackground:   paneBackground,
		DarkBorder:       darkBorder,
		Muted:            muted,

		Notice:       lipgloss.NewStyle().Foreground(success),
		ActiveItem:   lipgloss.NewStyle().Foreground(promptBorder).Bold(true),
		Item:         lipgloss.NewStyle().Foreground(textColor),
		SectionTitle: lipgloss.NewStyle().Foreground(resultBorder).Bold(true).Underline(true),
		EmptyState:   lipgloss.NewStyle().Foreground(muted).Italic(true),
		ErrorBanner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(errorColor).
			Bold(true).
			Padding(0, 1),
		TableHeader: lipgloss.NewStyle().Foreground(resultBorder).Bold(true).Padding(0, 1),
		TableCell:   lipgloss.NewStyle().Foreground(textColor).Padding(0, 1),
		TableBorder: lipgloss.NewStyle().Foreground(darkBorder),
		MatchLabel:  lipgloss.NewStyle().Foreground(resultBorder).Bold(true),
		JSON:        lipgloss.NewStyle().Foreground(textColor),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(resultBorder),

		Highlight: lipgloss.NewStyle().
			Foreground(textColor).
			Background(promptBackground),
	}

	globalTheme = theme

	return theme
}
