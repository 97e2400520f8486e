package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// HelpWindow displays help topics and other markdown pages.
// Navigation is handled by ContentComponent
type HelpWindow struct {
	width  int
	height int
	topic  string

	// page overrides the topic text when set, e.g. for :server
	page      string
	pageTitle string

	renderer *glamour.TermRenderer
}

// NewHelpWindow creates a new help window. With markdown enabled pages are
// rendered by glamour, otherwise by a light line styler.
func NewHelpWindow(markdownEnabled bool) HelpWindow {
	h := HelpWindow{
		width:  80,
		height: 20,
		topic:  "index",
	}
	if markdownEnabled {
		start := time.Now()
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		)
		slog.Debug("markdown renderer initialized", "load time", time.Since(start), "err", err)
		if err == nil {
			h.renderer = renderer
		}
	}
	return h
}

// SetSize updates the dimensions of the help window
func (h *HelpWindow) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// SetTopic sets the help topic to display
func (h *HelpWindow) SetTopic(topic string) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		topic = "index"
	}
	h.topic = topic
	h.page = ""
	h.pageTitle = ""
}

// SetPage shows arbitrary markdown instead of a help topic.
func (h *HelpWindow) SetPage(title, markdown string) {
	h.pageTitle = title
	h.page = markdown
}

// GetTopic returns the title of what is displayed
func (h *HelpWindow) GetTopic() string {
	if h.page != "" {
		return h.pageTitle
	}
	return h.topic
}

// RenderContent generates the styled content for the current topic or page
func (h *HelpWindow) RenderContent() string {
	content := h.page
	if content == "" {
		content = getHelpTopic(h.topic)
	}
	if h.renderer != nil {
		out, err := h.renderer.Render(content)
		if err == nil {
			return strings.TrimRight(out, "\n")
		}
		slog.Warn("failed to render markdown", "error", err)
	}
	return styleHelpLines(content)
}

// styleHelpLines applies header, key binding and command styles line by line
func styleHelpLines(content string) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(globalTheme.Warning).
		MarginTop(1).
		MarginBottom(1)

	subheaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(globalTheme.TextColor).
		MarginTop(1)

	codeStyle := lipgloss.NewStyle().
		Foreground(globalTheme.PromptBorder).
		Background(lipgloss.Color("#1a1a1a")).
		Padding(0, 1)

	keyStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(globalTheme.PromptBorder)

	var styled []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "# "):
			styled = append(styled, headerStyle.Render(strings.TrimPrefix(trimmed, "# ")))
		case strings.HasPrefix(trimmed, "## "):
			styled = append(styled, subheaderStyle.Render(strings.TrimPrefix(trimmed, "## ")))
		case strings.HasPrefix(trimmed, "```"):
			continue
		case strings.HasPrefix(line, "  ") && strings.Contains(trimmed, " - "):
			parts := strings.SplitN(trimmed, " - ", 2)
			styled = append(styled, "  "+keyStyle.Render(strings.TrimSpace(parts[0]))+" - "+strings.TrimSpace(parts[1]))
		case strings.HasPrefix(trimmed, ":"):
			styled = append(styled, "  "+codeStyle.Render(trimmed))
		default:
			styled = append(styled, line)
		}
	}
	return strings.Join(styled, "\n")
}

var helpTopics = map[string]string{
	"index":    helpIndex,
	"commands": helpCommands,
	"queries":  helpQueries,
	"keys":     helpKeys,
	"config":   helpConfig,
}

// getHelpTopic returns the help content for a specific topic
func getHelpTopic(topic string) string {
	if content, ok := helpTopics[strings.ToLower(topic)]; ok {
		return content
	}

	return fmt.Sprintf(`# Help Topic Not Found

The help topic '%s' was not found.

## Available Topics

Type :help followed by one of these topics:

  :help index     - Main help index
  :help commands  - Console commands
  :help queries   - Database commands understood by the server
  :help keys      - Key bindings
  :help config    - Configuration options

Press ESC twice to close this window.
`, topic)
}

const helpIndex = `# mascot Help

mascot is a console for a mascotDB server. Type a database command at the
prompt and press Enter. The server's reply is shown in the results panel;
errors are shown on the red banner above the prompt.

## Topics

  :help commands  - Console commands (lines starting with :)
  :help queries   - Database commands understood by the server
  :help keys      - Key bindings
  :help config    - Configuration files, environment and flags

## Getting Started

` + "```" + `
CREATE DATABASE shop
USE DATABASE shop
CREATE TABLE users (id, name)
INSERT INTO users VALUES (1, 'ada')
SELECT * FROM users
` + "```" + `
`

const helpCommands = `# Console Commands

Lines starting with : are handled by mascot and never sent to the server.
Commands can be shortened to any unique prefix, so :h opens help.

  :help [topic]   - Show help
  :history [text] - Browse accepted commands, fuzzy filtered by text
  :clear          - Clear the results panel and the error banner
  :export [type]  - Export the session as a transcript or a script
  :server         - Show the server's name, version and commands
  :quit           - Quit mascot

## Export Types

  transcript      - Markdown with every command and its result
  script          - Shell script replaying the accepted commands

Exports are written to the temp directory and opened in $EDITOR.
`

const helpQueries = `# Database Commands

Commands are sent verbatim to the server. Keywords are case insensitive;
database names are stored upper case.

## Databases

` + "```sql" + `
CREATE DATABASE <name>
DROP DATABASE <name>
USE DATABASE <name>
SHOW DATABASES
` + "```" + `

## Tables

` + "```sql" + `
CREATE TABLE <name> (<columns>)
CREATE VECTOR TABLE <name> (<dimension>)
DROP TABLE <name>
SHOW TABLES
INSERT INTO <table> VALUES (<values>)
SELECT <columns> FROM <table> [WHERE ...]
` + "```" + `

## Vectors

` + "```sql" + `
INSERT INTO <vector_table> VECTOR [<floats>] [METADATA {...}]
SEARCH <vector_table> [<floats>] [TOP <k>]
` + "```" + `

The database in use is marked in SHOW DATABASES output and in the status bar.
`

const helpKeys = `# Key Bindings

## Prompt

  Enter           - Submit the command
  Alt+Enter       - Submit even while a request is running
  Ctrl+J          - Insert a new line
  Up / Down       - Walk the command history
  Ctrl+C          - Cancel the running request, twice to quit
  Ctrl+L          - Clear the results panel

## Results

  PgUp / PgDn     - Scroll results
  Mouse wheel     - Scroll results

## Help, History and Server Views

  j / k           - Scroll or move the selection
  Ctrl+D / Ctrl+U - Half page down or up
  g / G           - Top or bottom
  Enter           - Copy the selected history entry to the prompt
  Esc Esc         - Close the view
`

const helpConfig = `# Configuration

## Files

mascot reads configuration in this order, later layers win:

  1. ~/.config/mascot/conf.toml  (user level)
  2. .mascot/mascot.toml         (project level)
  3. MASCOT_* environment variables
  4. Command line flags

## Example

` + "```toml" + `
[server]
url = "http://localhost:8000"
timeout = "30s"

[logging]
level = "info"

[ui]
markdown = true
color = true
` + "```" + `

## Environment Variables

  MASCOT_SERVER_URL      - Server base URL
  MASCOT_SERVER_TIMEOUT  - Request timeout, e.g. 10s
  MASCOT_LOGGING_LEVEL   - info or debug
  EDITOR                 - Editor used by :export

## Logging

Logs are written to ~/.local/share/mascot/mascot.log and rotated
automatically.
`
