package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/afittestide/mascot/storage"
)

// ExportType represents the type of export to generate
type ExportType string

const (
	ExportTypeTranscript ExportType = "transcript"
	ExportTypeScript     ExportType = "script"
)

// exportMeta describes the session being exported.
type exportMeta struct {
	SessionID string
	ServerURL string
	Database  string
	When      time.Time
}

// parseExportType maps a command argument to an ExportType.
func parseExportType(arg string) (ExportType, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", string(ExportTypeTranscript):
		return ExportTypeTranscript, nil
	case string(ExportTypeScript):
		return ExportTypeScript, nil
	}
	return "", fmt.Errorf("unknown export type '%s'. Use 'transcript' or 'script'", arg)
}

// exportJournal writes the journal to a file in the temp dir and returns its path
func exportJournal(journal *storage.Journal, meta exportMeta, exportType ExportType) (string, error) {
	if journal == nil {
		return "", fmt.Errorf("no journal to export")
	}
	entries, err := journal.List(0)
	if err != nil {
		return "", fmt.Errorf("failed to read journal: %w", err)
	}
	if meta.When.IsZero() {
		meta.When = time.Now()
	}

	var content, ext string
	mode := os.FileMode(0644)
	switch exportType {
	case ExportTypeTranscript:
		content, ext = generateTranscript(entries, meta), "md"
	case ExportTypeScript:
		content, ext = generateReplayScript(entries, meta), "sh"
		mode = 0755
	default:
		return "", fmt.Errorf("unknown export type: %s", exportType)
	}

	timestamp := meta.When.Format("20060102-150405")
	filename := fmt.Sprintf("mascot-%s-%s-%s.%s", exportType, shortID(meta.SessionID), timestamp, ext)
	path := filepath.Join(os.TempDir(), filename)

	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// generateTranscript renders every journal entry as markdown
func generateTranscript(entries []storage.Entry, meta exportMeta) string {
	var b strings.Builder

	succeeded := 0
	for _, e := range entries {
		if e.Succeeded() {
			succeeded++
		}
	}

	b.WriteString("# mascot transcript\n\n")
	fmt.Fprintf(&b, "- **Session:** %s\n", meta.SessionID)
	fmt.Fprintf(&b, "- **Server:** %s\n", meta.ServerURL)
	if meta.Database != "" {
		fmt.Fprintf(&b, "- **Database:** %s\n", meta.Database)
	}
	fmt.Fprintf(&b, "- **Exported:** %s\n", meta.When.Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Commands:** %d (%d succeeded)\n", len(entries), succeeded)
	b.WriteString("\n---\n")

	for i, e := range entries {
		fmt.Fprintf(&b, "\n## %d. `%s`\n\n", i+1, oneLine(e.Command))
		details := []string{e.Outcome}
		if e.Kind != "" {
			details = append(details, e.Kind)
		}
		details = append(details, e.Duration.String())
		fmt.Fprintf(&b, "_%s_\n\n", strings.Join(details, " · "))

		switch {
		case e.Succeeded() && e.Rendered != "":
			b.WriteString("```\n")
			b.WriteString(e.Rendered)
			b.WriteString("\n```\n")
		case e.Outcome == storage.OutcomeFailure:
			fmt.Fprintf(&b, "> Error: %s\n", e.Error)
		case e.Outcome == storage.OutcomeTransport:
			fmt.Fprintf(&b, "> %s\n", connectivityNotice)
		case e.Outcome == storage.OutcomeCanceled:
			b.WriteString("> Canceled\n")
		}
	}
	return b.String()
}

// generateReplayScript emits a POSIX shell script replaying accepted commands
func generateReplayScript(entries []storage.Entry, meta exportMeta) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("# mascot replay script\n")
	fmt.Fprintf(&b, "# session: %s\n", meta.SessionID)
	fmt.Fprintf(&b, "# exported: %s\n", meta.When.Format(time.RFC3339))
	b.WriteString("set -e\n\n")
	b.WriteString("DEFAULT_SERVER=" + shellescape.Quote(meta.ServerURL) + "\n")
	b.WriteString(`SERVER="${MASCOT_SERVER_URL:-$DEFAULT_SERVER}"` + "\n\n")

	var commands []string
	for _, e := range entries {
		if e.Succeeded() {
			commands = append(commands, e.Command)
		}
	}
	if len(commands) == 0 {
		b.WriteString("# no accepted commands\n")
		return b.String()
	}

	b.WriteString(`exec mascot --server "$SERVER"`)
	for _, c := range commands {
		b.WriteString(" \\\n  -c " + shellescape.Quote(c))
	}
	b.WriteString("\n")
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "session"
	}
	return id
}

// openInEditor creates a command to open the specified file in the user's preferred editor
func openInEditor(filepath string) *exec.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	return exec.Command(editor, filepath)
}
