package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wordwrap"
)

const (
	activeMarker   = "● "
	inactiveMarker = "  "
)

// renderResultView styles a Result for the results panel. Failures are not
// rendered here; they belong on the error banner.
func renderResultView(res Result, width int) string {
	if width < 10 {
		width = 10
	}
	switch res.Kind {
	case KindDatabaseNotice, KindTableNotice, KindInsertNotice:
		return globalTheme.Notice.Render(wordwrap.String("✓ "+res.Notice, width))
	case KindDatabasesList:
		return renderItems(res.Items, res.Empty)
	case KindTablesList:
		blocks := make([]string, 0, len(res.Sections))
		for _, s := range res.Sections {
			blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left,
				globalTheme.SectionTitle.Render(s.Title),
				renderItems(s.Items, s.Empty),
			))
		}
		return strings.Join(blocks, "\n\n")
	case KindRowSet:
		if res.Empty != "" {
			return globalTheme.EmptyState.Render(res.Empty)
		}
		return renderGrid(res.Columns, res.Rows)
	case KindVectorMatches:
		if res.Empty != "" {
			return globalTheme.EmptyState.Render(res.Empty)
		}
		return renderMatchBlocks(res.Matches)
	case KindRawFallback:
		return globalTheme.JSON.Render(res.JSON)
	}
	return ""
}

func renderItems(items []ListItem, empty string) string {
	if len(items) == 0 {
		return globalTheme.EmptyState.Render(empty)
	}
	lines := make([]string, len(items))
	for i, item := range items {
		if item.Active {
			lines[i] = globalTheme.ActiveItem.Render(activeMarker + item.Name)
		} else {
			lines[i] = globalTheme.Item.Render(inactiveMarker + item.Name)
		}
	}
	return strings.Join(lines, "\n")
}

// renderGrid draws a bordered table with the columns in server order.
func renderGrid(columns []string, rows [][]string) string {
	width := len(columns)
	padded := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) > width {
			width = len(row)
		}
		padded[i] = row
	}
	headers := append([]string(nil), columns...)
	for len(headers) < width {
		headers = append(headers, "")
	}
	for i, row := range padded {
		for len(row) < width {
			row = append(row, "")
		}
		padded[i] = row
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(globalTheme.TableBorder).
		Headers(headers...).
		Rows(padded...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return globalTheme.TableHeader
			}
			return globalTheme.TableCell
		})
	return t.Render()
}

func renderMatchBlocks(matches []MatchBlock) string {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		lines := []string{
			globalTheme.MatchLabel.Render("Index: ") + fmt.Sprint(m.Index),
			globalTheme.MatchLabel.Render("Similarity: ") + m.Similarity,
		}
		if m.Metadata != "" {
			lines = append(lines,
				globalTheme.MatchLabel.Render("Metadata:"),
				globalTheme.JSON.Render(m.Metadata))
		}
		blocks = append(blocks, globalTheme.Border.Padding(0, 1).Render(strings.Join(lines, "\n")))
	}
	return strings.Join(blocks, "\n")
}

// renderErrorBanner renders the error text shown above the prompt.
func renderErrorBanner(text string, width int) string {
	if text == "" {
		return ""
	}
	inner := width - 2
	if inner < 10 {
		inner = 10
	}
	return globalTheme.ErrorBanner.Width(width).Render(wordwrap.String("✗ "+text, inner))
}
