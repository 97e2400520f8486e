package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// historyItem is one accepted command; Index is its 1-based position in history.
type historyItem struct {
	Index   int
	Command string
}

// HistoryWindow lists accepted commands, newest first, optionally filtered.
type HistoryWindow struct {
	SelectWindow[historyItem]
	filter string
}

// NewHistoryWindow creates a new history window
func NewHistoryWindow() HistoryWindow {
	return HistoryWindow{SelectWindow: NewSelectWindow[historyItem]()}
}

// SetHistory loads history (oldest first) applying filter.
func (h *HistoryWindow) SetHistory(history []string, filter string) {
	h.filter = strings.TrimSpace(filter)
	h.SetItems(filterHistory(history, h.filter))
}

// Filter returns the active filter text
func (h *HistoryWindow) Filter() string {
	return h.filter
}

// filterHistory returns history newest first. With a filter, only fuzzy
// matches are kept, closest first; ties keep the newest first.
func filterHistory(history []string, filter string) []historyItem {
	items := make([]historyItem, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		items = append(items, historyItem{Index: i + 1, Command: history[i]})
	}
	if filter == "" {
		return items
	}

	commands := make([]string, len(items))
	for i, item := range items {
		commands[i] = item.Command
	}
	ranks := fuzzy.RankFindNormalizedFold(filter, commands)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	matched := make([]historyItem, len(ranks))
	for i, r := range ranks {
		matched[i] = items[r.OriginalIndex]
	}
	return matched
}

// RenderList renders the visible part of the list
func (h *HistoryWindow) RenderList(selectedIndex, scrollOffset int) string {
	title := "Command history"
	if h.filter != "" {
		title = fmt.Sprintf("Command history matching %q", h.filter)
	}
	selectedStyle := lipgloss.NewStyle().Foreground(globalTheme.PromptBorder).Bold(true)
	indexStyle := lipgloss.NewStyle().Foreground(globalTheme.Muted)

	return h.Render(selectedIndex, scrollOffset, RenderConfig[historyItem]{
		Title: title,
		OnEmpty: func(sb *strings.Builder) {
			if h.filter != "" {
				sb.WriteString(globalTheme.EmptyState.Render("No commands match the filter") + "\n")
				return
			}
			sb.WriteString(globalTheme.EmptyState.Render("No commands yet") + "\n")
		},
		RenderItem: func(i int, item historyItem, isSelected bool, sb *strings.Builder) {
			command := truncateSnippet(oneLine(item.Command), max(h.Width-10, 10))
			line := fmt.Sprintf("%s %s", indexStyle.Render(fmt.Sprintf("%4d", item.Index)), command)
			if isSelected {
				sb.WriteString(selectedStyle.Render("▶ ") + selectedStyle.Render(line) + "\n")
				return
			}
			sb.WriteString("  " + line + "\n")
		},
	})
}

// truncateSnippet shortens text to limit runes, marking the cut with an ellipsis
func truncateSnippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
