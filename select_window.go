package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SelectWindow is a generic component for displaying a selectable list of items
type SelectWindow[T any] struct {
	Width      int
	Height     int
	Items      []T
	MaxVisible int
}

// NewSelectWindow creates a new generic select window
func NewSelectWindow[T any]() SelectWindow[T] {
	return SelectWindow[T]{
		Width:      70,
		Height:     15,
		MaxVisible: 14,
	}
}

// SetSize updates the dimensions
func (s *SelectWindow[T]) SetSize(width, height int) {
	s.Width = width
	s.Height = height
	// title line
	s.MaxVisible = max(height-1, 1)
}

// SetItems updates the items list
func (s *SelectWindow[T]) SetItems(items []T) {
	s.Items = items
}

// GetItemCount returns the number of items
func (s *SelectWindow[T]) GetItemCount() int {
	return len(s.Items)
}

// GetVisibleSlots returns how many items can be shown at once
func (s *SelectWindow[T]) GetVisibleSlots() int {
	return s.MaxVisible
}

// GetSelectedItem returns the item at the given index
func (s *SelectWindow[T]) GetSelectedItem(index int) *T {
	if index < 0 || index >= len(s.Items) {
		return nil
	}
	return &s.Items[index]
}

// RenderConfig holds callbacks for customization
type RenderConfig[T any] struct {
	Title string

	OnEmpty func(sb *strings.Builder)

	// RenderItem renders a single item; i is the absolute index in Items
	RenderItem func(i int, item T, isSelected bool, sb *strings.Builder)
}

// Render renders the list with the given selection and configuration
func (s *SelectWindow[T]) Render(selectedIndex, scrollOffset int, config RenderConfig[T]) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(globalTheme.PromptBorder).
		Background(globalTheme.PaneBackground).
		Padding(0, 1)

	totalItems := len(s.Items)
	title := titleStyle.Render(fmt.Sprintf("%s [%3d/%3d]:", config.Title, min(selectedIndex+1, totalItems), totalItems))

	var sb strings.Builder
	if totalItems == 0 {
		if config.OnEmpty != nil {
			config.OnEmpty(&sb)
		} else {
			sb.WriteString("No items found.\n")
		}
		return title + "\n" + sb.String()
	}

	scrollOffset = max(0, min(scrollOffset, totalItems-s.MaxVisible))
	end := min(scrollOffset+s.MaxVisible, totalItems)

	for i := scrollOffset; i < end; i++ {
		isSelected := i == selectedIndex
		if config.RenderItem != nil {
			config.RenderItem(i, s.Items[i], isSelected, &sb)
			continue
		}
		prefix := "  "
		if isSelected {
			prefix = "▶ "
		}
		sb.WriteString(fmt.Sprintf("%s%v\n", prefix, s.Items[i]))
	}
	return title + "\n" + sb.String()
}
