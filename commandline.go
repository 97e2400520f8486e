package main

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Toast represents a single toast notification
type Toast struct {
	ID      string
	Message string
	Type    string // info, success, warning, error
	Created time.Time
	Timeout time.Duration
}

// CommandLineComponent manages the bottom line used for toast notifications
type CommandLineComponent struct {
	toasts []Toast
	nextID int
	width  int
	style  lipgloss.Style
}

// NewCommandLineComponent creates a new command line component
func NewCommandLineComponent() *CommandLineComponent {
	return &CommandLineComponent{
		style: lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1),
	}
}

// AddToast adds a new toast notification
func (cl *CommandLineComponent) AddToast(message, toastType string, timeout time.Duration) {
	cl.nextID++
	cl.toasts = append(cl.toasts, Toast{
		ID:      strconv.Itoa(cl.nextID),
		Message: message,
		Type:    toastType,
		Created: time.Now(),
		Timeout: timeout,
	})
}

// RemoveToast removes a toast by ID
func (cl *CommandLineComponent) RemoveToast(id string) {
	for i, toast := range cl.toasts {
		if toast.ID == id {
			cl.toasts = append(cl.toasts[:i], cl.toasts[i+1:]...)
			break
		}
	}
}

// ClearToasts removes all existing toast notifications
func (cl *CommandLineComponent) ClearToasts() {
	cl.toasts = nil
}

// Toasts returns the active toasts, oldest first
func (cl *CommandLineComponent) Toasts() []Toast {
	return cl.toasts
}

// SetWidth sets the available width
func (cl *CommandLineComponent) SetWidth(width int) {
	cl.width = width
}

// Update removes expired toasts
func (cl *CommandLineComponent) Update() {
	now := time.Now()
	active := cl.toasts[:0]
	for _, toast := range cl.toasts {
		if now.Sub(toast.Created) < toast.Timeout {
			active = append(active, toast)
		}
	}
	cl.toasts = active
}

// View renders the newest toast, or a blank line
func (cl *CommandLineComponent) View() string {
	if len(cl.toasts) == 0 {
		return ""
	}
	toast := cl.toasts[len(cl.toasts)-1]
	style := cl.style
	if cl.width > 0 {
		style = style.MaxWidth(cl.width)
	}

	switch toast.Type {
	case "info":
		style = style.Background(lipgloss.NoColor{})
	case "success":
		style = style.Background(lipgloss.Color("76")) // Green
	case "warning":
		style = style.Background(lipgloss.Color("11")) // Yellow
	case "error":
		style = style.Background(lipgloss.Color("124")) // Red
	}

	return style.Render(toast.Message)
}
