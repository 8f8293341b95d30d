// Package ui provides the visual styling for the marketnerd chat interface.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	Primary = lipgloss.Color("#8BC34A")
	Muted   = lipgloss.Color("#6c7a89")
	Danger  = lipgloss.Color("#e53935")
	Info    = lipgloss.Color("#2196F3")
)

// Styles holds the lipgloss styles used by the chat view.
type Styles struct {
	Title     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Question  lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	InputBox  lipgloss.Style
}

// DefaultStyles returns the standard theme.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			MarginBottom(1),
		User: lipgloss.NewStyle().
			Bold(true).
			Foreground(Info),
		Assistant: lipgloss.NewStyle().
			Foreground(Primary),
		Question: lipgloss.NewStyle().
			Foreground(Primary).
			Italic(true),
		Status: lipgloss.NewStyle().
			Foreground(Muted),
		Error: lipgloss.NewStyle().
			Foreground(Danger),
		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1),
	}
}
