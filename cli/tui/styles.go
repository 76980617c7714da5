package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ousax/scrap/cli/render"
)

// Styles for TUI components, derived from a theme.
type Styles struct {
	render.Styles

	// Label for field labels.
	Label lipgloss.Style
	// Help for key hints.
	Help lipgloss.Style
	// StatBox for stat display boxes.
	StatBox lipgloss.Style
	// StatLabel for stat labels.
	StatLabel lipgloss.Style
	// StatValue for stat values.
	StatValue lipgloss.Style
	// Suggestion for inline completion hints.
	Suggestion lipgloss.Style
}

// NewStyles builds TUI styles for theme.
func NewStyles(theme render.Theme) Styles {
	muted := lipgloss.NewStyle().Faint(true)
	return Styles{
		Styles: theme.Styles(),
		Label:  muted.Width(16),
		Help:   muted.MarginTop(1),
		StatBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Secondary).
			Padding(0, 2).
			Width(20).
			Align(lipgloss.Center),
		StatLabel:  muted.Align(lipgloss.Center),
		StatValue:  lipgloss.NewStyle().Bold(true).Align(lipgloss.Center),
		Suggestion: muted,
	}
}
