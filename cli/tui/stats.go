package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ousax/scrap/cli/render"
	"github.com/ousax/scrap/metrics"
)

// StatsModel is a Bubble Tea model for the session stats view.
type StatsModel struct {
	snap     metrics.Snapshot
	theme    render.Theme
	styles   Styles
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a stats model for snap.
func NewStatsModel(theme render.Theme, snap metrics.Snapshot) StatsModel {
	return StatsModel{
		snap:   snap,
		theme:  theme,
		styles: NewStyles(theme),
	}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Session Statistics"))
	if m.snap.SessionID != "" {
		b.WriteString(" ")
		b.WriteString(m.styles.Muted.Render(m.snap.SessionID))
	}
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderStatBox("Queries", m.snap.QueriesStarted, m.theme.Primary),
		m.renderStatBox("Answered", m.snap.QueriesCompleted, m.theme.Success),
		m.renderStatBox("Failed", m.snap.QueriesFailed, m.theme.Error),
	))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderStatBox("Tokens", m.snap.TokenEvents, m.theme.Info),
		m.renderStatBox("Skipped", m.snap.BlocksSkipped+m.snap.MalformedPayloads, m.theme.Warning),
		m.renderStatBox("Fallbacks", m.snap.RenderFallbacks, m.theme.Warning),
	))

	if len(m.snap.SegmentsByKind) > 0 {
		b.WriteString("\n")
		kinds := make([]string, 0, len(m.snap.SegmentsByKind))
		for k := range m.snap.SegmentsByKind {
			kinds = append(kinds, k)
		}
		slices.Sort(kinds)
		for _, k := range kinds {
			b.WriteString(fmt.Sprintf("\n%s %s",
				m.styles.Label.Render(k+" segments:"),
				m.styles.Primary.Render(fmt.Sprintf("%d", m.snap.SegmentsByKind[k]))))
		}
	}

	return b.String()
}

func (m StatsModel) renderStatBox(label string, value int64, color lipgloss.Color) string {
	boxStyle := m.styles.StatBox.BorderForeground(color)

	valueStr := m.styles.StatValue.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := m.styles.StatLabel.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// RenderStatsStatic renders the stats view without running a program.
func RenderStatsStatic(theme render.Theme, snap metrics.Snapshot) string {
	model := NewStatsModel(theme, snap)
	model.width = 80
	model.height = 24
	return model.View()
}
