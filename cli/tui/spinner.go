package tui

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ousax/scrap/cli/render"
)

// DefaultSpinnerLabel is shown next to the spinner while a query runs.
const DefaultSpinnerLabel = "Searching..."

var cancelKey = key.NewBinding(
	key.WithKeys("ctrl+c", "esc"),
	key.WithHelp("ctrl+c", "cancel"),
)

// SpinnerConfig configures WithSpinner.
type SpinnerConfig struct {
	// Enabled runs the spinner; when false fn is called directly.
	Enabled bool
	// Label is shown next to the spinner (default DefaultSpinnerLabel).
	Label string
	Theme render.Theme
	// Input receives key presses; Ctrl+C cancels fn's context.
	Input io.Reader
	// Output receives the spinner frames. It should not be stdout.
	Output io.Writer
}

type searchDoneMsg struct{}

type spinnerModel struct {
	spinner  spinner.Model
	label    string
	style    lipgloss.Style
	done     bool
	canceled bool
}

func newSpinnerModel(cfg SpinnerConfig) spinnerModel {
	label := cfg.Label
	if label == "" {
		label = DefaultSpinnerLabel
	}
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)
	return spinnerModel{
		spinner: s,
		label:   label,
		style:   lipgloss.NewStyle().Foreground(cfg.Theme.Secondary),
	}
}

// Init implements tea.Model.
func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDoneMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, cancelKey) {
			m.canceled = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m spinnerModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	return m.spinner.View() + " " + m.style.Render(m.label)
}

// WithSpinner runs fn while animating a spinner on cfg.Output. Cancelling
// the spinner cancels the context passed to fn; WithSpinner always waits for
// fn to return.
func WithSpinner[T any](ctx context.Context, cfg SpinnerConfig, fn func(context.Context) (T, error)) (T, error) {
	if !cfg.Enabled {
		return fn(ctx)
	}

	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		newSpinnerModel(cfg),
		tea.WithContext(ctx),
		tea.WithInput(cfg.Input),
		tea.WithOutput(cfg.Output),
	)

	var (
		res T
		err error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		res, err = fn(ctx)
		p.Send(searchDoneMsg{})
	}()

	final, runErr := p.Run()
	if m, ok := final.(spinnerModel); runErr != nil || (ok && m.canceled) {
		cancel()
	}
	<-finished

	return res, err
}
