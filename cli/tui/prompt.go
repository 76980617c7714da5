package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ousax/scrap/cli/render"
)

// DefaultPrompt precedes user input.
const DefaultPrompt = "You: "

// PromptConfig configures ReadLine.
type PromptConfig struct {
	Prompt string
	Theme  render.Theme
	// AutoComplete enables inline suggestions accepted with Tab.
	AutoComplete bool
	// Commands are offered for input starting with "/".
	Commands []string
	// History holds previous prompts, offered for other input.
	History []string
	Input   io.Reader
	Output  io.Writer
}

// Suggestions returns the completions for input: slash commands when input
// starts with "/", previous prompts otherwise. Results are sorted and
// deduplicated; empty input has no suggestions.
func Suggestions(input string, commands, history []string) []string {
	if input == "" {
		return nil
	}
	source := history
	if strings.HasPrefix(input, "/") {
		source = commands
	}

	var out []string
	for _, s := range source {
		if strings.HasPrefix(s, input) {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

type promptModel struct {
	input     textinput.Model
	cfg       PromptConfig
	styles    Styles
	submitted bool
	aborted   bool
}

func newPromptModel(cfg PromptConfig) promptModel {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	styles := NewStyles(cfg.Theme)

	ti := textinput.New()
	ti.Prompt = cfg.Prompt
	ti.PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(cfg.Theme.Success)
	ti.CompletionStyle = styles.Suggestion
	ti.ShowSuggestions = cfg.AutoComplete
	ti.Focus()

	return promptModel{input: ti, cfg: cfg, styles: styles}
}

// Init implements tea.Model.
func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case msg.Type == tea.KeyCtrlC, key.Matches(msg, keys.EOF):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, keys.Submit):
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.cfg.AutoComplete {
		m.input.SetSuggestions(Suggestions(m.input.Value(), m.cfg.Commands, m.cfg.History))
	}
	return m, cmd
}

// View implements tea.Model.
func (m promptModel) View() string {
	switch {
	case m.aborted:
		return ""
	case m.submitted:
		return m.input.PromptStyle.Render(m.cfg.Prompt) + m.input.Value() + "\n"
	}
	return m.input.View()
}

// Value returns the current input.
func (m promptModel) Value() string {
	return m.input.Value()
}

// ReadLine shows the prompt and returns the submitted line. It returns
// ErrInterrupted when the user presses Ctrl+C or Ctrl+D.
func ReadLine(ctx context.Context, cfg PromptConfig) (string, error) {
	if cfg.Input == nil {
		cfg.Input = os.Stdin
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	p := tea.NewProgram(
		newPromptModel(cfg),
		tea.WithContext(ctx),
		tea.WithInput(cfg.Input),
		tea.WithOutput(cfg.Output),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return "", ErrInterrupted
		}
		return "", err
	}

	m, ok := final.(promptModel)
	if !ok || m.aborted {
		return "", ErrInterrupted
	}
	return m.Value(), nil
}
