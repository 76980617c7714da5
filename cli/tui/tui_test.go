package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ousax/scrap/cli/render"
	"github.com/ousax/scrap/metrics"
)

var testCommands = []string{"/clear", "/exit", "/export", "/help", "/history", "/reset", "/settings", "/stats", "/theme"}

func TestSuggestions(t *testing.T) {
	history := []string{"what is go", "what is rust", "how to cook", "what is go"}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"command prefix", "/h", []string{"/help", "/history"}},
		{"all commands", "/", testCommands},
		{"exact command", "/exit", []string{"/exit"}},
		{"history prefix deduplicated", "what", []string{"what is go", "what is rust"}},
		{"no match", "zzz", nil},
		{"commands not offered for prose", "he", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggestions(tt.input, testCommands, history)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Suggestions(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func typeRunes(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestPromptModel_Submit(t *testing.T) {
	var m tea.Model = newPromptModel(PromptConfig{Theme: render.ThemeOrDefault("")})

	m = typeRunes(m, "hello")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	pm := m.(promptModel)
	if !pm.submitted {
		t.Fatal("submitted = false, want true")
	}
	if pm.Value() != "hello" {
		t.Errorf("Value() = %q, want hello", pm.Value())
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if !strings.Contains(pm.View(), DefaultPrompt) || !strings.Contains(pm.View(), "hello") {
		t.Errorf("final view = %q, want prompt and input", pm.View())
	}
}

func TestPromptModel_Abort(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyCtrlD} {
		var m tea.Model = newPromptModel(PromptConfig{})
		m, _ = m.Update(tea.KeyMsg{Type: k})
		if !m.(promptModel).aborted {
			t.Errorf("key %v: aborted = false, want true", k)
		}
		if m.View() != "" {
			t.Errorf("key %v: view = %q, want empty", k, m.View())
		}
	}
}

func TestPromptModel_TabCompletesCommand(t *testing.T) {
	var m tea.Model = newPromptModel(PromptConfig{
		AutoComplete: true,
		Commands:     testCommands,
	})

	m = typeRunes(m, "/se")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})

	if got := m.(promptModel).Value(); got != "/settings" {
		t.Errorf("Value() = %q, want /settings", got)
	}
}

func TestPromptModel_TabCompletesHistory(t *testing.T) {
	var m tea.Model = newPromptModel(PromptConfig{
		AutoComplete: true,
		Commands:     testCommands,
		History:      []string{"explain goroutines"},
	})

	m = typeRunes(m, "expl")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})

	if got := m.(promptModel).Value(); got != "explain goroutines" {
		t.Errorf("Value() = %q, want explain goroutines", got)
	}
}

func TestPromptModel_NoCompletionWhenDisabled(t *testing.T) {
	var m tea.Model = newPromptModel(PromptConfig{
		AutoComplete: false,
		Commands:     testCommands,
	})

	m = typeRunes(m, "/se")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})

	if got := m.(promptModel).Value(); got != "/se" {
		t.Errorf("Value() = %q, want /se", got)
	}
}

func TestSpinnerModel(t *testing.T) {
	m := newSpinnerModel(SpinnerConfig{Theme: render.ThemeOrDefault("")})

	if !strings.Contains(m.View(), DefaultSpinnerLabel) {
		t.Errorf("View() = %q, want label", m.View())
	}
	if m.Init() == nil {
		t.Error("Init() = nil, want tick command")
	}

	next, cmd := m.Update(searchDoneMsg{})
	if !next.(spinnerModel).done || cmd == nil {
		t.Error("searchDoneMsg should finish the spinner")
	}
	if next.View() != "" {
		t.Errorf("View() after done = %q, want empty", next.View())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !next.(spinnerModel).canceled {
		t.Error("ctrl+c should cancel the spinner")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if next.(spinnerModel).canceled {
		t.Error("typing should not cancel the spinner")
	}
}

func TestWithSpinner_Disabled(t *testing.T) {
	got, err := WithSpinner(t.Context(), SpinnerConfig{Enabled: false}, func(context.Context) (string, error) {
		return "answer", nil
	})
	if err != nil {
		t.Fatalf("WithSpinner: %v", err)
	}
	if got != "answer" {
		t.Errorf("result = %q, want answer", got)
	}
}

func TestWithSpinner_Enabled(t *testing.T) {
	boom := errors.New("boom")
	cfg := SpinnerConfig{
		Enabled: true,
		Theme:   render.ThemeOrDefault(""),
		Output:  io.Discard,
	}

	got, err := WithSpinner(t.Context(), cfg, func(ctx context.Context) (int, error) {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 42, boom
	})

	if got != 42 {
		t.Errorf("result = %d, want 42", got)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestBanner(t *testing.T) {
	for _, name := range render.ThemeNames() {
		t.Run(name, func(t *testing.T) {
			got := render.PlainText(Banner(render.ThemeOrDefault(name), ""))
			for _, want := range []string{"Y O U . C O M", "By Ousax", "/help", "Ctrl+C", strings.Repeat("=", 60)} {
				if !strings.Contains(got, want) {
					t.Errorf("banner missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestBanner_Fonts(t *testing.T) {
	theme := render.ThemeOrDefault("default")
	tests := []struct {
		font   string
		figlet bool
	}{
		{"slant", true},
		{"standard", true},
		{"", false},
		{"no-such-font", false},
	}
	for _, tt := range tests {
		t.Run(tt.font, func(t *testing.T) {
			got := render.PlainText(Banner(theme, tt.font))
			spacedTitle := strings.Contains(got, "Y O U . C O M")
			if spacedTitle == tt.figlet {
				t.Errorf("Banner(%q) spaced title = %v, want %v:\n%s", tt.font, spacedTitle, !tt.figlet, got)
			}
			if tt.figlet && strings.Count(got, "\n") < 10 {
				t.Errorf("Banner(%q) has %d lines, want a multi-line figlet title", tt.font, strings.Count(got, "\n"))
			}
			if !strings.Contains(got, "By Ousax") {
				t.Errorf("Banner(%q) missing tagline", tt.font)
			}
		})
	}
}

func TestRenderStatsStatic(t *testing.T) {
	c := metrics.NewCollector("sess-42", "default")
	c.IncQueryStarted()
	c.IncQueryStarted()
	c.IncQueryCompleted()
	c.IncSegment("code")

	got := render.PlainText(RenderStatsStatic(render.ThemeOrDefault("default"), c.Snapshot()))

	for _, want := range []string{"Session Statistics", "sess-42", "Queries", "Answered", "code segments:"} {
		if !strings.Contains(got, want) {
			t.Errorf("stats view missing %q:\n%s", want, got)
		}
	}
}

func TestStatsModel_Quit(t *testing.T) {
	var m tea.Model = NewStatsModel(render.ThemeOrDefault(""), metrics.Snapshot{})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	if cmd == nil {
		t.Error("expected quit command")
	}
	if m.View() != "" {
		t.Errorf("View() = %q, want empty after quit", m.View())
	}
}
