// Package tui provides the Bubble Tea components of the interactive client:
// the search spinner, the prompt with autocompletion, the banner and the
// session stats view.
//
// TUI rules:
//   - Components only run when stdin and stdout are terminals
//   - Non-terminal sessions fall back to line-based input and plain output
//   - Components never write to stdout while an answer is printed
package tui

import (
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/key"

	"github.com/ousax/scrap/cli/render"
)

// ErrInterrupted is returned when the user aborts a component with
// Ctrl+C or Ctrl+D.
var ErrInterrupted = errors.New("interrupted")

// keyMap defines key bindings shared by components.
type keyMap struct {
	Quit   key.Binding
	Submit key.Binding
	EOF    key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	EOF: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "exit"),
	),
}

// Interactive reports whether in and out are both terminals.
func Interactive(in, out *os.File) bool {
	return render.IsTerminal(in) && render.IsTerminal(out)
}
