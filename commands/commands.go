// Package commands implements the slash commands of the interactive chat.
//
// A line starting with "/" is split on whitespace; the first field names
// the command and the rest are its arguments. Dispatch returns the text to
// print. Failures the user can correct (unknown command, bad argument) are
// returned as styled text; failures of the underlying stores are returned
// as errors.
package commands

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ousax/scrap/cli/config"
	"github.com/ousax/scrap/cli/render"
	"github.com/ousax/scrap/cli/tui"
	"github.com/ousax/scrap/history"
	"github.com/ousax/scrap/log"
	"github.com/ousax/scrap/metrics"
)

// ErrExit is returned by Dispatch for /exit.
var ErrExit = errors.New("exit requested")

// Prefix marks a line as a command.
const Prefix = "/"

// previewLength is how much of a response /history shows.
const previewLength = 100

// helpText lists the commands in display order.
const helpText = `Available Commands:

/help            - Show this help message
/history [n]     - Show conversation history (last n items, default 10)
/clear           - Clear conversation history
/export [format] - Export conversation (txt, md, json, yaml, msgpack, html, pdf)
/theme [name]    - Change color theme (default, dark, light, ocean)
/settings        - Show current settings
/reset           - Reset configuration to defaults
/stats           - Show session statistics
/exit            - Exit the program`

// Env holds everything the commands read or change.
type Env struct {
	Config *config.Config
	// ConfigPath is where /theme and /reset persist the config. Empty
	// disables persistence.
	ConfigPath string
	History    *history.Store
	Collector  *metrics.Collector
	// ExportDir is the directory /export writes to.
	ExportDir string
	Logger    *log.Logger
	// OnTheme is called after the theme changes.
	OnTheme func(render.Theme)
	Now     func() time.Time
}

type handler func(d *Dispatcher, args []string) (string, error)

// Dispatcher routes command lines to handlers.
type Dispatcher struct {
	env      Env
	handlers map[string]handler
}

// New creates a Dispatcher. Env.Config and Env.History are required.
func New(env Env) *Dispatcher {
	if env.Logger == nil {
		env.Logger = log.Nop()
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.ExportDir == "" {
		env.ExportDir = "."
	}
	return &Dispatcher{
		env: env,
		handlers: map[string]handler{
			"/help":     (*Dispatcher).help,
			"/history":  (*Dispatcher).history,
			"/clear":    (*Dispatcher).clear,
			"/export":   (*Dispatcher).export,
			"/theme":    (*Dispatcher).theme,
			"/settings": (*Dispatcher).settings,
			"/reset":    (*Dispatcher).reset,
			"/stats":    (*Dispatcher).stats,
			"/exit":     (*Dispatcher).exit,
		},
	}
}

// IsCommand reports whether line is a command line.
func IsCommand(line string) bool {
	return strings.HasPrefix(line, Prefix)
}

// Names returns the command names, sorted.
func (d *Dispatcher) Names() []string {
	return slices.Sorted(maps.Keys(d.handlers))
}

// Dispatch runs the command in line.
func (d *Dispatcher) Dispatch(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]
	h, ok := d.handlers[cmd]
	if !ok {
		return d.styles().Error.Render(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)), nil
	}
	d.env.Logger.Debug("command dispatched", map[string]any{"command": cmd, "args": len(args)})
	return h(d, args)
}

func (d *Dispatcher) styles() render.Styles {
	return render.ThemeOrDefault(d.env.Config.Theme).Styles()
}

func (d *Dispatcher) help([]string) (string, error) {
	return d.styles().Info.Render(helpText), nil
}

func (d *Dispatcher) history(args []string) (string, error) {
	limit := history.DefaultLimit
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}
	s := d.styles()
	entries := d.env.History.Get(limit)
	if len(entries) == 0 {
		return s.Warning.Render("No conversation history yet."), nil
	}

	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "\n[%d] %s\n", i+1, e.Timestamp.Format(time.DateTime))
		b.WriteString(s.Success.Render("> "+e.Prompt) + "\n")
		b.WriteString(preview(e.Response) + "\n")
	}
	return b.String(), nil
}

// preview shortens s to previewLength runes, marking the cut with "...".
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	return string([]rune(s)[:previewLength]) + "..."
}

func (d *Dispatcher) clear([]string) (string, error) {
	if err := d.env.History.Clear(); err != nil {
		return "", fmt.Errorf("clear history: %w", err)
	}
	return d.styles().Success.Render("Conversation history cleared."), nil
}

func (d *Dispatcher) export(args []string) (string, error) {
	s := d.styles()
	name := d.env.Config.ExportFormat
	if len(args) > 0 {
		name = args[0]
	}
	format, err := history.ParseFormat(name)
	if err != nil {
		return s.Error.Render(fmt.Sprintf("Unsupported export format: %s", name)), nil
	}

	path, err := history.ExportFile(d.env.ExportDir, d.env.History.Get(0), format, d.env.Now())
	switch {
	case errors.Is(err, history.ErrEmpty):
		return s.Warning.Render("No conversation history to export."), nil
	case err != nil:
		return "", fmt.Errorf("export failed: %w", err)
	}
	d.env.Logger.Info("history exported", map[string]any{"path": path, "format": string(format)})
	return s.Success.Render("Conversation exported to " + path), nil
}

func (d *Dispatcher) theme(args []string) (string, error) {
	names := strings.Join(render.ThemeNames(), ", ")
	if len(args) == 0 {
		return d.styles().Info.Render("Available themes: " + names), nil
	}

	name := strings.ToLower(args[0])
	theme, ok := render.LookupTheme(name)
	if !ok {
		return d.styles().Error.Render(fmt.Sprintf("Unknown theme: %s. Available themes: %s", name, names)), nil
	}
	if err := d.env.Config.Set("theme", name); err != nil {
		return "", err
	}
	if err := d.save(); err != nil {
		return "", err
	}
	d.themeChanged(theme)
	return theme.Styles().Success.Render("Theme changed to " + name), nil
}

func (d *Dispatcher) settings([]string) (string, error) {
	settings := d.env.Config.Settings()
	var b strings.Builder
	b.WriteString("Current Settings:\n\n")
	for _, key := range slices.Sorted(maps.Keys(settings)) {
		fmt.Fprintf(&b, "%s: %v\n", key, settings[key])
	}
	return b.String(), nil
}

func (d *Dispatcher) reset([]string) (string, error) {
	d.env.Config.Reset()
	if err := d.save(); err != nil {
		return "", err
	}
	d.env.History.SetMaxItems(d.env.Config.MaxHistory)
	d.themeChanged(render.ThemeOrDefault(d.env.Config.Theme))
	return d.styles().Success.Render("Configuration reset to defaults."), nil
}

func (d *Dispatcher) stats([]string) (string, error) {
	theme := render.ThemeOrDefault(d.env.Config.Theme)
	return tui.RenderStatsStatic(theme, d.env.Collector.Snapshot()), nil
}

func (d *Dispatcher) exit([]string) (string, error) {
	return "", ErrExit
}

func (d *Dispatcher) save() error {
	if d.env.ConfigPath == "" {
		return nil
	}
	if err := d.env.Config.Save(d.env.ConfigPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func (d *Dispatcher) themeChanged(t render.Theme) {
	if d.env.OnTheme != nil {
		d.env.OnTheme(t)
	}
}
