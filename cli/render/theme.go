package render

import (
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// DefaultThemeName is the theme used when none is configured.
const DefaultThemeName = "default"

// ANSI palette entries used by the built-in themes.
const (
	ansiRed     = lipgloss.Color("1")
	ansiGreen   = lipgloss.Color("2")
	ansiYellow  = lipgloss.Color("3")
	ansiBlue    = lipgloss.Color("4")
	ansiMagenta = lipgloss.Color("5")
	ansiCyan    = lipgloss.Color("6")
	ansiWhite   = lipgloss.Color("7")
)

// Theme is the palette and labels used for answers, the banner and command
// output. Themes are plain values; callers pass them where needed.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// BannerFont names the banner lettering.
	BannerFont string
	// CodeStyle is the syntax highlighting style for code panels.
	CodeStyle string
	// MarkdownStyle is the standard glamour style for prose.
	MarkdownStyle string
	// TableTitle is printed above each table.
	TableTitle string
	// CodeTitle is a format string receiving the block language.
	CodeTitle string
}

func baseTheme(name string) Theme {
	return Theme{
		Name:          name,
		Success:       ansiGreen,
		Warning:       ansiYellow,
		Error:         ansiRed,
		BannerFont:    "slant",
		CodeStyle:     "monokai",
		MarkdownStyle: "dark",
		TableTitle:    "Data Table",
		CodeTitle:     "Code (%s)",
	}
}

func builtinThemes() map[string]Theme {
	def := baseTheme("default")
	def.Primary, def.Secondary, def.Info = ansiCyan, ansiBlue, ansiMagenta

	dark := baseTheme("dark")
	dark.Primary, dark.Secondary, dark.Info = ansiWhite, ansiCyan, ansiBlue

	light := baseTheme("light")
	light.Primary, light.Secondary, light.Info = ansiBlue, ansiCyan, ansiMagenta
	light.MarkdownStyle = "light"

	ocean := baseTheme("ocean")
	ocean.Primary, ocean.Secondary, ocean.Info = ansiCyan, ansiBlue, ansiWhite

	return map[string]Theme{
		def.Name:   def,
		dark.Name:  dark,
		light.Name: light,
		ocean.Name: ocean,
	}
}

// LookupTheme returns the named built-in theme.
func LookupTheme(name string) (Theme, bool) {
	t, ok := builtinThemes()[name]
	return t, ok
}

// ThemeOrDefault returns the named theme, or the default theme when the name
// is unknown.
func ThemeOrDefault(name string) Theme {
	if t, ok := LookupTheme(name); ok {
		return t
	}
	t, _ := LookupTheme(DefaultThemeName)
	return t
}

// ThemeNames returns the built-in theme names in sorted order.
func ThemeNames() []string {
	return slices.Sorted(maps.Keys(builtinThemes()))
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Title     lipgloss.Style
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
	Muted     lipgloss.Style
	Panel     lipgloss.Style
	Box       lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Border    lipgloss.Style
}

// Styles builds the styles for t.
func (t Theme) Styles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Primary:   lipgloss.NewStyle().Foreground(t.Primary),
		Secondary: lipgloss.NewStyle().Foreground(t.Secondary),
		Success:   lipgloss.NewStyle().Foreground(t.Success),
		Warning:   lipgloss.NewStyle().Foreground(t.Warning),
		Error:     lipgloss.NewStyle().Foreground(t.Error),
		Info:      lipgloss.NewStyle().Foreground(t.Info),
		Muted:     lipgloss.NewStyle().Faint(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Secondary).
			Padding(0, 1),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(1, 2),
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Cell:   lipgloss.NewStyle().Padding(0, 1),
		Border: lipgloss.NewStyle().Foreground(t.Secondary),
	}
}
