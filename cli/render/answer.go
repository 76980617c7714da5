package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/ousax/scrap/log"
	"github.com/ousax/scrap/markup"
	"github.com/ousax/scrap/metrics"
	"github.com/ousax/scrap/types"
)

// DefaultWidth is the word-wrap width used when the terminal size is unknown.
const DefaultWidth = 100

const (
	colorFormatter = "terminal256"
	noColorStyle   = "notty"
)

// MarkdownRenderer renders markdown text for the terminal.
type MarkdownRenderer interface {
	Render(in string) (string, error)
}

// Options configures an AnswerRenderer.
type Options struct {
	// Rich enables segment formatting. When false the answer is returned
	// verbatim.
	Rich bool
	// Color enables ANSI colors in highlighted code and markdown.
	Color bool
	// Width is the prose wrap width (default DefaultWidth).
	Width int
	// Markdown overrides the prose renderer.
	Markdown MarkdownRenderer
	// Logger receives render degradation warnings.
	Logger *log.Logger
	// Collector counts segments and fallbacks.
	Collector *metrics.Collector
}

// AnswerRenderer turns answer segments into printable terminal text.
// Render is pure: it performs no I/O besides logging.
type AnswerRenderer struct {
	theme     Theme
	styles    Styles
	opts      Options
	markdown  MarkdownRenderer
	formatter chroma.Formatter
	logger    *log.Logger
}

// NewAnswerRenderer creates a renderer for the given theme.
func NewAnswerRenderer(theme Theme, opts Options) (*AnswerRenderer, error) {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}

	md := opts.Markdown
	if md == nil && opts.Rich {
		style := theme.MarkdownStyle
		if !opts.Color {
			style = noColorStyle
		}
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(opts.Width),
			glamour.WithPreservedNewLines(),
		)
		if err != nil {
			return nil, fmt.Errorf("create markdown renderer: %w", err)
		}
		md = tr
	}

	formatter := formatters.NoOp
	if opts.Color {
		formatter = formatters.Get(colorFormatter)
	}

	return &AnswerRenderer{
		theme:     theme,
		styles:    theme.Styles(),
		opts:      opts,
		markdown:  md,
		formatter: formatter,
		logger:    logger,
	}, nil
}

// Theme returns the renderer's theme.
func (r *AnswerRenderer) Theme() Theme {
	return r.theme
}

// Rich reports whether segment formatting is enabled.
func (r *AnswerRenderer) Rich() bool {
	return r.opts.Rich
}

// RenderAnswer transforms and renders a complete answer. Without rich
// formatting the answer is returned unchanged.
func (r *AnswerRenderer) RenderAnswer(answer string) string {
	if !r.opts.Rich {
		r.opts.Collector.IncPlainTextFallback()
		return answer
	}
	return r.Render(markup.Transform(answer))
}

// Render renders segments in order. A segment that fails to render is
// replaced by its source text.
func (r *AnswerRenderer) Render(segments []types.Segment) string {
	if !r.opts.Rich {
		parts := make([]string, len(segments))
		for i, s := range segments {
			parts[i] = s.Source()
		}
		return strings.Join(parts, "\n")
	}

	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		r.opts.Collector.IncSegment(string(s.Kind()))
		parts = append(parts, r.renderSegment(s))
	}
	return strings.Join(parts, "\n")
}

func (r *AnswerRenderer) renderSegment(s types.Segment) (out string) {
	defer func() {
		if p := recover(); p != nil {
			out = r.fallback(s, fmt.Errorf("panic: %v", p))
		}
	}()

	var err error
	switch seg := s.(type) {
	case types.Prose:
		out, err = r.renderProse(seg)
	case types.CodeBlock:
		out, err = r.renderCode(seg)
	case types.Table:
		out, err = r.renderTable(seg)
	default:
		err = fmt.Errorf("unknown segment kind %q", s.Kind())
	}
	if err != nil {
		return r.fallback(s, err)
	}
	return out
}

func (r *AnswerRenderer) fallback(s types.Segment, err error) string {
	r.opts.Collector.IncRenderFallback()
	r.logger.Warn("segment rendered as raw text", map[string]any{
		"kind":  string(s.Kind()),
		"error": err.Error(),
	})
	return s.Source()
}

func (r *AnswerRenderer) renderProse(p types.Prose) (string, error) {
	if r.markdown == nil {
		return p.Text, nil
	}
	out, err := r.markdown.Render(p.Text)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

func (r *AnswerRenderer) renderCode(c types.CodeBlock) (string, error) {
	body, err := r.highlight(c.Language, c.Code)
	if err != nil {
		return "", err
	}
	title := r.styles.Title.Render(fmt.Sprintf(r.theme.CodeTitle, c.Language))
	return lipgloss.JoinVertical(lipgloss.Left, title, r.styles.Panel.Render(body)), nil
}

// highlight colors code for lang. Unknown languages are emitted as plain
// text.
func (r *AnswerRenderer) highlight(lang, code string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", lang, err)
	}
	var b strings.Builder
	if err := r.formatter.Format(&b, styles.Get(r.theme.CodeStyle), it); err != nil {
		return "", fmt.Errorf("highlight %s: %w", lang, err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *AnswerRenderer) renderTable(t types.Table) (string, error) {
	headers, rows := normalizeTable(t)
	if len(headers) == 0 {
		return "", fmt.Errorf("table has no columns")
	}

	grid := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.Border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.Header
			}
			return r.styles.Cell
		}).
		Headers(headers...).
		Rows(rows...)

	title := r.styles.Title.Render(r.theme.TableTitle)
	return lipgloss.JoinVertical(lipgloss.Left, title, grid.Render()), nil
}

// normalizeTable pads the header and every row to the widest line.
func normalizeTable(t types.Table) ([]string, [][]string) {
	width := len(t.Headers)
	for _, row := range t.Rows {
		width = max(width, len(row))
	}
	pad := func(cells []string) []string {
		out := make([]string, width)
		copy(out, cells)
		return out
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = pad(row)
	}
	return pad(t.Headers), rows
}

// PlainText strips ANSI escape sequences from rendered output.
func PlainText(s string) string {
	return ansi.Strip(s)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of the terminal behind f, or DefaultWidth.
func TerminalWidth(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return min(w, DefaultWidth)
}
