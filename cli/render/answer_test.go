package render

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ousax/scrap/markup"
	"github.com/ousax/scrap/metrics"
	"github.com/ousax/scrap/types"
)

type markdownFunc func(string) (string, error)

func (f markdownFunc) Render(in string) (string, error) { return f(in) }

func newTestRenderer(t *testing.T, opts Options) *AnswerRenderer {
	t.Helper()
	r, err := NewAnswerRenderer(ThemeOrDefault("default"), opts)
	if err != nil {
		t.Fatalf("NewAnswerRenderer: %v", err)
	}
	return r
}

func TestRenderAnswer_PlainIsVerbatim(t *testing.T) {
	c := metrics.NewCollector("s", "default")
	r := newTestRenderer(t, Options{Rich: false, Collector: c})

	answers := []string{
		"",
		"plain",
		"pre\n```python\nprint(1)\n```\npost",
		"a|b\n1|2",
	}
	for _, a := range answers {
		if got := r.RenderAnswer(a); got != a {
			t.Errorf("RenderAnswer(%q) = %q, want verbatim", a, got)
		}
	}
	if got := c.Snapshot().PlainTextFallbacks; got != int64(len(answers)) {
		t.Errorf("PlainTextFallbacks = %d, want %d", got, len(answers))
	}
}

func TestRender_Plain_UsesSource(t *testing.T) {
	r := newTestRenderer(t, Options{Rich: false})

	got := r.Render([]types.Segment{
		types.Prose{Text: "intro"},
		types.CodeBlock{Language: "go", Code: "x := 1"},
	})

	want := "intro\n```go\nx := 1\n```"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRender_Prose(t *testing.T) {
	var seen []string
	md := markdownFunc(func(in string) (string, error) {
		seen = append(seen, in)
		return "\n<md>" + in + "</md>\n\n", nil
	})
	r := newTestRenderer(t, Options{Rich: true, Markdown: md})

	got := r.Render([]types.Segment{types.Prose{Text: "**hi**"}})

	if got != "<md>**hi**</md>" {
		t.Errorf("Render() = %q, want trimmed markdown output", got)
	}
	if len(seen) != 1 || seen[0] != "**hi**" {
		t.Errorf("markdown input = %q, want [**hi**]", seen)
	}
}

func TestRender_ProseError_FallsBack(t *testing.T) {
	c := metrics.NewCollector("s", "default")
	md := markdownFunc(func(string) (string, error) { return "", errors.New("boom") })
	r := newTestRenderer(t, Options{Rich: true, Markdown: md, Collector: c})

	got := r.Render([]types.Segment{types.Prose{Text: "raw *text*"}})

	if got != "raw *text*" {
		t.Errorf("Render() = %q, want raw text", got)
	}
	if n := c.Snapshot().RenderFallbacks; n != 1 {
		t.Errorf("RenderFallbacks = %d, want 1", n)
	}
}

func TestRender_ProseFallbackRoundTrips(t *testing.T) {
	md := markdownFunc(func(string) (string, error) { return "", errors.New("boom") })
	r := newTestRenderer(t, Options{Rich: true, Markdown: md})

	texts := []string{
		"plain prose",
		"**bold** and _em_\nsecond line",
		"a list:\n- one\n- two",
	}
	for _, text := range texts {
		want := []types.Segment{types.Prose{Text: text}}
		out := r.Render(want)
		if got := markup.Transform(out); !reflect.DeepEqual(got, want) {
			t.Errorf("Transform(Render(%q)) = %#v, want %#v", text, got, want)
		}
	}
}

func TestRender_PanicFallsBackPerSegment(t *testing.T) {
	md := markdownFunc(func(in string) (string, error) {
		if in == "bad" {
			panic("renderer exploded")
		}
		return in, nil
	})
	r := newTestRenderer(t, Options{Rich: true, Markdown: md})

	got := r.Render([]types.Segment{
		types.Prose{Text: "good"},
		types.Prose{Text: "bad"},
		types.Prose{Text: "also good"},
	})

	if got != "good\nbad\nalso good" {
		t.Errorf("Render() = %q, want every segment present", got)
	}
}

func TestRender_Code(t *testing.T) {
	r := newTestRenderer(t, Options{Rich: true, Markdown: markdownFunc(nopMarkdown)})

	got := PlainText(r.Render([]types.Segment{
		types.CodeBlock{Language: "python", Code: "print(1)\nprint(2)"},
	}))

	if !strings.Contains(got, "Code (python)") {
		t.Errorf("missing panel title:\n%s", got)
	}
	if !strings.Contains(got, "print(1)") || !strings.Contains(got, "print(2)") {
		t.Errorf("missing code body:\n%s", got)
	}
	if !strings.Contains(got, "╭") || !strings.Contains(got, "╯") {
		t.Errorf("missing rounded border:\n%s", got)
	}
}

func TestRender_Code_UnknownLanguage(t *testing.T) {
	c := metrics.NewCollector("s", "default")
	r := newTestRenderer(t, Options{Rich: true, Color: true, Markdown: markdownFunc(nopMarkdown), Collector: c})

	got := PlainText(r.Render([]types.Segment{
		types.CodeBlock{Language: "notalanguage", Code: "some <text> here"},
	}))

	if !strings.Contains(got, "Code (notalanguage)") || !strings.Contains(got, "some <text> here") {
		t.Errorf("unexpected output:\n%s", got)
	}
	if n := c.Snapshot().RenderFallbacks; n != 0 {
		t.Errorf("RenderFallbacks = %d, want 0", n)
	}
}

func TestRender_Table(t *testing.T) {
	r := newTestRenderer(t, Options{Rich: true, Markdown: markdownFunc(nopMarkdown)})

	got := PlainText(r.Render([]types.Segment{
		types.Table{Headers: []string{"Name", "Age"}, Rows: [][]string{{"Ann", "31"}, {"Bob", "27"}}},
	}))

	for _, want := range []string{"Data Table", "Name", "Age", "Ann", "31", "Bob", "27"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Data Table") > strings.Index(got, "Name") {
		t.Errorf("title should precede the grid:\n%s", got)
	}
}

func TestRender_Table_Ragged(t *testing.T) {
	c := metrics.NewCollector("s", "default")
	r := newTestRenderer(t, Options{Rich: true, Markdown: markdownFunc(nopMarkdown), Collector: c})

	got := PlainText(r.Render([]types.Segment{
		types.Table{Headers: []string{"a"}, Rows: [][]string{{"1", "2", "3"}, {}}},
	}))

	if !strings.Contains(got, "3") {
		t.Errorf("wide row truncated:\n%s", got)
	}
	if n := c.Snapshot().RenderFallbacks; n != 0 {
		t.Errorf("RenderFallbacks = %d, want 0", n)
	}
}

func TestRender_Table_NoColumns_FallsBack(t *testing.T) {
	r := newTestRenderer(t, Options{Rich: true, Markdown: markdownFunc(nopMarkdown)})

	seg := types.Table{Headers: []string{}}
	if got := r.Render([]types.Segment{seg}); got != seg.Source() {
		t.Errorf("Render() = %q, want source %q", got, seg.Source())
	}
}

func TestRender_ThemeLabels(t *testing.T) {
	theme := ThemeOrDefault("ocean")
	theme.TableTitle = "Results"
	theme.CodeTitle = "[%s]"
	r, err := NewAnswerRenderer(theme, Options{Rich: true, Markdown: markdownFunc(nopMarkdown)})
	if err != nil {
		t.Fatalf("NewAnswerRenderer: %v", err)
	}

	got := PlainText(r.Render([]types.Segment{
		types.CodeBlock{Language: "sh", Code: "ls"},
		types.Table{Headers: []string{"x"}},
	}))

	if !strings.Contains(got, "[sh]") || !strings.Contains(got, "Results") {
		t.Errorf("theme labels not applied:\n%s", got)
	}
}

func TestRenderAnswer_Glamour(t *testing.T) {
	c := metrics.NewCollector("s", "default")
	r := newTestRenderer(t, Options{Rich: true, Collector: c})

	answer := "# Title\n\nSome **bold** words.\n```go\nfmt.Println(1)\n```\n| k | v |\n| a | b |\nThe end."
	got := PlainText(r.RenderAnswer(answer))

	for _, want := range []string{"Title", "bold", "fmt.Println(1)", "Code (go)", "Data Table", "The end."} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered answer missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "```") {
		t.Errorf("fence markers leaked into output:\n%s", got)
	}
	s := c.Snapshot()
	if s.SegmentsByKind["prose"] != 2 || s.SegmentsByKind["code"] != 1 || s.SegmentsByKind["table"] != 1 {
		t.Errorf("SegmentsByKind = %v, want prose=2 code=1 table=1", s.SegmentsByKind)
	}
	if s.RenderFallbacks != 0 {
		t.Errorf("RenderFallbacks = %d, want 0", s.RenderFallbacks)
	}
}

func TestThemes(t *testing.T) {
	names := ThemeNames()
	want := []string{"dark", "default", "light", "ocean"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("ThemeNames() = %v, want %v", names, want)
	}

	if _, ok := LookupTheme("neon"); ok {
		t.Error("LookupTheme(neon) ok = true, want false")
	}
	if got := ThemeOrDefault("neon").Name; got != DefaultThemeName {
		t.Errorf("ThemeOrDefault(neon).Name = %q, want %q", got, DefaultThemeName)
	}

	light, _ := LookupTheme("light")
	if light.MarkdownStyle != "light" {
		t.Errorf("light.MarkdownStyle = %q, want light", light.MarkdownStyle)
	}
}

func TestLookupTheme_ReturnsCopies(t *testing.T) {
	a, _ := LookupTheme("default")
	a.TableTitle = "mutated"

	b, _ := LookupTheme("default")
	if b.TableTitle != "Data Table" {
		t.Errorf("TableTitle = %q, want Data Table", b.TableTitle)
	}
}

func TestPlainText(t *testing.T) {
	in := "\x1b[1;31mred\x1b[0m plain"
	if got := PlainText(in); got != "red plain" {
		t.Errorf("PlainText() = %q, want %q", got, "red plain")
	}
}

func nopMarkdown(in string) (string, error) { return in, nil }
