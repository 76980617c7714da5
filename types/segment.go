package types

// SegmentKind discriminates the Segment variants.
type SegmentKind string

// Segment kinds produced by the markup transformer.
const (
	SegmentKindProse SegmentKind = "prose"
	SegmentKindCode  SegmentKind = "code"
	SegmentKindTable SegmentKind = "table"
)

// DefaultCodeLanguage labels fenced blocks that carry no language tag.
const DefaultCodeLanguage = "text"

// Segment is one unit of transformed answer text, ready for rendering.
// The concrete types are Prose, CodeBlock and Table.
type Segment interface {
	Kind() SegmentKind
	// Source returns the text the segment renders as when formatting
	// is unavailable or fails.
	Source() string
}

// Prose is free text, interpreted as markdown by the renderer.
type Prose struct {
	Text string
}

// CodeBlock is the content of a fenced code block.
type CodeBlock struct {
	Language string
	Code     string
}

// Table is a run of pipe-delimited lines. Rows may differ in width.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Kind implements Segment.
func (Prose) Kind() SegmentKind { return SegmentKindProse }

// Kind implements Segment.
func (CodeBlock) Kind() SegmentKind { return SegmentKindCode }

// Kind implements Segment.
func (Table) Kind() SegmentKind { return SegmentKindTable }

// Source implements Segment.
func (p Prose) Source() string { return p.Text }

// Source implements Segment. The fence is restored around the code.
func (c CodeBlock) Source() string {
	return "```" + c.Language + "\n" + c.Code + "\n```"
}

// Source implements Segment. Cells are re-joined with " | ".
func (t Table) Source() string {
	out := joinRow(t.Headers)
	for _, row := range t.Rows {
		out += "\n" + joinRow(row)
	}
	return out
}

func joinRow(cells []string) string {
	s := "|"
	for _, c := range cells {
		s += " " + c + " |"
	}
	return s
}

var (
	_ Segment = Prose{}
	_ Segment = CodeBlock{}
	_ Segment = Table{}
)
