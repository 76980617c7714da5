// Package markup splits an answer into prose, fenced code and table segments.
//
// Segmentation is heuristic and runs in two passes. Fenced code blocks are
// extracted first; the text around them is then scanned line by line and
// every contiguous run of lines containing "|" becomes a table. Whatever
// remains is prose.
package markup

import (
	"regexp"
	"strings"

	"github.com/ousax/scrap/types"
)

// codeFence matches a fenced block with an optional word-character language
// tag. The body is matched non-greedily so adjacent blocks stay separate.
var codeFence = regexp.MustCompile("(?s)```(\\w+)?\\n(.*?)\\n```")

const (
	cellSeparator = "|"
	newline       = "\n"
)

// Transform segments answer in order of first appearance. It never fails:
// text that matches neither a fence nor a table run is returned as prose.
func Transform(answer string) []types.Segment {
	var segments []types.Segment

	last := 0
	for _, m := range codeFence.FindAllStringSubmatchIndex(answer, -1) {
		before := answer[last:m[0]]
		if last > 0 {
			before = strings.TrimPrefix(before, newline)
		}
		segments = append(segments, scanText(strings.TrimSuffix(before, newline))...)

		lang := types.DefaultCodeLanguage
		if m[2] >= 0 && m[3] > m[2] {
			lang = answer[m[2]:m[3]]
		}
		segments = append(segments, types.CodeBlock{
			Language: lang,
			Code:     answer[m[4]:m[5]],
		})
		last = m[1]
	}

	rest := answer[last:]
	if last > 0 {
		rest = strings.TrimPrefix(rest, newline)
	}
	return append(segments, scanText(rest)...)
}

// scanText splits a stretch without code fences into prose and tables.
func scanText(text string) []types.Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !strings.Contains(text, cellSeparator) {
		return []types.Segment{types.Prose{Text: text}}
	}

	var (
		segments []types.Segment
		prose    []string
		run      []string
	)
	flushProse := func() {
		if len(prose) == 0 {
			return
		}
		joined := strings.Join(prose, newline)
		prose = nil
		if strings.TrimSpace(joined) != "" {
			segments = append(segments, types.Prose{Text: joined})
		}
	}
	flushRun := func() {
		if len(run) == 0 {
			return
		}
		segments = append(segments, parseTable(run))
		run = nil
	}

	for line := range strings.SplitSeq(text, newline) {
		if strings.Contains(line, cellSeparator) {
			flushProse()
			run = append(run, line)
			continue
		}
		flushRun()
		prose = append(prose, line)
	}
	flushRun()
	flushProse()

	return segments
}

// parseTable builds a table from a run of pipe lines. The first line holds
// the headers.
func parseTable(lines []string) types.Table {
	t := types.Table{Headers: splitCells(lines[0])}
	for _, line := range lines[1:] {
		t.Rows = append(t.Rows, splitCells(line))
	}
	return t
}

// splitCells splits a line on "|". An empty first field (leading pipe) and
// an empty last field (trailing pipe) are dropped; cells are trimmed.
func splitCells(line string) []string {
	fields := strings.Split(line, cellSeparator)
	if len(fields) > 0 && strings.TrimSpace(fields[0]) == "" {
		fields = fields[1:]
	}
	if n := len(fields); n > 0 && strings.TrimSpace(fields[n-1]) == "" {
		fields = fields[:n-1]
	}
	cells := make([]string, len(fields))
	for i, f := range fields {
		cells[i] = strings.TrimSpace(f)
	}
	return cells
}
