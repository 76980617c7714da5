package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// Format is an export file format.
type Format string

// Supported export formats.
const (
	FormatTXT     Format = "txt"
	FormatMD      Format = "md"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
	FormatHTML    Format = "html"
	FormatPDF     Format = "pdf"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatTXT, FormatMD, FormatJSON, FormatYAML, FormatMsgpack, FormatHTML, FormatPDF}

const (
	exportTitle     = "YOU.COM Conversation Export"
	displayLayout   = "2006-01-02 15:04:05"
	fileStampLayout = "20060102_150405"
)

// ParseFormat parses an export format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// FileName returns the export file name for a given time.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("you_export_%s.%s", now.Format(fileStampLayout), f)
}

// Export writes entries to w in format f.
func Export(w io.Writer, entries []Entry, f Format) error {
	switch f {
	case FormatTXT:
		return exportTXT(w, entries)
	case FormatMD:
		_, err := io.WriteString(w, markdownDocument(entries))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(entries)
	case FormatHTML:
		return exportHTML(w, entries)
	case FormatPDF:
		return exportPDF(w, entries)
	default:
		return fmt.Errorf("unsupported export format: %s", f)
	}
}

// ExportFile writes entries to a new file in dir named after now, and
// returns its path. It returns ErrEmpty when there is nothing to export.
func ExportFile(dir string, entries []Entry, f Format, now time.Time) (string, error) {
	if len(entries) == 0 {
		return "", ErrEmpty
	}

	var buf bytes.Buffer
	if err := Export(&buf, entries, f); err != nil {
		return "", fmt.Errorf("export %s: %w", f, err)
	}

	path := filepath.Join(dir, FileName(f, now))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

func exportTXT(w io.Writer, entries []Entry) error {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "[%s]\n", e.Timestamp.Format(displayLayout))
		fmt.Fprintf(&b, "> %s\n", e.Prompt)
		fmt.Fprintf(&b, "%s\n\n", e.Response)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func markdownDocument(entries []Entry) string {
	var b strings.Builder
	b.WriteString("# " + exportTitle + "\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "## %s\n\n", e.Timestamp.Format(displayLayout))
		fmt.Fprintf(&b, "**Prompt:** %s\n\n", e.Prompt)
		fmt.Fprintf(&b, "**Response:**\n\n%s\n\n---\n\n", e.Response)
	}
	return b.String()
}

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; }
h2 { color: #666; font-size: 0.9em; }
strong { color: #0066cc; }
pre { background: #f5f5f5; padding: 0.5em; }
</style>
</head>
<body>
`

// exportHTML renders the markdown export as a standalone page. Raw HTML in
// prompts and responses is not passed through.
func exportHTML(w io.Writer, entries []Entry) error {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(markdownDocument(entries)), &body); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	if _, err := fmt.Fprintf(w, htmlHead, html.EscapeString(exportTitle)); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

// exportPDF lays out the same sections as the HTML export on A4 pages.
// Text outside cp1252 is transliterated by the core fonts' translator.
func exportPDF(w io.Writer, entries []Entry) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(exportTitle, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(exportTitle), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	left, _, right, _ := pdf.GetMargins()
	pageWidth, _ := pdf.GetPageSize()
	for _, e := range entries {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(102, 102, 102)
		pdf.CellFormat(0, 5, e.Timestamp.Format(displayLayout), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(0, 102, 204)
		pdf.MultiCell(0, 6, tr("Prompt: "+e.Prompt), "", "L", false)

		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 6, tr(e.Response), "", "L", false)

		pdf.Ln(2)
		y := pdf.GetY()
		pdf.Line(left, y, pageWidth-right, y)
		pdf.Ln(4)
	}
	return pdf.Output(w)
}
