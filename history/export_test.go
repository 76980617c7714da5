package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

var sampleEntries = []Entry{
	{
		Timestamp: time.Date(2026, 2, 3, 14, 5, 6, 0, time.UTC),
		Prompt:    "what is go",
		Response:  "Go is a **language**.",
	},
	{
		Timestamp: time.Date(2026, 2, 3, 14, 6, 0, 0, time.UTC),
		Prompt:    "<script>alert(1)</script>",
		Response:  "escaped",
	},
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(strings.ToUpper(string(f)))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %q, %v", f, got, err)
		}
	}
	if _, err := ParseFormat("docx"); err == nil || !strings.Contains(err.Error(), "unsupported export format: docx") {
		t.Errorf("ParseFormat(docx) err = %v", err)
	}
}

func TestFileName(t *testing.T) {
	got := FileName(FormatMD, time.Date(2026, 10, 18, 9, 8, 7, 0, time.UTC))
	if got != "you_export_20261018_090807.md" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestExport_TXT(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, sampleEntries[:1], FormatTXT); err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "[2026-02-03 14:05:06]\n> what is go\nGo is a **language**.\n\n"
	if buf.String() != want {
		t.Errorf("txt = %q, want %q", buf.String(), want)
	}
}

func TestExport_MD(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, sampleEntries[:1], FormatMD); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got := buf.String()
	for _, want := range []string{
		"# YOU.COM Conversation Export\n\n",
		"## 2026-02-03 14:05:06\n\n",
		"**Prompt:** what is go\n\n",
		"**Response:**\n\nGo is a **language**.\n\n---\n\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("md missing %q:\n%s", want, got)
		}
	}
}

func TestExport_StructuredFormats(t *testing.T) {
	tests := []struct {
		format Format
		decode func([]byte, *[]Entry) error
	}{
		{FormatJSON, func(b []byte, v *[]Entry) error { return json.Unmarshal(b, v) }},
		{FormatYAML, func(b []byte, v *[]Entry) error { return yaml.Unmarshal(b, v) }},
		{FormatMsgpack, func(b []byte, v *[]Entry) error { return msgpack.Unmarshal(b, v) }},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Export(&buf, sampleEntries, tt.format); err != nil {
				t.Fatalf("Export: %v", err)
			}
			var got []Entry
			if err := tt.decode(buf.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != len(sampleEntries) {
				t.Fatalf("len = %d, want %d", len(got), len(sampleEntries))
			}
			if got[0].Prompt != sampleEntries[0].Prompt || !got[0].Timestamp.Equal(sampleEntries[0].Timestamp) {
				t.Errorf("entry[0] = %+v, want %+v", got[0], sampleEntries[0])
			}
		})
	}
}

func TestExport_PDF(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, sampleEntries, FormatPDF); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF-") {
		t.Errorf("pdf header = %q, want %%PDF- prefix", out[:min(len(out), 8)])
	}
	if !strings.Contains(out, "%%EOF") {
		t.Error("pdf missing EOF trailer")
	}
}

func TestExport_HTML(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, sampleEntries, FormatHTML); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>YOU.COM Conversation Export</title>",
		"<h1>YOU.COM Conversation Export</h1>",
		"<strong>language</strong>",
		"</html>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML from prompt leaked into export:\n%s", got)
	}
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 18, 9, 8, 7, 0, time.UTC)

	path, err := ExportFile(dir, sampleEntries, FormatJSON, now)
	if err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	if want := filepath.Join(dir, "you_export_20261018_090807.json"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestExportFile_Empty(t *testing.T) {
	_, err := ExportFile(t.TempDir(), nil, FormatTXT, time.Now())
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}
