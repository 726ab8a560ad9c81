package diag

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"ecmacore/internal/source"
)

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	file := fs.Add("/workspace/testdata/sample.js", []byte("a /*\nb\n"), 0)

	bag := NewBag(2)
	bag.Add(NewError(LexUnterminatedComment, source.Span{File: file, Start: 2, End: 7}, "unterminated\u2028comment").
		WithNote(source.Span{File: file, Start: 2, End: 4}, "opened here"))
	bag.Add(NewWarning(LexInvalidEncoding, source.Span{File: file, Start: 0, End: 1}, "bad\r\nbyte"))
	bag.Add(NewWarning(LexInfo, source.Span{File: file}, "dropped"))

	var out bytes.Buffer
	if err := Short(&out, bag, fs, ShortOpts{PathMode: PathModeRelative, Notes: true}); err != nil {
		t.Fatalf("Short: %v", err)
	}
	want := "testdata/sample.js:1:3-3:1: error LEX1001: unterminated comment\n" +
		"  testdata/sample.js:1:3: note: opened here\n" +
		"testdata/sample.js:1:1: warning LEX1002: bad byte\n" +
		"1 more diagnostic(s) dropped\n"
	if out.String() != want {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\ngot:\n%s", want, out.String())
	}

	out.Reset()
	if err := Short(&out, bag, fs, ShortOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("Short: %v", err)
	}
	if strings.Contains(out.String(), "note:") || !strings.HasPrefix(out.String(), "sample.js:1:3-3:1: ") {
		t.Fatalf("unexpected output without notes:\n%s", out.String())
	}
}

func TestSeverityNames(t *testing.T) {
	tests := []struct {
		sev          Severity
		label, upper string
	}{
		{SevInfo, "info", "INFO"},
		{SevWarning, "warning", "WARNING"},
		{SevError, "error", "ERROR"},
		{Severity(9), "unknown", "UNKNOWN"},
	}
	for _, tt := range tests {
		if tt.sev.Label() != tt.label || tt.sev.String() != tt.upper {
			t.Fatalf("severity %d: %q/%q", tt.sev, tt.sev.Label(), tt.sev.String())
		}
	}
}

func TestBagLimitAndMerge(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 3; i++ {
		b.Add(NewWarning(LexInfo, source.Span{Start: uint32(i)}, "w"))
	}
	if b.Len() != 2 || b.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", b.Len(), b.Dropped())
	}
	if b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("severity queries wrong")
	}

	other := NewBag(0)
	other.Add(NewError(LexUnterminatedComment, source.Span{}, "e"))
	b.Merge(other)
	if b.Len() != 2 || b.Dropped() != 2 {
		t.Fatalf("merge must honor the limit: len=%d dropped=%d", b.Len(), b.Dropped())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(NewWarning(LexInfo, source.Span{Start: 5, End: 6}, "late"))
	b.Add(NewError(LexUnterminatedComment, source.Span{Start: 1, End: 9}, "early"))
	b.Add(NewError(LexUnterminatedComment, source.Span{Start: 1, End: 9}, "early again"))
	b.Sort()
	b.Dedup()
	items := b.Items()
	if len(items) != 2 || items[0].Message != "early" || items[1].Message != "late" {
		t.Fatalf("unexpected order %+v", items)
	}
}

func TestPrettyExcerpt(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.js", []byte("x = 1;\n\tfoo /* open\n"))
	b := NewBag(0)
	b.Add(NewError(LexUnterminatedComment, source.Span{File: id, Start: 12, End: 19}, "unterminated comment"))

	var out bytes.Buffer
	if err := Pretty(&out, b, fs, PrettyOpts{TabWidth: 4}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	want := "a.js:2:6: ERROR LEX1001: unterminated comment\n" +
		"   2 |     foo /* open\n" +
		"     |         ^~~~~~~\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestPrettyWideCharacters(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("w.js", []byte("\u4f60\u597d/*"))
	b := NewBag(0)
	b.Add(NewError(LexUnterminatedComment, source.Span{File: id, Start: 6, End: 8}, "x"))

	var out bytes.Buffer
	if err := Pretty(&out, b, fs, PrettyOpts{}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	lines := strings.Split(out.String(), "\n")
	if len(lines) < 3 || lines[2] != "     |     ^~" {
		t.Fatalf("caret not aligned to display width: %q", out.String())
	}
}

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.js", []byte("a\n/*"))
	b := NewBag(0)
	b.Add(NewError(LexUnterminatedComment, source.Span{File: id, Start: 2, End: 4}, "unterminated"))

	var out bytes.Buffer
	if err := JSON(&out, b, fs, PathModeAuto); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var doc Output
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Count != 1 || doc.Diagnostics[0].Code != "LEX1001" {
		t.Fatalf("unexpected document %+v", doc)
	}
	loc := doc.Diagnostics[0].Location
	if loc.StartLine != 2 || loc.StartCol != 1 || loc.EndCol != 3 || loc.File != "a.js" {
		t.Fatalf("unexpected location %+v", loc)
	}
}
