package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ecmacore/internal/diag"
	"ecmacore/internal/lexical"
	"ecmacore/internal/source"
	"ecmacore/internal/trace"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func TestListFilesFiltersAndSorts(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"b.js":       "",
		"a.mjs":      "",
		"sub/c.cjs":  "",
		"notes.txt":  "",
		"sub/d.json": "",
	})
	files, err := ListFiles(dir, nil)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{"a.mjs", "b.js", filepath.Join("sub", "c.cjs")}
	if len(files) != len(want) {
		t.Fatalf("got %v", files)
	}
	for i, w := range want {
		if files[i] != filepath.Join(dir, w) {
			t.Fatalf("files[%d] = %s, want %s", i, files[i], w)
		}
	}
}

func TestScanDir(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"ok.js":     "a // c\r\nb\n",
		"open.js":   "x /* never closed",
		"nested.js": "/* a\nb */ y",
	})
	res, err := ScanDir(context.Background(), dir, Options{Jobs: 2})
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(res.Results) != 3 || res.Files.Len() != 3 {
		t.Fatalf("results=%d files=%d", len(res.Results), res.Files.Len())
	}
	// sorted: nested, ok, open
	for i, name := range []string{"nested.js", "ok.js", "open.js"} {
		if filepath.Base(res.Results[i].Path) != name || int(res.Results[i].FileID) != i {
			t.Fatalf("result %d = %s id=%d", i, res.Results[i].Path, res.Results[i].FileID)
		}
	}
	if got := res.Results[1].Summary.Count(lexical.TriviaSingleLineComment); got != 1 {
		t.Fatalf("ok.js single-line comments = %d", got)
	}
	if res.Results[0].Summary.Lines != 2 {
		t.Fatalf("nested.js lines = %d, want 2", res.Results[0].Summary.Lines)
	}
	if res.Summary.Unterminated != 1 || res.Summary.Count(lexical.TriviaMultiLineComment) != 2 {
		t.Fatalf("unexpected aggregate %+v", res.Summary)
	}
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Code != diag.LexUnterminatedComment {
		t.Fatalf("unexpected diagnostics %+v", res.Bag.Items())
	}
	if res.Results[1].Trivia != nil {
		t.Fatalf("trivia kept without KeepTrivia")
	}
	if len(res.Timing.Phases) != 3 {
		t.Fatalf("unexpected timing %+v", res.Timing)
	}
}

func TestScanFileDecodesAndWarns(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"bom.js": "\xef\xbb\xbfa\n",
		"bad.js": "ok\xff",
	})
	res, err := ScanDir(context.Background(), dir, Options{KeepTrivia: true})
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	bad, bom := res.Results[0], res.Results[1]
	if bad.Bag.Len() != 1 || bad.Bag.Items()[0].Code != diag.LexInvalidEncoding || bad.Bag.Items()[0].Primary.Start != 2 {
		t.Fatalf("unexpected bad.js diagnostics %+v", bad.Bag.Items())
	}
	if len(bom.Trivia) != 2 || bom.Trivia[0].Text != "a" {
		t.Fatalf("BOM not stripped: %+v", bom.Trivia)
	}
}

func TestScanMissingFileIsDiagnostic(t *testing.T) {
	dir := t.TempDir()
	res := ScanFile(context.Background(), source.NewFileSet(), filepath.Join(dir, "gone.js"), Options{})
	if res.Err == nil {
		t.Fatalf("expected load error")
	}
	if res.Bag.Len() != 1 || res.Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Fatalf("unexpected diagnostics %+v", res.Bag.Items())
	}
}

func TestScanEvents(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.js": "a", "b.js": "/*"})
	events := make(chan Event, 64)
	if _, err := ScanDir(context.Background(), dir, Options{Events: events}); err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	close(events)

	final := map[string]Status{}
	queued := 0
	for ev := range events {
		if ev.Status == StatusQueued {
			queued++
		}
		if ev.Stage == StageScan && ev.Status != StatusWorking {
			final[filepath.Base(ev.File)] = ev.Status
		}
	}
	if queued != 2 {
		t.Fatalf("queued = %d", queued)
	}
	if final["a.js"] != StatusDone || final["b.js"] != StatusError {
		t.Fatalf("unexpected final statuses %v", final)
	}
}

func TestScanDirCancelled(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.js": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ScanDir(ctx, dir, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestScanTraceSpans(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.js": "a", "b.js": "b"})
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := Scan(ctx, dir, Options{}); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	counts := map[string]int{}
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd {
			counts[ev.Name]++
		}
	}
	if counts["scan.dir"] != 1 || counts["scan.file"] != 2 {
		t.Fatalf("unexpected span ends %v", counts)
	}
}

func TestScanSingleFile(t *testing.T) {
	dir := writeTree(t, map[string]string{"one.js": "a\nb"})
	res, err := Scan(context.Background(), filepath.Join(dir, "one.js"), Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Results) != 1 || res.Summary.Lines != 2 {
		t.Fatalf("unexpected result %+v", res.Summary)
	}
}
