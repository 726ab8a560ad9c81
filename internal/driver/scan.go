package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strconv"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"ecmacore/internal/diag"
	"ecmacore/internal/lexical"
	"ecmacore/internal/observ"
	"ecmacore/internal/source"
	"ecmacore/internal/trace"
)

// DefaultExtensions are the file suffixes ScanDir picks up.
var DefaultExtensions = []string{".js", ".mjs", ".cjs"}

// Options controls a scan.
type Options struct {
	// Jobs bounds parallel file scans; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps each file's bag and the merged bag; <= 0 means
	// unlimited.
	MaxDiagnostics int
	Extensions     []string
	// Events receives progress when non-nil. The scan never closes it.
	Events chan<- Event
	// KeepTrivia stores every trivia in the file result.
	KeepTrivia bool
}

// FileResult holds the outcome for one file.
type FileResult struct {
	Path    string
	FileID  source.FileID
	Summary lexical.Summary
	Bag     *diag.Bag
	Trivia  []lexical.Trivia
	// Err is set when the file could not be loaded; Bag carries the
	// matching IO diagnostic.
	Err error
}

// Result aggregates a scan.
type Result struct {
	Files   *source.FileSet
	Results []FileResult
	Summary lexical.Summary
	// Bag merges every file's diagnostics, sorted.
	Bag    *diag.Bag
	Timing observ.Report
}

// ListFiles returns the sorted files under dir whose suffix is in exts.
func ListFiles(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && slices.Contains(exts, filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Scan scans path, which may be a file or a directory.
func Scan(ctx context.Context, path string, opts Options) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if info.IsDir() {
		return ScanDir(ctx, path, opts)
	}

	timer := observ.NewTimer()
	fileSet := source.NewFileSet()
	fileSet.SetBaseDir(filepath.Dir(path))

	idx := timer.Begin("scan")
	res := ScanFile(ctx, fileSet, path, opts)
	timer.End(idx, res.Path)

	out := &Result{Files: fileSet, Results: []FileResult{res}}
	out.finish(opts.MaxDiagnostics)
	out.Timing = timer.Report()
	return out, nil
}

// ScanDir scans every matching file under dir. Files are loaded in path
// order so FileIDs are deterministic, then classified in parallel. A file
// that fails to load yields a diagnostic rather than an error; the returned
// error is only for listing failures and cancellation.
func ScanDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, trace.ScopePass, "scan.dir")
	defer span.End(dir)

	timer := observ.NewTimer()
	idx := timer.Begin("list")
	files, err := ListFiles(dir, opts.Extensions)
	timer.End(idx, strconv.Itoa(len(files))+" files")
	if err != nil {
		return nil, err
	}
	span.WithExtra("files", strconv.Itoa(len(files)))

	fileSet := source.NewFileSet()
	fileSet.SetBaseDir(dir)
	out := &Result{Files: fileSet, Results: make([]FileResult, len(files))}
	if len(files) == 0 {
		out.finish(opts.MaxDiagnostics)
		out.Timing = timer.Report()
		return out, nil
	}

	for _, path := range files {
		if err := send(ctx, opts.Events, Event{File: path, Stage: StageLoad, Status: StatusQueued}); err != nil {
			return nil, err
		}
	}

	idx = timer.Begin("load")
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out.Results[i] = loadFile(ctx, fileSet, path, opts)
	}
	timer.End(idx, "")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	idx = timer.Begin("scan")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i := range out.Results {
		if out.Results[i].Err != nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// i is unique per goroutine
			scanLoaded(gctx, fileSet, &out.Results[i], opts)
			return nil
		})
	}
	err = g.Wait()
	timer.End(idx, strconv.Itoa(jobs)+" jobs")
	if err != nil {
		return nil, err
	}

	out.finish(opts.MaxDiagnostics)
	out.Timing = timer.Report()
	return out, nil
}

// ScanFile loads, decodes and classifies one file, registering it in
// fileSet.
func ScanFile(ctx context.Context, fileSet *source.FileSet, path string, opts Options) FileResult {
	res := loadFile(ctx, fileSet, path, opts)
	if res.Err == nil {
		scanLoaded(ctx, fileSet, &res, opts)
	}
	return res
}

// loadFile registers path in fileSet. Load failures register an empty file
// so diagnostics still resolve to the path.
func loadFile(ctx context.Context, fileSet *source.FileSet, path string, opts Options) FileResult {
	bag := diag.NewBag(opts.MaxDiagnostics)
	res := FileResult{Path: path, Bag: bag}

	_ = send(ctx, opts.Events, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	started := time.Now()
	dec, err := load(path)
	if err != nil {
		res.Err = err
		res.FileID = fileSet.Add(path, nil, 0)
		bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: res.FileID}, err.Error()))
		trace.Point(trace.FromContext(ctx), trace.ScopeFile, "scan.load_error", path,
			map[string]string{"error": err.Error()})
		_ = send(ctx, opts.Events, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return res
	}

	res.FileID = fileSet.Add(path, dec.Content, dec.Flags)
	if dec.InvalidAt >= 0 {
		off, convErr := safecast.Conv[uint32](dec.InvalidAt)
		if convErr == nil {
			bag.Add(diag.NewWarning(diag.LexInvalidEncoding,
				source.Span{File: res.FileID, Start: off, End: off + 1},
				"invalid UTF-8 sequence"))
		}
	}
	if dec.LoneSurrogates > 0 {
		bag.Add(diag.NewWarning(diag.LexLoneSurrogate, source.Span{File: res.FileID},
			fmt.Sprintf("%d unpaired UTF-16 surrogate(s) replaced with U+FFFD", dec.LoneSurrogates)))
	}
	_ = send(ctx, opts.Events, Event{File: path, Stage: StageLoad, Status: StatusDone, Elapsed: time.Since(started)})
	return res
}

func scanLoaded(ctx context.Context, fileSet *source.FileSet, res *FileResult, opts Options) {
	_, span := trace.StartSpan(ctx, trace.ScopeFile, "scan.file")
	started := time.Now()
	_ = send(ctx, opts.Events, Event{File: res.Path, Stage: StageScan, Status: StatusWorking})

	sc := lexical.NewScanner(fileSet.Get(res.FileID), diag.BagReporter{Bag: res.Bag})
	res.Summary = lexical.Summary{Lines: 1}
	for {
		t, ok := sc.Next()
		if !ok {
			break
		}
		res.Summary.Add(t)
		if opts.KeepTrivia {
			res.Trivia = append(res.Trivia, t)
		}
	}

	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	span.WithExtra("lines", strconv.Itoa(res.Summary.Lines)).End(res.Path)
	_ = send(ctx, opts.Events, Event{File: res.Path, Stage: StageScan, Status: status, Elapsed: time.Since(started)})
}

func load(path string) (lexical.Decoded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return lexical.Decoded{}, fmt.Errorf("file not found: %s", path)
		}
		return lexical.Decoded{}, fmt.Errorf("failed to load file: %w", err)
	}
	dec, err := lexical.Decode(raw)
	if err != nil {
		return lexical.Decoded{}, fmt.Errorf("%s: %w", path, err)
	}
	return dec, nil
}

func (r *Result) finish(maxDiagnostics int) {
	r.Bag = diag.NewBag(maxDiagnostics)
	r.Summary = lexical.Summary{}
	for i := range r.Results {
		fr := &r.Results[i]
		r.Summary.Merge(fr.Summary)
		if fr.Bag != nil {
			r.Bag.Merge(fr.Bag)
		}
	}
	r.Bag.Sort()
}

func send(ctx context.Context, ch chan<- Event, ev Event) error {
	if ch == nil {
		return nil
	}
	select {
	case ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
