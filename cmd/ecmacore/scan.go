package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ecmacore/internal/diag"
	"ecmacore/internal/driver"
	"ecmacore/internal/lexical"
	"ecmacore/internal/ui"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] path",
	Short: "Classify white space, line terminators and comments",
	Long:  `Scan splits source files into trivia and reports unterminated comments and encoding problems`,
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().String("format", "pretty", "diagnostic format (pretty|json|short)")
	scanCmd.Flags().Int("jobs", 0, "parallel file scans (0 = config or GOMAXPROCS)")
	scanCmd.Flags().Int("max-diagnostics", 0, "diagnostics kept per file (0 = config)")
	scanCmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	scanCmd.Flags().String("path-mode", "auto", "diagnostic paths (auto|absolute|relative|basename)")
	scanCmd.Flags().Bool("trivia", false, "print every trivia")
}

func runScan(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg := configFrom(cmd.Context())

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	pathModeFlag, _ := cmd.Flags().GetString("path-mode")
	pathMode, err := diag.ParsePathMode(pathModeFlag)
	if err != nil {
		return err
	}
	uiFlag, _ := cmd.Flags().GetString("ui")
	uiMode, err := readToggle("ui", uiFlag)
	if err != nil {
		return err
	}
	showTrivia, _ := cmd.Flags().GetBool("trivia")

	opts := driver.Options{
		Jobs:           cfg.Scan.Jobs,
		MaxDiagnostics: cfg.Scan.MaxDiagnostics,
		KeepTrivia:     showTrivia,
	}
	if jobs, _ := cmd.Flags().GetInt("jobs"); jobs > 0 {
		opts.Jobs = jobs
	}
	if maxDiag, _ := cmd.Flags().GetInt("max-diagnostics"); maxDiag > 0 {
		opts.MaxDiagnostics = maxDiag
	}

	var res *driver.Result
	info, statErr := os.Stat(path)
	if statErr == nil && info.IsDir() && format != "json" && uiMode.enabledFor(os.Stdout) && !quiet(cmd) {
		res, err = runScanWithUI(cmd.Context(), path, opts)
	} else {
		res, err = driver.Scan(cmd.Context(), path, opts)
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if err := diag.JSON(out, res.Bag, res.Files, pathMode); err != nil {
			return err
		}
	case "short":
		if err := diag.Short(out, res.Bag, res.Files, diag.ShortOpts{PathMode: pathMode, Notes: true}); err != nil {
			return err
		}
	default:
		if err := diag.Pretty(cmd.ErrOrStderr(), res.Bag, res.Files, diag.PrettyOpts{
			Color:     colorEnabled(os.Stderr),
			PathMode:  pathMode,
			ShowNotes: true,
		}); err != nil {
			return err
		}
		if showTrivia {
			printTrivia(out, res)
		}
		if !quiet(cmd) {
			printSummary(out, res)
		}
	}
	if timings(cmd) {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timing.String())
	}
	if res.Bag.HasErrors() {
		return fmt.Errorf("%d file(s) with errors", filesWithErrors(res))
	}
	return nil
}

func runScanWithUI(ctx context.Context, dir string, opts driver.Options) (*driver.Result, error) {
	files, err := driver.ListFiles(dir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	type outcome struct {
		res *driver.Result
		err error
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan outcome, 1)
	go func() {
		o := opts
		o.Events = events
		res, err := driver.ScanDir(ctx, dir, o)
		close(events)
		outcomeCh <- outcome{res: res, err: err}
	}()

	program := tea.NewProgram(ui.NewProgressModel("scanning "+dir, files, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// drain so the scan can finish if the UI quit early
	for range events {
	}
	o := <-outcomeCh
	if uiErr != nil {
		return o.res, uiErr
	}
	return o.res, o.err
}

func printTrivia(w io.Writer, res *driver.Result) {
	for _, fr := range res.Results {
		f := res.Files.Get(fr.FileID)
		for _, t := range fr.Trivia {
			pos := f.Position(t.Span.Start)
			fmt.Fprintf(w, "%s:%d:%d %-20s %q\n", fr.Path, pos.Line, pos.Col, t.Kind, t.Text)
		}
	}
}

func printSummary(w io.Writer, res *driver.Result) {
	s := res.Summary
	fmt.Fprintf(w, "%d file(s), %d line(s): %d white space, %d line terminator, %d single-line comment, %d multi-line comment, %d other",
		len(res.Results), s.Lines,
		s.Count(lexical.TriviaWhiteSpace),
		s.Count(lexical.TriviaLineTerminator),
		s.Count(lexical.TriviaSingleLineComment),
		s.Count(lexical.TriviaMultiLineComment),
		s.Count(lexical.TriviaOther))
	if s.Unterminated > 0 {
		fmt.Fprintf(w, ", %d unterminated", s.Unterminated)
	}
	fmt.Fprintln(w)
}

func filesWithErrors(res *driver.Result) int {
	n := 0
	for _, fr := range res.Results {
		if fr.Bag != nil && fr.Bag.HasErrors() {
			n++
		}
	}
	return n
}
