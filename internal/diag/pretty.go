package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ecmacore/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) label() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

// ParsePathMode converts a CLI flag value into a PathMode.
func ParsePathMode(s string) (PathMode, error) {
	switch s {
	case "", "auto":
		return PathModeAuto, nil
	case "absolute":
		return PathModeAbsolute, nil
	case "relative":
		return PathModeRelative, nil
	case "basename":
		return PathModeBasename, nil
	}
	return PathModeAuto, fmt.Errorf("unknown path mode %q (expected auto|absolute|relative|basename)", s)
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	ShowNotes bool
	// TabWidth is the display width of a tab in excerpts; 0 means 4.
	TabWidth int
}

type palette struct {
	err, warn, info, note, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev Severity) *color.Color {
	switch sev {
	case SevError:
		return p.err
	case SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders bag as
//
//	path:line:col: SEVERITY LEX1001: message
//	   3 | source line
//	     |   ^~~~
//
// followed by notes. Call bag.Sort first for a stable order.
func Pretty(w io.Writer, bag *Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	tab := opts.TabWidth
	if tab <= 0 {
		tab = 4
	}
	var b strings.Builder
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		path := f.FormatPath(opts.PathMode.label(), fs.BaseDir())
		start, end := fs.Resolve(d.Primary)

		fmt.Fprintf(&b, "%s: %s %s: %s\n",
			p.path.Sprintf("%s:%d:%d", path, start.Line, start.Col),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			d.Code.ID(),
			d.Message)
		writeExcerpt(&b, p, f, start, end, tab)

		if opts.ShowNotes {
			for _, n := range d.Notes {
				ns, _ := fs.Resolve(n.Span)
				fmt.Fprintf(&b, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), path, ns.Line, ns.Col, n.Msg)
			}
		}
	}
	if bag.Dropped() > 0 {
		fmt.Fprintf(&b, "%d more diagnostics not shown\n", bag.Dropped())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeExcerpt prints the first line of the span with a caret underline. Columns
// are byte based; the underline is laid out in display cells so tabs and wide
// characters line up.
func writeExcerpt(b *strings.Builder, p palette, f *source.File, start, end source.LineCol, tab int) {
	line := f.GetLine(start.Line)
	gutter := fmt.Sprintf("%4d | ", start.Line)
	blank := strings.Repeat(" ", len(gutter)-2) + "| "

	b.WriteString(p.gutter.Sprint(gutter))
	b.WriteString(expandTabs(line, tab))
	b.WriteByte('\n')

	from := clampCol(start.Col, line)
	to := len(line)
	if end.Line == start.Line {
		to = clampCol(end.Col, line)
	}
	pad := displayWidth(line[:from], tab)
	width := displayWidth(line[from:to], tab)
	if width < 1 {
		width = 1
	}
	b.WriteString(p.gutter.Sprint(blank))
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(p.caret.Sprint("^" + strings.Repeat("~", width-1)))
	b.WriteByte('\n')
}

func clampCol(col uint32, line string) int {
	c := int(col) - 1
	if c < 0 {
		return 0
	}
	if c > len(line) {
		return len(line)
	}
	return c
}

func displayWidth(s string, tab int) int {
	w := 0
	for _, r := range s {
		if r == '\t' {
			w += tab - w%tab
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}

func expandTabs(s string, tab int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		if r == '\t' {
			n := tab - w%tab
			b.WriteString(strings.Repeat(" ", n))
			w += n
			continue
		}
		b.WriteRune(r)
		w += runewidth.RuneWidth(r)
	}
	return b.String()
}
