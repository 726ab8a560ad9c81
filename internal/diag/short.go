package diag

import (
	"fmt"
	"io"
	"strings"

	"ecmacore/internal/source"
)

// ShortOpts configures Short.
type ShortOpts struct {
	PathMode PathMode
	Notes    bool
}

// Short writes one line per diagnostic in bag order:
//
//	path:line:col: severity CODE: message
//
// A span covering several lines, such as a multi-line comment, is written as
// line:col-line:col. Notes follow their diagnostic indented by two spaces, and
// a final line reports diagnostics dropped by the bag limit.
func Short(w io.Writer, bag *Bag, fs *source.FileSet, opts ShortOpts) error {
	if bag == nil || fs == nil {
		return nil
	}
	var b strings.Builder
	for _, d := range bag.Items() {
		fmt.Fprintf(&b, "%s: %s %s: %s\n", shortPos(fs, d.Primary, opts.PathMode),
			d.Severity.Label(), d.Code.ID(), oneLine(d.Message))
		if !opts.Notes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "  %s: note: %s\n", shortPos(fs, n.Span, opts.PathMode), oneLine(n.Msg))
		}
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(&b, "%d more diagnostic(s) dropped\n", n)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func shortPos(fs *source.FileSet, span source.Span, mode PathMode) string {
	path := fs.Get(span.File).FormatPath(mode.label(), fs.BaseDir())
	start, end := fs.Resolve(span)
	if end.Line > start.Line {
		return fmt.Sprintf("%s:%d:%d-%d:%d", path, start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

// oneLine folds every line terminator, including LS and PS, into a space.
func oneLine(msg string) string {
	return strings.Join(strings.FieldsFunc(msg, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
	}), " ")
}
