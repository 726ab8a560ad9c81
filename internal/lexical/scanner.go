package lexical

import (
	"ecmacore/internal/diag"
	"ecmacore/internal/source"
)

// Scanner splits a file into trivia. It classifies only: anything that is
// not white space, a line terminator or a comment comes back as TriviaOther.
type Scanner struct {
	file     *source.File
	cursor   Cursor
	reporter diag.Reporter
}

// NewScanner scans f. Problems go to r; nil drops them.
func NewScanner(f *source.File, r diag.Reporter) *Scanner {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Scanner{file: f, cursor: NewCursor(f), reporter: r}
}

// Next returns the next trivia, or false at EOF.
func (s *Scanner) Next() (Trivia, bool) {
	if s.cursor.EOF() {
		return Trivia{}, false
	}
	start := s.cursor.Mark()
	r, _ := s.cursor.PeekRune()

	switch {
	case IsWhiteSpace(r):
		for !s.cursor.EOF() {
			if r, _ := s.cursor.PeekRune(); !IsWhiteSpace(r) {
				break
			}
			s.cursor.BumpRune()
		}
		return s.make(TriviaWhiteSpace, start), true

	case IsLineTerminator(r):
		s.lineTerminatorSequence()
		return s.make(TriviaLineTerminator, start), true

	case r == '/':
		if t, ok := s.comment(start); ok {
			return t, true
		}
	}

	s.other()
	return s.make(TriviaOther, start), true
}

// All scans the rest of the file.
func (s *Scanner) All() []Trivia {
	var out []Trivia
	for {
		t, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}

func (s *Scanner) make(kind TriviaKind, start Mark) Trivia {
	sp := s.cursor.SpanFrom(start)
	return Trivia{
		Kind: kind,
		Span: sp,
		Text: string(s.file.Content[sp.Start:sp.End]),
	}
}

// lineTerminatorSequence consumes one sequence: CR LF together, any other
// terminator alone.
func (s *Scanner) lineTerminatorSequence() {
	if s.cursor.Eat('\r') {
		s.cursor.Eat('\n')
		return
	}
	s.cursor.BumpRune()
}

func (s *Scanner) comment(start Mark) (Trivia, bool) {
	b0, b1, ok := s.cursor.Peek2()
	if !ok || b0 != '/' {
		return Trivia{}, false
	}
	switch b1 {
	case '/':
		s.cursor.Bump()
		s.cursor.Bump()
		for !s.cursor.EOF() {
			if r, _ := s.cursor.PeekRune(); IsLineTerminator(r) {
				break
			}
			s.cursor.BumpRune()
		}
		return s.make(TriviaSingleLineComment, start), true

	case '*':
		s.cursor.Bump()
		s.cursor.Bump()
		hasLT := false
		closed := false
		for !s.cursor.EOF() {
			if b0, b1, ok := s.cursor.Peek2(); ok && b0 == '*' && b1 == '/' {
				s.cursor.Bump()
				s.cursor.Bump()
				closed = true
				break
			}
			if r := s.cursor.BumpRune(); IsLineTerminator(r) {
				hasLT = true
			}
		}
		t := s.make(TriviaMultiLineComment, start)
		t.HasLineTerminator = hasLT
		if !closed {
			t.Unterminated = true
			s.reporter.Report(diag.LexUnterminatedComment, diag.SevError, t.Span,
				"unterminated multi-line comment", nil)
		}
		return t, true
	}
	return Trivia{}, false
}

// other consumes up to the next white space, line terminator or comment start.
// A lone '/' is ordinary text.
func (s *Scanner) other() {
	for !s.cursor.EOF() {
		r, _ := s.cursor.PeekRune()
		if IsWhiteSpace(r) || IsLineTerminator(r) {
			return
		}
		if r == '/' {
			if _, b1, ok := s.cursor.Peek2(); ok && (b1 == '/' || b1 == '*') {
				return
			}
		}
		s.cursor.BumpRune()
	}
}
