package lexical

import "ecmacore/internal/source"

type TriviaKind uint8

const (
	TriviaWhiteSpace TriviaKind = iota
	TriviaLineTerminator
	TriviaSingleLineComment
	TriviaMultiLineComment
	TriviaOther

	numTriviaKinds
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaWhiteSpace:
		return "WhiteSpace"
	case TriviaLineTerminator:
		return "LineTerminator"
	case TriviaSingleLineComment:
		return "SingleLineComment"
	case TriviaMultiLineComment:
		return "MultiLineComment"
	case TriviaOther:
		return "Other"
	}
	return "Unknown"
}

// Trivia is one classified run of source text.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
	// HasLineTerminator is set on multi-line comments that contain a line
	// terminator; such a comment separates lines like a LineTerminator does.
	HasLineTerminator bool
	// Unterminated is set on a multi-line comment that runs to EOF.
	Unterminated bool
}
