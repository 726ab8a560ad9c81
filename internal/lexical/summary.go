package lexical

// Summary counts the trivia of one file.
type Summary struct {
	Counts [numTriviaKinds]int
	// Lines is the number of lines as separated by line terminator sequences
	// and by multi-line comments containing one.
	Lines        int
	Unterminated int
}

// Count returns the number of trivia of kind k.
func (s Summary) Count(k TriviaKind) int {
	if k >= numTriviaKinds {
		return 0
	}
	return s.Counts[k]
}

// Add folds t into the summary.
func (s *Summary) Add(t Trivia) {
	if t.Kind < numTriviaKinds {
		s.Counts[t.Kind]++
	}
	if t.Kind == TriviaLineTerminator || t.HasLineTerminator {
		s.Lines++
	}
	if t.Unterminated {
		s.Unterminated++
	}
}

// Merge adds other into s.
func (s *Summary) Merge(other Summary) {
	for i := range s.Counts {
		s.Counts[i] += other.Counts[i]
	}
	s.Lines += other.Lines
	s.Unterminated += other.Unterminated
}

// Summarize scans the rest of the file and counts what it finds.
func (s *Scanner) Summarize() Summary {
	sum := Summary{Lines: 1}
	for {
		t, ok := s.Next()
		if !ok {
			return sum
		}
		sum.Add(t)
	}
}
