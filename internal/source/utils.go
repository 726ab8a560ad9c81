package source

import (
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/safecast"
)

// buildLineIndex records where each line starts. LF, CR, CRLF, U+2028 and
// U+2029 end a line; CRLF counts once.
func buildLineIndex(content []byte) []uint32 {
	starts := []uint32{0}
	push := func(next int) {
		off, err := safecast.Conv[uint32](next)
		if err != nil {
			panic(err)
		}
		starts = append(starts, off)
	}
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			push(i + 1)
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
			push(i + 1)
		case 0xE2:
			// U+2028 and U+2029 are E2 80 A8 / E2 80 A9
			if i+2 < len(content) && content[i+1] == 0x80 && (content[i+2] == 0xA8 || content[i+2] == 0xA9) {
				i += 2
				push(i + 1)
			}
		}
	}
	return starts
}

func trimTerminator(line []byte) []byte {
	switch {
	case len(line) >= 3 && line[len(line)-3] == 0xE2 && line[len(line)-2] == 0x80 &&
		(line[len(line)-1] == 0xA8 || line[len(line)-1] == 0xA9):
		return line[:len(line)-3]
	case len(line) >= 2 && line[len(line)-2] == '\r' && line[len(line)-1] == '\n':
		return line[:len(line)-2]
	case len(line) >= 1 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r'):
		return line[:len(line)-1]
	}
	return line
}

func toLineCol(lineStarts []uint32, off uint32) LineCol {
	if len(lineStarts) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	// last line start <= off
	i := sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	line, err := safecast.Conv[uint32](i + 1)
	if err != nil {
		panic(err)
	}
	return LineCol{Line: line, Col: off - lineStarts[i] + 1}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// RelativePath returns target relative to baseDir. Paths that would climb out
// of baseDir come back absolute.
func RelativePath(target, baseDir string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absTarget), nil
	}
	return normalizePath(rel), nil
}
