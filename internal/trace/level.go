package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Each level includes the ones below it.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // heap misuse only
	LevelPhase               // commands and passes: collections, directory scans
	LevelDetail              // plus per-file work
	LevelDebug               // plus per-object alloc and free
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag or config value, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope pass this level. LevelError
// admits only driver-scope events, which is where heap misuse is reported.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelOff:
		return false
	case LevelError:
		return scope == ScopeDriver
	case LevelPhase:
		return scope <= ScopePass
	case LevelDetail:
		return scope <= ScopeFile
	default:
		return true
	}
}
