package diag

import "strings"

// Severity orders diagnostics from informational to fatal for the scan.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	// SevError makes the scan command exit non-zero.
	SevError
)

var severityLabels = [...]string{
	SevInfo:    "info",
	SevWarning: "warning",
	SevError:   "error",
}

// Label is the lower-case name used by the short and JSON renderers.
func (s Severity) Label() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return "unknown"
}

// String is the upper-case name used in pretty headers.
func (s Severity) String() string {
	return strings.ToUpper(s.Label())
}
