package ui

import (
	"errors"
	"strings"
	"testing"

	"ecmacore/internal/driver"
)

func TestProgressTracksFiles(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("scanning", []string{"a.js", "b.js"}, events).(*progressModel)

	steps := []struct {
		ev      driver.Event
		statusA string
		statusB string
		pct     float64
	}{
		{driver.Event{File: "a.js", Stage: driver.StageLoad, Status: driver.StatusWorking}, "loading", "queued", 0.1},
		{driver.Event{File: "a.js", Stage: driver.StageScan, Status: driver.StatusWorking}, "scanning", "queued", 0.25},
		{driver.Event{File: "b.js", Stage: driver.StageLoad, Status: driver.StatusError, Err: errors.New("gone")}, "scanning", "error", 0.75},
		{driver.Event{File: "a.js", Stage: driver.StageScan, Status: driver.StatusDone}, "done", "error", 1},
		{driver.Event{File: "other.js", Stage: driver.StageScan, Status: driver.StatusDone}, "done", "error", 1},
	}
	for i, s := range steps {
		m.Update(eventMsg(s.ev))
		if m.items[0].status != s.statusA || m.items[1].status != s.statusB {
			t.Fatalf("step %d: statuses %q %q", i, m.items[0].status, m.items[1].status)
		}
		if got := m.percent(); got < s.pct-1e-9 || got > s.pct+1e-9 {
			t.Fatalf("step %d: percent = %v, want %v", i, got, s.pct)
		}
	}
	if m.finished() != 2 {
		t.Fatalf("finished = %d", m.finished())
	}

	m.Update(doneMsg{})
	view := m.View()
	if !strings.Contains(view, "done: scanning (2/2)") || !strings.Contains(view, "a.js") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestProgressListensUntilClosed(t *testing.T) {
	events := make(chan driver.Event, 1)
	m := NewProgressModel("t", []string{"a.js"}, events).(*progressModel)
	events <- driver.Event{File: "a.js", Stage: driver.StageLoad, Status: driver.StatusWorking}
	if _, ok := m.listenForEvent()().(eventMsg); !ok {
		t.Fatalf("expected event message")
	}
	close(events)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Fatalf("expected done message after close")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdef", 3, "abc"},
		{"\u4f60\u597d\u4f60\u597d", 8, "\u4f60\u597d\u4f60\u597d"},
		{"\u4f60\u597d\u4f60\u597d", 7, "\u4f60\u597d..."},
		{"\u4f60\u597d\u4f60\u597d", 6, "\u4f60..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
