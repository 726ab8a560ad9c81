package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug"} {
		lvl, err := ParseLevel(s)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
		if lvl.String() != s {
			t.Fatalf("round trip %q -> %q", s, lvl.String())
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelScopes(t *testing.T) {
	if !LevelPhase.ShouldEmit(ScopePass) || LevelPhase.ShouldEmit(ScopeFile) {
		t.Fatalf("phase level filters wrong")
	}
	if !LevelDetail.ShouldEmit(ScopeFile) || LevelDetail.ShouldEmit(ScopeObject) {
		t.Fatalf("detail level filters wrong")
	}
	if !LevelDebug.ShouldEmit(ScopeObject) {
		t.Fatalf("debug must emit everything")
	}
	if !LevelError.ShouldEmit(ScopeDriver) || LevelError.ShouldEmit(ScopePass) {
		t.Fatalf("error level must admit only driver events")
	}
	if lvl, err := ParseLevel("DETAIL"); err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel is case-insensitive: %v %v", lvl, err)
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeObject, name, "", nil)
	}
	events := r.Snapshot()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	got := []string{events[0].Name, events[1].Name, events[2].Name}
	if strings.Join(got, "") != "cde" {
		t.Fatalf("expected chronological cde, got %v", got)
	}
}

func TestStreamFiltersByScope(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatText)
	span := Begin(st, ScopePass, "gc.collect", 0)
	Point(st, ScopeObject, "alloc", "", nil)
	span.WithExtra("swept", "2").End("ok")
	if buf.Len() != 0 {
		t.Fatalf("stream output must be buffered until Flush")
	}
	if err := st.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "gc.collect") {
		t.Fatalf("missing span output: %q", out)
	}
	if strings.Contains(out, "alloc") {
		t.Fatalf("object scope leaked at phase level: %q", out)
	}
	if !strings.Contains(out, "{swept=2}") {
		t.Fatalf("missing extra: %q", out)
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(st, ScopeObject, "free", "object#3", map[string]string{"kind": "ordinary"})
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	line := buf.String()
	if !strings.HasSuffix(line, "\n") || !strings.Contains(line, `"name":"free"`) {
		t.Fatalf("unexpected ndjson: %q", line)
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop from empty context")
	}
	r := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatalf("tracer not propagated")
	}
}

func TestMultiFansOut(t *testing.T) {
	a := NewRingTracer(4, LevelDebug)
	b := NewRingTracer(4, LevelDebug)
	m := NewMultiTracer(LevelDebug, a, b)
	Point(m, ScopeObject, "mark", "", nil)
	if len(a.Snapshot()) != 1 || len(b.Snapshot()) != 1 {
		t.Fatalf("expected both tracers to receive the event")
	}
}

func TestStartSpanNests(t *testing.T) {
	r := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), r)

	outer, outerSpan := StartSpan(ctx, ScopePass, "gc.collect")
	_, is := StartSpan(outer, ScopePass, "gc.mark")
	is.End("")
	outerSpan.End("")

	ends := r.Find(KindSpanEnd, "gc.mark")
	if len(ends) != 1 || ends[0].ParentID != outerSpan.ID() {
		t.Fatalf("inner span must nest under outer: %+v", ends)
	}
	if CurrentSpan(ctx).SpanID != 0 {
		t.Fatalf("parent context must be unchanged")
	}
}

func TestStartSpanWithoutTracer(t *testing.T) {
	ctx := context.Background()
	got, span := StartSpan(ctx, ScopePass, "x")
	if got != ctx || span.ID() != 0 {
		t.Fatalf("inert span must leave the context alone")
	}
	if span.WithExtra("k", "v").End("") != 0 {
		t.Fatalf("inert span must report no duration")
	}
}

func TestRingDumpsOnClose(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Mode: ModeRing, Output: &buf, RingSize: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, name := range []string{"alloc", "free", "alloc"} {
		Point(tr, ScopeObject, name, "", nil)
	}
	if buf.Len() != 0 {
		t.Fatalf("ring must not write before Close")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Fatalf("expected the 2 newest events, got:\n%s", buf.String())
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil || tr != Nop {
		t.Fatalf("expected Nop, got %v %v", tr, err)
	}
	if _, err := New(Config{Level: LevelPhase}); err == nil {
		t.Fatalf("expected error for missing mode")
	}
}

func TestMultiFlattensAndSkipsDisabled(t *testing.T) {
	a := NewRingTracer(4, LevelDebug)
	b := NewRingTracer(4, LevelDebug)
	inner := NewMultiTracer(LevelDebug, a, b)
	m := NewMultiTracer(LevelDebug, inner, Nop, nil)
	if len(m.tracers) != 2 {
		t.Fatalf("expected 2 flattened tracers, got %d", len(m.tracers))
	}
	if NewMultiTracer(LevelDebug, Nop).Enabled() {
		t.Fatalf("multi of nothing must be disabled")
	}
}

func TestTextFormatShowsDuration(t *testing.T) {
	ev := &Event{Seq: 7, Kind: KindSpanEnd, Name: "gc.sweep", Detail: "ok", ParentID: 1,
		Dur: 1500 * time.Microsecond, Extra: map[string]string{"b": "2", "a": "1"}}
	want := "[     7]   < gc.sweep (ok) [1.5ms] {a=1, b=2}\n"
	if got := string(FormatEvent(ev, FormatText)); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestHeartbeatReportsMemory(t *testing.T) {
	r := NewRingTracer(16, LevelPhase)
	h := StartHeartbeat(r, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for r.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()

	beats := r.Find(KindHeartbeat, "heartbeat")
	if len(beats) == 0 {
		t.Fatalf("no heartbeat within deadline")
	}
	if beats[0].Extra["heap_alloc"] == "" || beats[0].Detail != "#1" {
		t.Fatalf("unexpected heartbeat %+v", beats[0])
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("disabled tracer must not start a heartbeat")
	}
}
