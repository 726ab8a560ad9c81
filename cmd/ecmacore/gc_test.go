package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"ecmacore/internal/gc"
	"ecmacore/internal/object"
	"ecmacore/internal/snapshot"
)

func TestDemoGraphCollectsGarbageCycle(t *testing.T) {
	heap := object.NewHeap(0)
	roots := gc.NewRootSet()
	g := buildDemo(heap, roots)
	if heap.Live() != 7 {
		t.Fatalf("Live = %d, want 7", heap.Live())
	}

	stats, err := gc.NewCollector(heap, roots).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if stats.Marked != 4 || stats.Swept != 3 || stats.Live != 4 {
		t.Fatalf("unexpected stats %s", stats)
	}
	for _, h := range g.Garbage {
		if heap.Alive(h) {
			t.Fatalf("object#%d survived", h)
		}
	}

	var out bytes.Buffer
	printDemo(&out, heap, g, stats, 0)
	if !strings.Contains(out.String(), "marked=4 swept=3") || strings.Count(out.String(), "freed") != 3 {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}

func TestDemoReportChecksEveryObject(t *testing.T) {
	heap := object.NewHeap(0)
	roots := gc.NewRootSet()
	g := buildDemo(heap, roots)
	// unpin the only root: the whole graph becomes garbage
	roots.Remove(g.Obj)
	stats, err := gc.NewCollector(heap, roots).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if stats.Swept != 7 {
		t.Fatalf("unexpected stats %s", stats)
	}

	var out bytes.Buffer
	printDemo(&out, heap, g, stats, 0)
	if strings.Count(out.String(), "freed") != 7 || strings.Contains(out.String(), "kept") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}

func TestDemoSnapshotRestores(t *testing.T) {
	heap := object.NewHeap(0)
	roots := gc.NewRootSet()
	buildDemo(heap, roots)
	if _, err := gc.NewCollector(heap, roots).Collect(context.Background()); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	path := filepath.Join(t.TempDir(), "demo.mp")
	if err := snapshot.Write(path, snapshot.Capture(heap, roots)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	snap, err := snapshot.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	restored, err := snapshot.Restore(snap, 0)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Heap.Live() != 4 || restored.Roots.Len() != 1 {
		t.Fatalf("restored live=%d roots=%d", restored.Heap.Live(), restored.Roots.Len())
	}
}
