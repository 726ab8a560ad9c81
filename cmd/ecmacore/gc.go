package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ecmacore/internal/gc"
	"ecmacore/internal/object"
	"ecmacore/internal/observ"
	"ecmacore/internal/snapshot"
	"ecmacore/internal/trace"
	"ecmacore/internal/value"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Exercise the collector",
}

var gcDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Build a sample object graph, collect it and print statistics",
	Args:  cobra.NoArgs,
	RunE:  runGCDemo,
}

func init() {
	gcDemoCmd.Flags().Int("garbage", 0, "extra unreachable objects to allocate, collected as the threshold is crossed")
	gcDemoCmd.Flags().Uint64("threshold", 0, "allocations between automatic collections (0 = config)")
	gcDemoCmd.Flags().String("out", "", "write a snapshot of the surviving heap to this file")
	gcCmd.AddCommand(gcDemoCmd)
}

// demoGraph is the sample object graph:
//
//	root -> obj --proto--> proto --"back"--> obj     (reachable cycle)
//	        obj --"computed" get--> getter
//	        obj --"items"--> arr --[0]--> obj
//	g1 --proto--> g2 --proto--> g1, g1 --"tail"--> g3   (unreachable cycle)
type demoGraph struct {
	Proto, Obj, Getter, Arr value.Handle
	Garbage                 []value.Handle
}

func buildDemo(heap *object.Heap, roots *gc.RootSet) demoGraph {
	var g demoGraph
	g.Proto = heap.NewOrdinary(value.NoHandle)
	g.Obj = heap.NewOrdinary(g.Proto)
	g.Getter = heap.NewOrdinary(value.NoHandle)
	g.Arr = heap.NewArray(value.NoHandle)

	obj := heap.Get(g.Obj)
	obj.CreateDataProperty(object.KeyFromGo("name"), value.StrFromGo("demo"))
	obj.DefineOwnProperty(object.KeyFromGo("computed"), object.AccessorDescriptor(g.Getter, value.NoHandle, false, true))
	obj.CreateDataProperty(object.KeyFromGo("items"), value.Obj(g.Arr))
	obj.CreateDataProperty(object.SymbolKey(value.NewSymbolFromGo("tag")), value.Num(1))
	heap.Get(g.Proto).CreateDataProperty(object.KeyFromGo("back"), value.Obj(g.Obj))

	arr := heap.Get(g.Arr)
	arr.CreateDataProperty(object.IndexKey(0), value.Obj(g.Obj))
	arr.CreateDataProperty(object.IndexKey(2), value.Num(42))

	g1 := heap.NewOrdinary(value.NoHandle)
	g2 := heap.NewOrdinary(g1)
	g3 := heap.NewOrdinary(value.NoHandle)
	// SetPrototypeOf refuses cycles; link the garbage cycle directly
	heap.LinkPrototype(g1, g2)
	heap.Get(g1).CreateDataProperty(object.KeyFromGo("tail"), value.Obj(g3))
	g.Garbage = []value.Handle{g1, g2, g3}

	roots.Add(g.Obj)
	return g
}

func runGCDemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := configFrom(ctx)
	tracer := trace.FromContext(ctx)
	timer := observ.NewTimer()

	heap := object.NewHeap(cfg.Heap.InitialCapacity)
	heap.Trace = tracer
	roots := gc.NewRootSet()
	collector := gc.NewCollector(heap, roots)
	collector.Threshold = cfg.GC.Threshold
	if t, _ := cmd.Flags().GetUint64("threshold"); t > 0 {
		collector.Threshold = t
	}

	idx := timer.Begin("build")
	g := buildDemo(heap, roots)
	timer.End(idx, fmt.Sprintf("%d objects", heap.Live()))

	out := cmd.OutOrStdout()
	extra, _ := cmd.Flags().GetInt("garbage")
	idx = timer.Begin("churn")
	auto := 0
	for range extra {
		heap.NewOrdinary(g.Proto)
		_, ran, err := collector.MaybeCollect(ctx)
		if err != nil {
			return err
		}
		if ran {
			auto++
		}
	}
	timer.End(idx, fmt.Sprintf("%d automatic collections", auto))

	idx = timer.Begin("collect")
	stats, err := collector.Collect(ctx)
	timer.End(idx, "")
	if err != nil {
		return err
	}

	if !quiet(cmd) {
		printDemo(out, heap, g, stats, auto)
	}

	if path, _ := cmd.Flags().GetString("out"); path != "" {
		idx = timer.Begin("snapshot")
		err := snapshot.Write(path, snapshot.Capture(heap, roots))
		timer.End(idx, path)
		if err != nil {
			return err
		}
		if !quiet(cmd) {
			fmt.Fprintf(out, "snapshot written to %s\n", path)
		}
	}
	if timings(cmd) {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}

func printDemo(w io.Writer, heap *object.Heap, g demoGraph, stats gc.Stats, auto int) {
	fmt.Fprintf(w, "collection: %s\n", stats)
	if auto > 0 {
		fmt.Fprintf(w, "automatic collections: %d\n", auto)
	}
	handles := append([]value.Handle{g.Proto, g.Obj, g.Getter, g.Arr}, g.Garbage...)
	for _, h := range handles {
		state := "kept"
		if !heap.Alive(h) {
			state = "freed"
		}
		fmt.Fprintf(w, "  object#%d %s\n", h, state)
	}
}
