package gc

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ecmacore/internal/object"
	"ecmacore/internal/trace"
	"ecmacore/internal/value"
)

// how many objects marking visits between cancellation checks
const cancelCheckEvery = 1024

// Stats describes one collection.
type Stats struct {
	Roots    int
	Marked   int
	Swept    int
	Live     int
	Duration time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("roots=%d marked=%d swept=%d live=%d in %s",
		s.Roots, s.Marked, s.Swept, s.Live, s.Duration)
}

// Collector reclaims unreachable objects of one heap.
type Collector struct {
	heap  *object.Heap
	roots *RootSet

	// Threshold is the allocation count that triggers MaybeCollect. Zero
	// disables automatic collection.
	Threshold uint64

	// Trace receives gc spans. When nil the tracer stored in the context is used.
	Trace trace.Tracer

	cycles int
	last   Stats
}

// NewCollector binds a collector to heap and roots.
func NewCollector(heap *object.Heap, roots *RootSet) *Collector {
	if roots == nil {
		roots = NewRootSet()
	}
	return &Collector{heap: heap, roots: roots}
}

// Roots returns the root set the collector marks from.
func (c *Collector) Roots() *RootSet { return c.roots }

// Cycles returns the number of completed collections.
func (c *Collector) Cycles() int { return c.cycles }

// Last returns the stats of the most recent completed collection.
func (c *Collector) Last() Stats { return c.last }

func (c *Collector) tracer(ctx context.Context) trace.Tracer {
	if c.Trace != nil {
		return c.Trace
	}
	return trace.FromContext(ctx)
}

// Collect marks from the root set and frees everything unmarked. A cancelled
// context stops the collection before sweeping, leaving the heap untouched.
func (c *Collector) Collect(ctx context.Context) (Stats, error) {
	start := time.Now()
	tr := c.tracer(ctx)
	span := trace.Begin(tr, trace.ScopePass, "gc.collect", trace.CurrentSpan(ctx).SpanID)

	if err := ctx.Err(); err != nil {
		span.End("cancelled")
		return Stats{}, err
	}

	roots := c.liveRoots()
	markSpan := trace.Begin(tr, trace.ScopePass, "gc.mark", span.ID())
	marked, err := c.mark(ctx, roots)
	if err != nil {
		markSpan.End("cancelled")
		span.End("cancelled")
		return Stats{}, err
	}
	markSpan.WithExtra("marked", strconv.Itoa(len(marked))).End("")

	if err := ctx.Err(); err != nil {
		span.End("cancelled")
		return Stats{}, err
	}

	sweepSpan := trace.Begin(tr, trace.ScopePass, "gc.sweep", span.ID())
	swept := c.sweep(marked)
	sweepSpan.WithExtra("swept", strconv.Itoa(swept)).End("")

	c.heap.ResetAllocCount()
	stats := Stats{
		Roots:    len(roots),
		Marked:   len(marked),
		Swept:    swept,
		Live:     c.heap.Live(),
		Duration: time.Since(start),
	}
	c.cycles++
	c.last = stats
	span.WithExtra("live", strconv.Itoa(stats.Live)).End(stats.String())
	return stats, nil
}

// MaybeCollect runs Collect once the heap has allocated Threshold objects
// since the previous collection. It reports whether a collection ran.
func (c *Collector) MaybeCollect(ctx context.Context) (Stats, bool, error) {
	if c.Threshold == 0 || c.heap.AllocsSinceReset() < c.Threshold {
		return Stats{}, false, nil
	}
	stats, err := c.Collect(ctx)
	if err != nil {
		return Stats{}, false, err
	}
	return stats, true, nil
}

// Reachable reports whether h would survive a collection right now.
func (c *Collector) Reachable(ctx context.Context, h value.Handle) (bool, error) {
	if !c.heap.Alive(h) {
		return false, nil
	}
	marked, err := c.mark(ctx, c.roots.Handles())
	if err != nil {
		return false, err
	}
	_, ok := marked[h]
	return ok, nil
}

// mark returns the set of live objects reachable from roots. Roots and edges
// that point at freed handles are skipped.
func (c *Collector) mark(ctx context.Context, roots []value.Handle) (map[value.Handle]struct{}, error) {
	marked := make(map[value.Handle]struct{}, c.heap.Live())
	work := make([]value.Handle, 0, len(roots))

	push := func(h value.Handle) {
		if h == value.NoHandle {
			return
		}
		if _, seen := marked[h]; seen {
			return
		}
		if !c.heap.Alive(h) {
			return
		}
		marked[h] = struct{}{}
		work = append(work, h)
	}
	for _, h := range roots {
		push(h)
	}

	steps := 0
	for len(work) > 0 {
		h := work[len(work)-1]
		work = work[:len(work)-1]
		c.heap.Get(h).Trace(push)

		steps++
		if steps%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return marked, nil
}

// liveRoots drops pins whose objects were freed outside the collector.
func (c *Collector) liveRoots() []value.Handle {
	roots := c.roots.Handles()
	live := roots[:0]
	for _, h := range roots {
		if c.heap.Alive(h) {
			live = append(live, h)
		}
	}
	return live
}

func (c *Collector) sweep(marked map[value.Handle]struct{}) int {
	swept := 0
	for _, h := range c.heap.Handles() {
		if _, ok := marked[h]; ok {
			continue
		}
		c.heap.Free(h)
		swept++
	}
	return swept
}
