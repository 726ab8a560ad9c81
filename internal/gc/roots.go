// Package gc implements the tracing collector for the object heap.
//
// Collection is mark-and-sweep from an explicit root set. Marking walks the
// handles reported by each object's Trace method with a work list and a visited
// set, so prototype and property cycles terminate. Sweeping frees every live
// object that marking did not reach.
package gc

import (
	"sort"

	"ecmacore/internal/value"
)

// RootSet holds the handles the embedder keeps alive. Pins are counted: a
// handle added twice needs two removals.
type RootSet struct {
	pins map[value.Handle]int
}

// NewRootSet returns an empty root set.
func NewRootSet() *RootSet {
	return &RootSet{pins: make(map[value.Handle]int)}
}

// Add pins h. NoHandle is ignored.
func (r *RootSet) Add(h value.Handle) {
	if h == value.NoHandle {
		return
	}
	if r.pins == nil {
		r.pins = make(map[value.Handle]int)
	}
	r.pins[h]++
}

// Remove drops one pin of h and reports whether h was pinned.
func (r *RootSet) Remove(h value.Handle) bool {
	n, ok := r.pins[h]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(r.pins, h)
	} else {
		r.pins[h] = n - 1
	}
	return true
}

// Has reports whether h holds at least one pin.
func (r *RootSet) Has(h value.Handle) bool {
	return r.pins[h] > 0
}

// Pins returns the pin count of h.
func (r *RootSet) Pins(h value.Handle) int { return r.pins[h] }

// Len returns the number of distinct pinned handles.
func (r *RootSet) Len() int { return len(r.pins) }

// Handles lists pinned handles in ascending order.
func (r *RootSet) Handles() []value.Handle {
	out := make([]value.Handle, 0, len(r.pins))
	for h := range r.pins {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
