package object

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"ecmacore/internal/trace"
	"ecmacore/internal/value"
)

// Heap stores every object of one runtime. Objects are addressed by handles that
// increase monotonically and are never reused within a run, so prototype and
// property cycles are plain handle relationships.
type Heap struct {
	next        value.Handle
	nextAllocID uint64
	slots       map[value.Handle]*slot
	live        int

	// allocations since the last ResetAllocCount; drives automatic collection
	allocs uint64

	// Trace receives alloc/free events. Nil means no tracing.
	Trace trace.Tracer
}

type slot struct {
	obj     *Object
	allocID uint64
}

// NewHeap returns an empty heap sized for capacity objects.
func NewHeap(capacity int) *Heap {
	h := &Heap{}
	if capacity > 0 {
		h.slots = make(map[value.Handle]*slot, capacity)
	}
	h.initIfNeeded()
	return h
}

func (h *Heap) initIfNeeded() {
	if h.slots == nil {
		h.slots = make(map[value.Handle]*slot, 128)
	}
	if h.next == 0 {
		h.next = 1
	}
	if h.nextAllocID == 0 {
		h.nextAllocID = 1
	}
}

func (h *Heap) alloc(obj *Object) value.Handle {
	h.initIfNeeded()
	if h.next == math.MaxUint32 {
		h.panic(ErrHeapExhausted, "handle space exhausted")
	}
	handle := h.next
	h.next++
	allocID := h.nextAllocID
	h.nextAllocID++

	base := obj.base()
	base.self = handle
	base.heap = h

	h.slots[handle] = &slot{obj: obj, allocID: allocID}
	h.live++
	h.allocs++
	if trace.Wants(h.Trace, trace.ScopeObject) {
		trace.Point(h.Trace, trace.ScopeObject, "alloc", fmt.Sprintf("object#%d", handle), map[string]string{
			"kind":  obj.kind.String(),
			"alloc": strconv.FormatUint(allocID, 10),
		})
	}
	return handle
}

// NewOrdinary allocates an extensible ordinary object with the given prototype.
func (h *Heap) NewOrdinary(proto value.Handle) value.Handle {
	return h.alloc(FromOrdinary(NewOrdinaryObject(proto)))
}

// NewArray allocates an empty array with the given prototype.
func (h *Heap) NewArray(proto value.Handle) value.Handle {
	return h.alloc(FromArray(NewArrayObject(proto)))
}

// Adopt allocates a handle for an object built outside the heap.
func (h *Heap) Adopt(obj *Object) value.Handle {
	if obj == nil {
		h.panic(ErrInvalidHandle, "adopt nil object")
	}
	return h.alloc(obj)
}

// Get returns the live object behind handle. It panics on invalid handles and
// on use after free.
func (h *Heap) Get(handle value.Handle) *Object {
	return h.slotFor(handle, ErrUseAfterFree, "use after free").obj
}

// slotFor returns the slot of a live handle. Freed slots are removed, so an
// absent handle below next was handed out earlier and is reported with code.
func (h *Heap) slotFor(handle value.Handle, code ErrorCode, what string) *slot {
	h.initIfNeeded()
	if handle == value.NoHandle {
		h.panic(ErrInvalidHandle, "invalid handle 0")
	}
	s, ok := h.slots[handle]
	if ok {
		return s
	}
	if handle < h.next {
		h.panic(code, fmt.Sprintf("%s: handle %d", what, handle))
	}
	h.panic(ErrInvalidHandle, fmt.Sprintf("invalid handle %d", handle))
	return nil
}

// Lookup is the non-panicking form of Get.
func (h *Heap) Lookup(handle value.Handle) (*Object, bool) {
	if h == nil || handle == value.NoHandle {
		return nil, false
	}
	s, ok := h.slots[handle]
	if !ok {
		return nil, false
	}
	return s.obj, true
}

// Alive reports whether handle refers to a live object.
func (h *Heap) Alive(handle value.Handle) bool {
	_, ok := h.Lookup(handle)
	return ok
}

// AllocID returns the allocation number of a live handle.
func (h *Heap) AllocID(handle value.Handle) (uint64, bool) {
	if h == nil {
		return 0, false
	}
	s, ok := h.slots[handle]
	if !ok {
		return 0, false
	}
	return s.allocID, true
}

func (h *Heap) protoOf(handle value.Handle) (value.Handle, bool) {
	obj, ok := h.Lookup(handle)
	if !ok {
		return value.NoHandle, false
	}
	return obj.GetPrototypeOf()
}

// LinkPrototype writes the prototype slot directly, skipping the cycle check of
// SetPrototypeOf. Snapshot restore uses it to rebuild graphs as they were.
func (h *Heap) LinkPrototype(handle, proto value.Handle) {
	h.Get(handle).base().proto = proto
}

// Free releases one object and drops its slot. Contained handles are not
// freed: reachability is decided by the collector, not by ownership of a single
// parent.
func (h *Heap) Free(handle value.Handle) {
	s := h.slotFor(handle, ErrDoubleFree, "double free")
	if trace.Wants(h.Trace, trace.ScopeObject) {
		trace.Point(h.Trace, trace.ScopeObject, "free", fmt.Sprintf("object#%d", handle), map[string]string{
			"kind":  s.obj.kind.String(),
			"alloc": strconv.FormatUint(s.allocID, 10),
		})
	}
	delete(h.slots, handle)
	h.live--
}

// Live returns the number of live objects.
func (h *Heap) Live() int { return h.live }

// Allocated returns the number of handles ever handed out.
func (h *Heap) Allocated() int {
	if h.next == 0 {
		return 0
	}
	return int(h.next - 1)
}

// Handles lists live handles in ascending order.
func (h *Heap) Handles() []value.Handle {
	out := make([]value.Handle, 0, h.live)
	for handle := range h.slots {
		out = append(out, handle)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllocsSinceReset returns the allocation count since the last reset.
func (h *Heap) AllocsSinceReset() uint64 { return h.allocs }

// ResetAllocCount restarts the allocation counter; the collector calls it.
func (h *Heap) ResetAllocCount() { h.allocs = 0 }

func (h *Heap) panic(code ErrorCode, msg string) {
	if trace.Wants(h.Trace, trace.ScopeDriver) {
		trace.Point(h.Trace, trace.ScopeDriver, "heap.panic", msg, map[string]string{"code": code.String()})
	}
	panic(&ObjectError{Code: code, Message: msg})
}
