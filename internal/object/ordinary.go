package object

import (
	"sort"

	"ecmacore/internal/value"
)

// OrdinaryObject is a plain object: ordered own properties, an extensible flag
// that only ever goes from true to false, and an optional prototype.
type OrdinaryObject struct {
	props      PropertyMap
	extensible bool
	proto      value.Handle

	// set by the heap at allocation; used to walk prototype chains
	self value.Handle
	heap *Heap
}

// NewOrdinaryObject returns a detached, extensible object with the given prototype.
// Objects that take part in prototype chains are allocated through a Heap.
func NewOrdinaryObject(proto value.Handle) *OrdinaryObject {
	return &OrdinaryObject{
		props:      NewPropertyMap(4),
		extensible: true,
		proto:      proto,
	}
}

// GetPrototypeOf returns the prototype, or false when it is null.
func (o *OrdinaryObject) GetPrototypeOf() (value.Handle, bool) {
	return o.proto, o.proto != value.NoHandle
}

// SetPrototypeOf replaces the prototype. It declines on non-extensible objects and
// when proto would make o part of its own prototype chain.
func (o *OrdinaryObject) SetPrototypeOf(proto value.Handle) bool {
	if proto == o.proto {
		return true
	}
	if !o.extensible {
		return false
	}
	p := proto
	seen := make(map[value.Handle]struct{})
	for p != value.NoHandle {
		if p == o.self {
			return false
		}
		if _, dup := seen[p]; dup {
			// chain already cycles without us; it cannot reach o
			break
		}
		seen[p] = struct{}{}
		next, ok := o.heap.protoOf(p)
		if !ok {
			break
		}
		p = next
	}
	o.proto = proto
	return true
}

// IsExtensible returns the extensible flag.
func (o *OrdinaryObject) IsExtensible() bool {
	return o.extensible
}

// PreventExtensions always succeeds.
func (o *OrdinaryObject) PreventExtensions() bool {
	o.extensible = false
	return true
}

// GetOwnProperty looks up an own property.
func (o *OrdinaryObject) GetOwnProperty(key PropertyKey) (Property, bool) {
	return o.props.Get(key)
}

// DefineOwnProperty validates desc against the current property and applies it.
func (o *OrdinaryObject) DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) bool {
	current, ok := o.props.Get(key)
	if !ok {
		if !o.extensible {
			return false
		}
		o.props.Set(key, fromDescriptor(desc))
		return true
	}
	if desc.empty() {
		return true
	}
	if !compatible(current, desc) {
		return false
	}
	o.props.Set(key, merge(current, desc))
	return true
}

// HasProperty reports whether key is an own or inherited property.
func (o *OrdinaryObject) HasProperty(key PropertyKey) bool {
	if o.props.Has(key) {
		return true
	}
	seen := map[value.Handle]struct{}{o.self: {}}
	p := o.proto
	for p != value.NoHandle {
		if _, dup := seen[p]; dup {
			return false
		}
		seen[p] = struct{}{}
		obj, ok := o.heap.Lookup(p)
		if !ok {
			return false
		}
		if _, own := obj.GetOwnProperty(key); own {
			return true
		}
		next, ok := obj.GetPrototypeOf()
		if !ok {
			return false
		}
		p = next
	}
	return false
}

// Delete removes a configurable own property. Absent keys count as deleted.
func (o *OrdinaryObject) Delete(key PropertyKey) bool {
	current, ok := o.props.Get(key)
	if !ok {
		return true
	}
	if !current.Configurable() {
		return false
	}
	o.props.Delete(key)
	return true
}

// OwnPropertyKeys lists array-index keys ascending, then other string keys and
// finally symbol keys, both in insertion order.
func (o *OrdinaryObject) OwnPropertyKeys() []PropertyKey {
	type indexed struct {
		idx uint32
		key PropertyKey
	}
	var (
		indices []indexed
		strs    []PropertyKey
		syms    []PropertyKey
	)
	o.props.Each(func(k PropertyKey, _ Property) bool {
		switch idx, ok := k.ArrayIndex(); {
		case ok:
			indices = append(indices, indexed{idx: idx, key: k})
		case k.IsSymbol():
			syms = append(syms, k)
		default:
			strs = append(strs, k)
		}
		return true
	})
	sort.Slice(indices, func(i, j int) bool { return indices[i].idx < indices[j].idx })

	keys := make([]PropertyKey, 0, o.props.Len())
	for _, ix := range indices {
		keys = append(keys, ix.key)
	}
	keys = append(keys, strs...)
	return append(keys, syms...)
}

// Trace visits the prototype and every handle owned by a property.
// The property map is walked by hand; nothing else reaches into it.
func (o *OrdinaryObject) Trace(visit func(value.Handle)) {
	if o.proto != value.NoHandle {
		visit(o.proto)
	}
	o.props.Each(func(_ PropertyKey, p Property) bool {
		p.Trace(visit)
		return true
	})
}
