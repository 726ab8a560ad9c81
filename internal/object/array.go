package object

import (
	"math"
	"sort"

	"fortio.org/safecast"

	"ecmacore/internal/value"
)

var lengthKey = KeyFromGo("length")

// ArrayObject wraps an OrdinaryObject. It owns the synthesized "length" property
// and the index/length coupling; everything else is delegated unchanged.
type ArrayObject struct {
	inner          OrdinaryObject
	length         uint32
	lengthWritable bool
}

// NewArrayObject returns a detached, empty, extensible array.
func NewArrayObject(proto value.Handle) *ArrayObject {
	return &ArrayObject{
		inner:          *NewOrdinaryObject(proto),
		lengthWritable: true,
	}
}

// Length returns the current length.
func (a *ArrayObject) Length() uint32 { return a.length }

func (a *ArrayObject) GetPrototypeOf() (value.Handle, bool) {
	return a.inner.GetPrototypeOf()
}

func (a *ArrayObject) SetPrototypeOf(proto value.Handle) bool {
	return a.inner.SetPrototypeOf(proto)
}

func (a *ArrayObject) IsExtensible() bool {
	return a.inner.IsExtensible()
}

func (a *ArrayObject) PreventExtensions() bool {
	return a.inner.PreventExtensions()
}

func (a *ArrayObject) lengthProperty() Property {
	return NewData(DataProperty{
		Value:    value.Num(float64(a.length)),
		Writable: a.lengthWritable,
	})
}

// GetOwnProperty synthesizes "length" and delegates every other key.
func (a *ArrayObject) GetOwnProperty(key PropertyKey) (Property, bool) {
	if key == lengthKey {
		return a.lengthProperty(), true
	}
	return a.inner.GetOwnProperty(key)
}

// DefineOwnProperty adds the array rules on top of the ordinary algorithm:
// indices at or past length grow it, and writing length truncates.
func (a *ArrayObject) DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) bool {
	if key == lengthKey {
		return a.setLength(desc)
	}
	idx, isIndex := key.ArrayIndex()
	if !isIndex {
		return a.inner.DefineOwnProperty(key, desc)
	}
	if idx >= a.length && !a.lengthWritable {
		return false
	}
	if !a.inner.DefineOwnProperty(key, desc) {
		return false
	}
	if idx >= a.length {
		a.length = idx + 1
	}
	return true
}

func (a *ArrayObject) setLength(desc PropertyDescriptor) bool {
	current := a.lengthProperty()
	if !desc.HasValue {
		if !compatible(current, desc) {
			return false
		}
		a.applyLengthAttrs(merge(current, desc))
		return true
	}

	newLen, ok := toArrayLength(desc.Value)
	if !ok {
		// RangeError territory; callers above this layer decide how to report it
		return false
	}
	desc.Value = value.Num(float64(newLen))
	if newLen >= a.length {
		if !compatible(current, desc) {
			return false
		}
		a.applyLengthAttrs(merge(current, desc))
		a.length = newLen
		return true
	}

	if !a.lengthWritable {
		return false
	}
	freeze := desc.HasWritable && !desc.Writable
	// validate everything except the writable transition, applied after deletion
	check := desc
	check.HasWritable = false
	if !compatible(current, check) {
		return false
	}

	for _, idx := range a.indicesFrom(newLen) {
		if !a.inner.Delete(IndexKey(idx)) {
			a.length = idx + 1
			if freeze {
				a.lengthWritable = false
			}
			return false
		}
	}
	a.length = newLen
	if freeze {
		a.lengthWritable = false
	}
	return true
}

func (a *ArrayObject) applyLengthAttrs(p Property) {
	if d, ok := p.Data(); ok {
		a.lengthWritable = d.Writable
	}
}

// indicesFrom returns own index keys >= from, highest first.
func (a *ArrayObject) indicesFrom(from uint32) []uint32 {
	var out []uint32
	a.inner.props.Each(func(k PropertyKey, _ Property) bool {
		if idx, ok := k.ArrayIndex(); ok && idx >= from {
			out = append(out, idx)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// toArrayLength accepts only Numbers that are exact uint32 values. Coercion of
// other kinds belongs to the evaluator.
func toArrayLength(v value.Value) (uint32, bool) {
	n, ok := v.AsNumber()
	if !ok || math.IsNaN(n) || n < 0 || n > math.MaxUint32 {
		return 0, false
	}
	l, err := safecast.Convert[uint32](n)
	if err != nil {
		return 0, false
	}
	return l, true
}

func (a *ArrayObject) HasProperty(key PropertyKey) bool {
	if key == lengthKey {
		return true
	}
	return a.inner.HasProperty(key)
}

func (a *ArrayObject) Delete(key PropertyKey) bool {
	if key == lengthKey {
		return false
	}
	return a.inner.Delete(key)
}

// OwnPropertyKeys places "length" right after the index keys.
func (a *ArrayObject) OwnPropertyKeys() []PropertyKey {
	keys := a.inner.OwnPropertyKeys()
	pos := 0
	for pos < len(keys) {
		if _, ok := keys[pos].ArrayIndex(); !ok {
			break
		}
		pos++
	}
	keys = append(keys, PropertyKey{})
	copy(keys[pos+1:], keys[pos:])
	keys[pos] = lengthKey
	return keys
}

func (a *ArrayObject) Trace(visit func(value.Handle)) {
	a.inner.Trace(visit)
}
