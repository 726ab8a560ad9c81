// Package object implements the property model and the object variants of the
// runtime: property keys and descriptors, ordinary and array objects, the Object
// facade that dispatches internal methods to them, and the heap arena they live in.
package object

import (
	"fmt"

	"ecmacore/internal/value"
)

// ObjectKind identifies the concrete object variant behind the facade.
type ObjectKind uint8

const (
	// KindOrdinary is a plain object.
	KindOrdinary ObjectKind = iota + 1
	// KindArray is an array exotic object.
	KindArray
)

func (k ObjectKind) String() string {
	switch k {
	case KindOrdinary:
		return "ordinary"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("ObjectKind(%d)", k)
	}
}

// Object is the facade over the closed set of object variants. Every internal
// method switches on the kind; a new variant has to be added to each switch.
type Object struct {
	kind     ObjectKind
	ordinary *OrdinaryObject
	array    *ArrayObject
}

// FromOrdinary wraps an ordinary object.
func FromOrdinary(o *OrdinaryObject) *Object {
	return &Object{kind: KindOrdinary, ordinary: o}
}

// FromArray wraps an array object.
func FromArray(a *ArrayObject) *Object {
	return &Object{kind: KindArray, array: a}
}

// Kind reports the active variant.
func (o *Object) Kind() ObjectKind { return o.kind }

// Ordinary returns the ordinary variant.
func (o *Object) Ordinary() (*OrdinaryObject, bool) { return o.ordinary, o.kind == KindOrdinary }

// Array returns the array variant.
func (o *Object) Array() (*ArrayObject, bool) { return o.array, o.kind == KindArray }

func (o *Object) badKind() {
	panic(&ObjectError{Code: ErrUnknownKind, Message: fmt.Sprintf("unknown object kind %s", o.kind)})
}

// GetPrototypeOf returns the prototype handle, or false for a null prototype.
func (o *Object) GetPrototypeOf() (value.Handle, bool) {
	switch o.kind {
	case KindOrdinary:
		return o.ordinary.GetPrototypeOf()
	case KindArray:
		return o.array.GetPrototypeOf()
	}
	o.badKind()
	return value.NoHandle, false
}

// SetPrototypeOf replaces the prototype; value.NoHandle sets it to null.
func (o *Object) SetPrototypeOf(proto value.Handle) bool {
	switch o.kind {
	case KindOrdinary:
		return o.ordinary.SetPrototypeOf(proto)
	case KindArray:
		return o.array.SetPrototypeOf(proto)
	}
	o.badKind()
	return false
}

// IsExtensible reports whether new own properties may be added.
func (o *Object) IsExtensible() bool {
	switch o.kind {
	case KindOrdinary:
		return o.ordinary.IsExtensible()
	case KindArray:
		return o.array.IsExtensible()
	}
	o.badKind()
	return false
}

// PreventExtensions makes the object non-extensible for good.
func (o *Object) PreventExtensions() bool {
	switch o.kind {
	case KindOrdinary:
		return o.ordinary.PreventExtensions()
	case KindArray:
		return o.array.PreventExtensions()
	}
	o.badKind()
	return false
}

// GetOwnProperty returns the own property for key, if any.
func (o *Object) GetOwnProperty(key PropertyKey) (Property, bool) {
	switch o.kind {
	case KindOrdinary:
		return o.ordinary.GetOwnProperty(key)
	case KindArray:
		return o.array.GetOwnProperty(key)
	}
	o.badKind()
	return Property{}, false
}

// DefineOwnProperty creates or updates an own property. It declines instead of
// failing when the descriptor is incompatible with the current state.
func (o *Object) DefineOwnProperty(key PropertyKey, desc PropertyDescriptor) bool {
	switch o.kind {
	case KindOrdinary:
		return o.ordinary.DefineOwnProperty(key, desc)
	case KindArray:
		return o.array.DefineOwnProperty(key, desc)
	}
	o.badKind()
	return false
}

// HasProperty checks own properties and then the prototype chain.
func (o *Object) HasProperty(key PropertyKey) bool {
	switch o.kind {
	case KindOrdinary:
		return o.ordinary.HasProperty(key)
	case KindArray:
		return o.array.HasProperty(key)
	}
	o.badKind()
	return false
}

// Delete removes an own property; false means it was non-configurable.
func (o *Object) Delete(key PropertyKey) bool {
	switch o.kind {
	case KindOrdinary:
		return o.ordinary.Delete(key)
	case KindArray:
		return o.array.Delete(key)
	}
	o.badKind()
	return false
}

// OwnPropertyKeys lists own keys in enumeration order.
func (o *Object) OwnPropertyKeys() []PropertyKey {
	switch o.kind {
	case KindOrdinary:
		return o.ordinary.OwnPropertyKeys()
	case KindArray:
		return o.array.OwnPropertyKeys()
	}
	o.badKind()
	return nil
}

// Trace visits every handle this object owns: its prototype, object-valued data
// properties and accessor functions.
func (o *Object) Trace(visit func(value.Handle)) {
	switch o.kind {
	case KindOrdinary:
		o.ordinary.Trace(visit)
		return
	case KindArray:
		o.array.Trace(visit)
		return
	}
	o.badKind()
}

func (o *Object) base() *OrdinaryObject {
	switch o.kind {
	case KindOrdinary:
		return o.ordinary
	case KindArray:
		return &o.array.inner
	}
	o.badKind()
	return nil
}

// CreateDataProperty defines an enumerable, writable, configurable data property.
func (o *Object) CreateDataProperty(key PropertyKey, v value.Value) bool {
	return o.DefineOwnProperty(key, DataDescriptor(v, true, true, true))
}
