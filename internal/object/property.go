package object

import (
	"fmt"

	"ecmacore/internal/value"
)

// PropertyKind tags the Property variant.
type PropertyKind uint8

const (
	// PropData is a value-holding property.
	PropData PropertyKind = iota + 1
	// PropAccessor is a getter/setter pair.
	PropAccessor
)

func (k PropertyKind) String() string {
	switch k {
	case PropData:
		return "data"
	case PropAccessor:
		return "accessor"
	default:
		return fmt.Sprintf("PropertyKind(%d)", k)
	}
}

// DataProperty holds a value and three attributes.
type DataProperty struct {
	Value        value.Value
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// AccessorProperty holds optional getter and setter callables.
// value.NoHandle marks an absent function. There is no Writable attribute.
type AccessorProperty struct {
	Get          value.Handle
	Set          value.Handle
	Enumerable   bool
	Configurable bool
}

// Property is a closed variant over DataProperty and AccessorProperty.
// Callers match on Kind; one variant is never converted to the other implicitly.
type Property struct {
	kind PropertyKind
	data DataProperty
	acc  AccessorProperty
}

// NewData wraps a data property.
func NewData(d DataProperty) Property { return Property{kind: PropData, data: d} }

// NewAccessor wraps an accessor property.
func NewAccessor(a AccessorProperty) Property { return Property{kind: PropAccessor, acc: a} }

// Kind reports the variant.
func (p Property) Kind() PropertyKind { return p.kind }

// Data returns the data variant.
func (p Property) Data() (DataProperty, bool) { return p.data, p.kind == PropData }

// Accessor returns the accessor variant.
func (p Property) Accessor() (AccessorProperty, bool) { return p.acc, p.kind == PropAccessor }

// Enumerable is shared by both variants.
func (p Property) Enumerable() bool {
	if p.kind == PropAccessor {
		return p.acc.Enumerable
	}
	return p.data.Enumerable
}

// Configurable is shared by both variants.
func (p Property) Configurable() bool {
	if p.kind == PropAccessor {
		return p.acc.Configurable
	}
	return p.data.Configurable
}

// Trace visits the object handles this property owns.
func (p Property) Trace(visit func(value.Handle)) {
	switch p.kind {
	case PropData:
		if h := p.data.Value.Handle(); h != value.NoHandle {
			visit(h)
		}
	case PropAccessor:
		if p.acc.Get != value.NoHandle {
			visit(p.acc.Get)
		}
		if p.acc.Set != value.NoHandle {
			visit(p.acc.Set)
		}
	}
}

func (p Property) String() string {
	switch p.kind {
	case PropData:
		return fmt.Sprintf("{value: %s, w:%t e:%t c:%t}", p.data.Value, p.data.Writable, p.data.Enumerable, p.data.Configurable)
	case PropAccessor:
		return fmt.Sprintf("{get: %d, set: %d, e:%t c:%t}", p.acc.Get, p.acc.Set, p.acc.Enumerable, p.acc.Configurable)
	default:
		return "{}"
	}
}

// PropertyDescriptor is a partial descriptor: every field has a presence flag.
type PropertyDescriptor struct {
	Value    value.Value
	HasValue bool

	Writable    bool
	HasWritable bool

	Get    value.Handle
	HasGet bool
	Set    value.Handle
	HasSet bool

	Enumerable    bool
	HasEnumerable bool

	Configurable    bool
	HasConfigurable bool
}

// DataDescriptor returns a complete data descriptor.
func DataDescriptor(v value.Value, writable, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Value: v, HasValue: true,
		Writable: writable, HasWritable: true,
		Enumerable: enumerable, HasEnumerable: true,
		Configurable: configurable, HasConfigurable: true,
	}
}

// AccessorDescriptor returns a complete accessor descriptor.
func AccessorDescriptor(get, set value.Handle, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Get: get, HasGet: true,
		Set: set, HasSet: true,
		Enumerable: enumerable, HasEnumerable: true,
		Configurable: configurable, HasConfigurable: true,
	}
}

// IsAccessorDescriptor reports whether Get or Set is present.
func (d PropertyDescriptor) IsAccessorDescriptor() bool { return d.HasGet || d.HasSet }

// IsDataDescriptor reports whether Value or Writable is present.
func (d PropertyDescriptor) IsDataDescriptor() bool { return d.HasValue || d.HasWritable }

// IsGenericDescriptor reports whether the descriptor is neither data nor accessor.
func (d PropertyDescriptor) IsGenericDescriptor() bool {
	return !d.IsAccessorDescriptor() && !d.IsDataDescriptor()
}

func (d PropertyDescriptor) empty() bool {
	return !d.HasValue && !d.HasWritable && !d.HasGet && !d.HasSet && !d.HasEnumerable && !d.HasConfigurable
}

// fromDescriptor materialises a new property, absent fields taking their defaults.
func fromDescriptor(d PropertyDescriptor) Property {
	if d.IsAccessorDescriptor() {
		return NewAccessor(AccessorProperty{
			Get:          d.Get,
			Set:          d.Set,
			Enumerable:   d.Enumerable,
			Configurable: d.Configurable,
		})
	}
	return NewData(DataProperty{
		Value:        d.Value,
		Writable:     d.Writable,
		Enumerable:   d.Enumerable,
		Configurable: d.Configurable,
	})
}

// compatible checks desc against an existing property. Once a property is
// non-configurable its attributes may only move towards more restrictive values.
func compatible(current Property, d PropertyDescriptor) bool {
	if current.Configurable() {
		return true
	}
	if d.HasConfigurable && d.Configurable {
		return false
	}
	if d.HasEnumerable && d.Enumerable != current.Enumerable() {
		return false
	}
	if !d.IsGenericDescriptor() && d.IsAccessorDescriptor() != (current.kind == PropAccessor) {
		return false
	}
	switch current.kind {
	case PropAccessor:
		if d.HasGet && d.Get != current.acc.Get {
			return false
		}
		if d.HasSet && d.Set != current.acc.Set {
			return false
		}
	case PropData:
		if !current.data.Writable {
			if d.HasWritable && d.Writable {
				return false
			}
			if d.HasValue && !value.SameValue(d.Value, current.data.Value) {
				return false
			}
		}
	}
	return true
}

// merge applies desc on top of current. Switching variant keeps only the
// enumerable/configurable attributes.
func merge(current Property, d PropertyDescriptor) Property {
	enumerable := current.Enumerable()
	if d.HasEnumerable {
		enumerable = d.Enumerable
	}
	configurable := current.Configurable()
	if d.HasConfigurable {
		configurable = d.Configurable
	}

	switch {
	case current.kind == PropData && d.IsAccessorDescriptor():
		return NewAccessor(AccessorProperty{Get: d.Get, Set: d.Set, Enumerable: enumerable, Configurable: configurable})
	case current.kind == PropAccessor && d.IsDataDescriptor():
		return NewData(DataProperty{Value: d.Value, Writable: d.Writable, Enumerable: enumerable, Configurable: configurable})
	case current.kind == PropAccessor:
		a := current.acc
		if d.HasGet {
			a.Get = d.Get
		}
		if d.HasSet {
			a.Set = d.Set
		}
		a.Enumerable, a.Configurable = enumerable, configurable
		return NewAccessor(a)
	default:
		dp := current.data
		if d.HasValue {
			dp.Value = d.Value
		}
		if d.HasWritable {
			dp.Writable = d.Writable
		}
		dp.Enumerable, dp.Configurable = enumerable, configurable
		return NewData(dp)
	}
}
