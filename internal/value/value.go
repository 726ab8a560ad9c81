// Package value defines the primitive value layer of the object model.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the runtime type of a Value.
type Kind uint8

const (
	// KUndefined is the undefined value.
	KUndefined Kind = iota
	// KNull is the null value.
	KNull
	// KBoolean is true or false.
	KBoolean
	// KString is a sequence of UTF-16 code units.
	KString
	// KSymbol is a unique symbol.
	KSymbol
	// KNumber is an IEEE-754 double.
	KNumber
	// KObject is a reference to a heap object.
	KObject
)

// String returns a human-readable name for the value kind.
func (k Kind) String() string {
	switch k {
	case KUndefined:
		return "undefined"
	case KNull:
		return "null"
	case KBoolean:
		return "boolean"
	case KString:
		return "string"
	case KSymbol:
		return "symbol"
	case KNumber:
		return "number"
	case KObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Handle is a stable reference to a heap object.
// Handle(0) is always invalid.
type Handle uint32

// NoHandle is the zero handle; it never refers to an object.
const NoHandle Handle = 0

// Value is a closed tagged union over the primitive kinds and object references.
// The zero Value is undefined.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  String
	sym  *Symbol
	h    Handle
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{} }

// Null returns the null value.
func Null() Value { return Value{kind: KNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KBoolean, b: b} }

// Num wraps a number.
func Num(n float64) Value { return Value{kind: KNumber, num: n} }

// Str wraps a string.
func Str(s String) Value { return Value{kind: KString, str: s} }

// StrFromGo encodes a Go string and wraps it.
func StrFromGo(s string) Value { return Str(NewString(s)) }

// Sym wraps a symbol. A nil symbol yields undefined.
func Sym(s *Symbol) Value {
	if s == nil {
		return Undefined()
	}
	return Value{kind: KSymbol, sym: s}
}

// Obj wraps a heap object reference. NoHandle yields null.
func Obj(h Handle) Value {
	if h == NoHandle {
		return Null()
	}
	return Value{kind: KObject, h: h}
}

// Kind reports the runtime kind.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether v is undefined.
func (v Value) IsUndefined() bool { return v.kind == KUndefined }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KNull }

// IsObject reports whether v references a heap object.
func (v Value) IsObject() bool { return v.kind == KObject }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KBoolean }

// AsNumber returns the number payload.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KNumber }

// AsString returns the string payload.
func (v Value) AsString() (String, bool) { return v.str, v.kind == KString }

// AsSymbol returns the symbol payload.
func (v Value) AsSymbol() (*Symbol, bool) { return v.sym, v.kind == KSymbol }

// Handle returns the referenced object handle, or NoHandle for non-objects.
func (v Value) Handle() Handle {
	if v.kind != KObject {
		return NoHandle
	}
	return v.h
}

// String renders the value for diagnostics. It is not the ToString abstract operation.
func (v Value) String() string {
	switch v.kind {
	case KUndefined:
		return "undefined"
	case KNull:
		return "null"
	case KBoolean:
		return strconv.FormatBool(v.b)
	case KString:
		return strconv.Quote(v.str.GoString())
	case KSymbol:
		return v.sym.String()
	case KNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KObject:
		return fmt.Sprintf("object#%d", v.h)
	default:
		return fmt.Sprintf("<unknown:%d>", v.kind)
	}
}

// SameValue implements the SameValue comparison: NaN equals NaN, +0 and -0 differ,
// strings compare by code units, symbols and objects by identity.
func SameValue(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KUndefined, KNull:
		return true
	case KBoolean:
		return a.b == b.b
	case KNumber:
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		if a.num == 0 && b.num == 0 {
			return math.Signbit(a.num) == math.Signbit(b.num)
		}
		return a.num == b.num
	case KString:
		return a.str.Equal(b.str)
	case KSymbol:
		return a.sym == b.sym
	case KObject:
		return a.h == b.h
	default:
		return false
	}
}
