package object

import (
	"strconv"

	"ecmacore/internal/value"
)

// PropertyKey is the single key type of property maps: a String or a Symbol.
// It is comparable, so it can be used as a Go map key directly. String keys are
// equal by code units, Symbol keys only by identity.
type PropertyKey struct {
	sym *value.Symbol
	str string // value.String.Key() encoding, unused for symbols
}

// StringKey builds a string key.
func StringKey(s value.String) PropertyKey {
	return PropertyKey{str: s.Key()}
}

// SymbolKey builds a symbol key. It panics on a nil symbol.
func SymbolKey(s *value.Symbol) PropertyKey {
	if s == nil {
		panic(&ObjectError{Code: ErrNilSymbolKey, Message: "symbol key from nil symbol"})
	}
	return PropertyKey{sym: s}
}

// KeyFromGo builds a string key from a Go string.
func KeyFromGo(s string) PropertyKey {
	return StringKey(value.NewString(s))
}

// IndexKey builds the canonical string key for an array index.
func IndexKey(i uint32) PropertyKey {
	return KeyFromGo(strconv.FormatUint(uint64(i), 10))
}

// IsSymbol reports whether the key is a symbol key.
func (k PropertyKey) IsSymbol() bool { return k.sym != nil }

// Symbol returns the symbol of a symbol key.
func (k PropertyKey) Symbol() (*value.Symbol, bool) { return k.sym, k.sym != nil }

// Str returns the string of a string key.
func (k PropertyKey) Str() (value.String, bool) {
	if k.sym != nil {
		return value.String{}, false
	}
	return value.StringFromKey(k.str), true
}

// Value converts the key back to a language value.
func (k PropertyKey) Value() value.Value {
	if k.sym != nil {
		return value.Sym(k.sym)
	}
	return value.Str(value.StringFromKey(k.str))
}

// maxArrayIndex is 2^32-2; 2^32-1 is a valid length but not an index.
const maxArrayIndex = 1<<32 - 2

// ArrayIndex reports whether k is a canonical array index ("0".."4294967294",
// no leading zeros, no sign).
func (k PropertyKey) ArrayIndex() (uint32, bool) {
	if k.sym != nil || len(k.str) == 0 || len(k.str) > 20 {
		return 0, false
	}
	n := len(k.str) / 2
	var idx uint64
	for i := 0; i < n; i++ {
		hi, lo := k.str[2*i], k.str[2*i+1]
		if hi != 0 || lo < '0' || lo > '9' {
			return 0, false
		}
		if i == 0 && lo == '0' && n > 1 {
			return 0, false
		}
		idx = idx*10 + uint64(lo-'0')
	}
	if idx > maxArrayIndex {
		return 0, false
	}
	return uint32(idx), true
}

func (k PropertyKey) String() string {
	if k.sym != nil {
		return k.sym.String()
	}
	return value.StringFromKey(k.str).GoString()
}
