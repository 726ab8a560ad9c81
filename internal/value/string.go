package value

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// String is an immutable sequence of UTF-16 code units.
// Length and indexing work on code units; surrogate pairs are never folded.
type String struct {
	// units is shared between copies and never mutated after construction.
	units []uint16
}

// NewString encodes a Go (UTF-8) string into code units.
func NewString(s string) String {
	if s == "" {
		return String{}
	}
	return String{units: utf16.Encode([]rune(s))}
}

// StringFromUnits copies the given code units into a new String.
func StringFromUnits(units []uint16) String {
	if len(units) == 0 {
		return String{}
	}
	return String{units: append([]uint16(nil), units...)}
}

// Len returns the number of code units.
func (s String) Len() int { return len(s.units) }

// At returns the code unit at index i. It panics when i is out of range.
func (s String) At(i int) uint16 { return s.units[i] }

// Units returns a copy of the code units.
func (s String) Units() []uint16 { return append([]uint16(nil), s.units...) }

// Equal compares code unit sequences.
func (s String) Equal(other String) bool {
	if len(s.units) != len(other.units) {
		return false
	}
	for i, u := range s.units {
		if other.units[i] != u {
			return false
		}
	}
	return true
}

// Key returns a comparable encoding of the code units, two bytes per unit.
// Equal strings produce equal keys.
func (s String) Key() string {
	if len(s.units) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(s.units) * 2)
	for _, u := range s.units {
		sb.WriteByte(byte(u >> 8))
		sb.WriteByte(byte(u))
	}
	return sb.String()
}

// StringFromKey reverses Key.
func StringFromKey(k string) String {
	if len(k) < 2 {
		return String{}
	}
	units := make([]uint16, len(k)/2)
	for i := range units {
		units[i] = uint16(k[2*i])<<8 | uint16(k[2*i+1])
	}
	return String{units: units}
}

// GoString decodes to UTF-8 for display. Lone surrogates become U+FFFD.
func (s String) GoString() string {
	return string(utf16.Decode(s.units))
}

// IsWellFormed reports whether the string contains no lone surrogates.
func (s String) IsWellFormed() bool {
	for i := 0; i < len(s.units); i++ {
		u := s.units[i]
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if i+1 >= len(s.units) || s.units[i+1] < 0xDC00 || s.units[i+1] > 0xDFFF {
				return false
			}
			i++
		case u >= 0xDC00 && u <= 0xDFFF:
			return false
		}
	}
	return true
}

// NormForm selects a Unicode normalization form.
type NormForm uint8

const (
	NFC NormForm = iota
	NFD
	NFKC
	NFKD
)

// ParseNormForm maps the names accepted by String.prototype.normalize.
func ParseNormForm(name string) (NormForm, error) {
	switch name {
	case "", "NFC":
		return NFC, nil
	case "NFD":
		return NFD, nil
	case "NFKC":
		return NFKC, nil
	case "NFKD":
		return NFKD, nil
	default:
		return NFC, fmt.Errorf("invalid normalization form: %q", name)
	}
}

// Normalize returns the string in the requested normalization form.
// Strings with lone surrogates are returned unchanged.
func (s String) Normalize(form NormForm) String {
	if len(s.units) == 0 || !s.IsWellFormed() {
		return s
	}
	var f norm.Form
	switch form {
	case NFD:
		f = norm.NFD
	case NFKC:
		f = norm.NFKC
	case NFKD:
		f = norm.NFKD
	default:
		f = norm.NFC
	}
	src := s.GoString()
	if f.IsNormalString(src) {
		return s
	}
	return NewString(f.String(src))
}
