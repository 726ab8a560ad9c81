package lexical

// IsWhiteSpace reports whether r is ECMAScript WhiteSpace: TAB, VT, FF, SP,
// NBSP, ZWNBSP and the Space_Separator set.
func IsWhiteSpace(r rune) bool {
	switch r {
	case '\t', '\v', '\f', ' ', 0x00A0, 0xFEFF:
		return true
	case 0x1680, 0x202F, 0x205F, 0x3000:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

// IsLineTerminator reports whether r is LF, CR, LS (U+2028) or PS (U+2029).
func IsLineTerminator(r rune) bool {
	switch r {
	case '\n', '\r', 0x2028, 0x2029:
		return true
	}
	return false
}
