package lexical

import (
	"bytes"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"ecmacore/internal/source"
)

// Decoded is source content converted to UTF-8.
type Decoded struct {
	Content []byte
	Flags   source.FileFlags
	// InvalidAt is the byte offset of the first invalid UTF-8 sequence in
	// Content, or -1.
	InvalidAt int
	// LoneSurrogates counts unpaired UTF-16 surrogates that were replaced
	// with U+FFFD.
	LoneSurrogates int
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Decode converts raw file bytes to UTF-8. Content with a UTF-16 byte order
// mark is transcoded; a UTF-8 byte order mark is dropped; anything else is
// taken as UTF-8 unchanged.
func Decode(raw []byte) (Decoded, error) {
	var dec *encoding.Decoder
	var flags source.FileFlags
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		dec = unicode.UTF8BOM.NewDecoder()
		flags = source.FileHadBOM
	case bytes.HasPrefix(raw, bomUTF16BE):
		dec = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		flags = source.FileHadBOM | source.FileUTF16
	case bytes.HasPrefix(raw, bomUTF16LE):
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		flags = source.FileHadBOM | source.FileUTF16
	default:
		return Decoded{Content: raw, InvalidAt: firstInvalid(raw)}, nil
	}

	if flags&source.FileUTF16 != 0 && len(raw)%2 != 0 {
		return Decoded{}, fmt.Errorf("odd length UTF-16 input (%d bytes)", len(raw))
	}
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return Decoded{}, fmt.Errorf("decode: %w", err)
	}
	d := Decoded{Content: out, Flags: flags, InvalidAt: firstInvalid(out)}
	if flags&source.FileUTF16 != 0 {
		d.LoneSurrogates = loneSurrogates(raw[2:], bytes.HasPrefix(raw, bomUTF16BE))
	}
	return d, nil
}

func loneSurrogates(b []byte, bigEndian bool) int {
	unit := func(i int) uint16 {
		if bigEndian {
			return uint16(b[i])<<8 | uint16(b[i+1])
		}
		return uint16(b[i+1])<<8 | uint16(b[i])
	}
	n := 0
	for i := 0; i+1 < len(b); i += 2 {
		u := unit(i)
		if !utf16.IsSurrogate(rune(u)) {
			continue
		}
		if u < 0xDC00 && i+3 < len(b) {
			if next := unit(i + 2); next >= 0xDC00 && next <= 0xDFFF {
				i += 2
				continue
			}
		}
		n++
	}
	return n
}

func firstInvalid(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
