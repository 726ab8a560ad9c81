package lexical

import (
	"testing"

	"ecmacore/internal/source"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		raw   []byte
		want  string
		flags source.FileFlags
	}{
		{"plain utf8", []byte("a\u00e9"), "a\u00e9", 0},
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, "hi", source.FileHadBOM},
		{"utf16 le", []byte{0xFF, 0xFE, 'h', 0, 0x28, 0x20}, "h\u2028", source.FileHadBOM | source.FileUTF16},
		{"utf16 be", []byte{0xFE, 0xFF, 0, 'h', 0xD8, 0x3D, 0xDE, 0x00}, "h\U0001F600", source.FileHadBOM | source.FileUTF16},
	}
	for _, tt := range tests {
		got, err := Decode(tt.raw)
		if err != nil {
			t.Fatalf("%s: Decode: %v", tt.name, err)
		}
		if string(got.Content) != tt.want || got.Flags != tt.flags || got.InvalidAt != -1 {
			t.Fatalf("%s: got %q flags=%b invalid=%d", tt.name, got.Content, got.Flags, got.InvalidAt)
		}
	}
}

func TestDecodeReportsInvalidUTF8(t *testing.T) {
	got, err := Decode([]byte{'o', 'k', 0xFF, 'x'})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.InvalidAt != 2 {
		t.Fatalf("InvalidAt = %d, want 2", got.InvalidAt)
	}
}

func TestDecodeRejectsOddUTF16(t *testing.T) {
	if _, err := Decode([]byte{0xFF, 0xFE, 'h'}); err == nil {
		t.Fatalf("expected error for truncated UTF-16")
	}
}

func TestDecodeCountsLoneSurrogates(t *testing.T) {
	// high surrogate followed by 'a', then a stray low surrogate
	raw := []byte{0xFF, 0xFE, 0x3D, 0xD8, 'a', 0, 0x00, 0xDE}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.LoneSurrogates != 2 {
		t.Fatalf("LoneSurrogates = %d, want 2", got.LoneSurrogates)
	}
	if string(got.Content) != "\ufffda\ufffd" {
		t.Fatalf("Content = %q", got.Content)
	}
}
