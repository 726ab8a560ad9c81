// Package source holds the files a scan reads and maps byte spans to lines.
package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual marks content added from memory (tests, stdin).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM marks content that started with a byte order mark.
	FileHadBOM
	// FileUTF16 marks content decoded from UTF-16.
	FileUTF16
)

// File captures metadata and UTF-8 content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	// LineStarts holds the byte offset of every line; LineStarts[0] is 0.
	LineStarts []uint32
	Hash       [32]byte
	Flags      FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
