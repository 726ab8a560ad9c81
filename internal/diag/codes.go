package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo                Code = 1000
	LexUnterminatedComment Code = 1001
	LexInvalidEncoding     Code = 1002
	LexLoneSurrogate       Code = 1003

	// io
	IOLoadFileError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	LexInfo:                "Lexical information",
	LexUnterminatedComment: "Unterminated multi-line comment",
	LexInvalidEncoding:     "Invalid source encoding",
	LexLoneSurrogate:       "Unpaired UTF-16 surrogate",
	IOLoadFileError:        "I/O error while loading file",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
