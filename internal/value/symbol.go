package value

import (
	"fmt"
	"sync/atomic"
)

var symbolSeq uint64

// Symbol is a unique token. Identity is the allocation itself; two symbols with the
// same description are different symbols.
type Symbol struct {
	id   uint64
	desc *String
}

// NewSymbol allocates a fresh symbol. desc may be nil.
func NewSymbol(desc *String) *Symbol {
	s := &Symbol{id: atomic.AddUint64(&symbolSeq, 1)}
	if desc != nil {
		d := *desc
		s.desc = &d
	}
	return s
}

// NewSymbolFromGo is a convenience for NewSymbol with a Go description.
func NewSymbolFromGo(desc string) *Symbol {
	d := NewString(desc)
	return NewSymbol(&d)
}

// ID returns the process-unique allocation number. It is diagnostic only.
func (s *Symbol) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Description returns the optional description.
func (s *Symbol) Description() (String, bool) {
	if s == nil || s.desc == nil {
		return String{}, false
	}
	return *s.desc, true
}

func (s *Symbol) String() string {
	if s == nil {
		return "Symbol(<nil>)"
	}
	if s.desc == nil {
		return fmt.Sprintf("Symbol()#%d", s.id)
	}
	return fmt.Sprintf("Symbol(%s)#%d", s.desc.GoString(), s.id)
}
