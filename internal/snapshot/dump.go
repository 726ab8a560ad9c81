package snapshot

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"ecmacore/internal/value"
)

// Dump writes a line-oriented listing of snap sorted by handle. The output is
// stable for a given snapshot and is meant for diffing.
func Dump(w io.Writer, snap *Snapshot) error {
	var b strings.Builder
	fmt.Fprintf(&b, "SNAPSHOT schema=%d objects=%d symbols=%d roots=%d\n",
		snap.Schema, len(snap.Objects), len(snap.Symbols), len(snap.Roots))

	roots := append([]RootRecord(nil), snap.Roots...)
	sort.Slice(roots, func(i, j int) bool { return roots[i].Handle < roots[j].Handle })
	for _, r := range roots {
		if r.Pins > 1 {
			fmt.Fprintf(&b, "ROOT object#%d pins=%d\n", r.Handle, r.Pins)
		} else {
			fmt.Fprintf(&b, "ROOT object#%d\n", r.Handle)
		}
	}

	syms := make(map[uint64]SymbolRecord, len(snap.Symbols))
	for _, s := range snap.Symbols {
		syms[s.ID] = s
		fmt.Fprintf(&b, "SYM %s\n", symbolLabel(s))
	}

	objs := append([]ObjectRecord(nil), snap.Objects...)
	sort.Slice(objs, func(i, j int) bool { return objs[i].Handle < objs[j].Handle })
	for _, o := range objs {
		b.WriteString(o.formatLine())
		b.WriteByte('\n')
		for _, p := range o.Props {
			b.WriteString("  ")
			b.WriteString(p.formatLine(syms))
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func symbolLabel(s SymbolRecord) string {
	if !s.HasDesc {
		return fmt.Sprintf("@%d", s.ID)
	}
	return fmt.Sprintf("@%d(%s)", s.ID, unitsString(s.Desc))
}

func unitsString(units []uint16) string {
	return string(utf16.Decode(units))
}

func handleLabel(h uint32) string {
	if h == 0 {
		return "null"
	}
	return "object#" + strconv.FormatUint(uint64(h), 10)
}

func (o ObjectRecord) formatLine() string {
	var b strings.Builder
	kind := "ordinary"
	if o.Kind == kindArray {
		kind = "array"
	}
	fmt.Fprintf(&b, "OBJ object#%d kind=%s proto=%s extensible=%t props=%d",
		o.Handle, kind, handleLabel(o.Proto), o.Extensible, len(o.Props))
	if o.Kind == kindArray {
		fmt.Fprintf(&b, " length=%d length_writable=%t", o.Length, o.LengthWritable)
	}
	return b.String()
}

func (p PropRecord) formatLine(syms map[uint64]SymbolRecord) string {
	var b strings.Builder
	if p.Key.Symbol != 0 {
		b.WriteString(symbolLabel(syms[p.Key.Symbol]))
	} else {
		b.WriteString(strconv.Quote(unitsString(p.Key.Units)))
	}
	if p.Accessor {
		fmt.Fprintf(&b, " get=%s set=%s", handleLabel(p.Get), handleLabel(p.Set))
	} else {
		fmt.Fprintf(&b, " = %s", p.Value.format(syms))
	}
	b.WriteString(" [")
	if !p.Accessor && p.Writable {
		b.WriteByte('W')
	}
	if p.Enumerable {
		b.WriteByte('E')
	}
	if p.Configurable {
		b.WriteByte('C')
	}
	b.WriteByte(']')
	return b.String()
}

func (v ValueRecord) format(syms map[uint64]SymbolRecord) string {
	switch value.Kind(v.Kind) {
	case value.KUndefined:
		return "undefined"
	case value.KNull:
		return "null"
	case value.KBoolean:
		return strconv.FormatBool(v.Bool)
	case value.KString:
		return strconv.Quote(unitsString(v.Units))
	case value.KSymbol:
		return symbolLabel(syms[v.Symbol])
	case value.KNumber:
		if v.Num == 0 && math.Signbit(v.Num) {
			return "-0"
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case value.KObject:
		return handleLabel(v.Handle)
	default:
		return fmt.Sprintf("?kind=%d", v.Kind)
	}
}
