// Package snapshot serializes a heap and its root set with msgpack.
//
// A snapshot records every live object with its prototype, extensibility and
// own properties in key order. Symbols are numbered densely in the order they
// are first met, so restoring a snapshot yields one fresh symbol per recorded
// symbol and identity between properties is preserved.
package snapshot

import (
	"errors"
	"fmt"

	"ecmacore/internal/gc"
	"ecmacore/internal/object"
	"ecmacore/internal/value"
)

// SchemaVersion is bumped whenever the record layout changes.
const SchemaVersion uint16 = 2

var (
	// ErrSchema reports a snapshot written with a different schema version.
	ErrSchema = errors.New("snapshot: unsupported schema version")
	// ErrCorrupt reports a snapshot whose records do not describe a valid heap.
	ErrCorrupt = errors.New("snapshot: corrupt")
)

const (
	kindOrdinary uint8 = iota
	kindArray
)

// Snapshot is the serialized form of a heap.
type Snapshot struct {
	Schema  uint16
	Roots   []RootRecord
	Symbols []SymbolRecord
	Objects []ObjectRecord
}

// RootRecord is one pinned handle with its pin count.
type RootRecord struct {
	Handle uint32
	Pins   uint32
}

// SymbolRecord describes one symbol. IDs start at 1.
type SymbolRecord struct {
	ID      uint64
	HasDesc bool
	Desc    []uint16
}

// ObjectRecord describes one live object.
type ObjectRecord struct {
	Handle     uint32
	Kind       uint8
	Proto      uint32
	Extensible bool

	// arrays only
	Length         uint32
	LengthWritable bool

	Props []PropRecord
}

// PropRecord describes one own property. Array length is not recorded here.
type PropRecord struct {
	Key          KeyRecord
	Accessor     bool
	Value        ValueRecord
	Get          uint32
	Set          uint32
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// KeyRecord is a property key: a symbol id, or string code units when Symbol is 0.
type KeyRecord struct {
	Symbol uint64
	Units  []uint16
}

// ValueRecord is a primitive value or an object handle.
type ValueRecord struct {
	Kind   uint8
	Bool   bool
	Num    float64
	Units  []uint16
	Symbol uint64
	Handle uint32
}

type capturer struct {
	syms    map[*value.Symbol]uint64
	records []SymbolRecord
}

func (c *capturer) symbol(s *value.Symbol) uint64 {
	if id, ok := c.syms[s]; ok {
		return id
	}
	id := uint64(len(c.records) + 1)
	c.syms[s] = id
	rec := SymbolRecord{ID: id}
	if d, ok := s.Description(); ok {
		rec.HasDesc = true
		rec.Desc = d.Units()
	}
	c.records = append(c.records, rec)
	return id
}

func (c *capturer) key(k object.PropertyKey) KeyRecord {
	if s, ok := k.Symbol(); ok {
		return KeyRecord{Symbol: c.symbol(s)}
	}
	str, _ := k.Str()
	return KeyRecord{Units: str.Units()}
}

func (c *capturer) value(v value.Value) ValueRecord {
	rec := ValueRecord{Kind: uint8(v.Kind())}
	switch v.Kind() {
	case value.KUndefined, value.KNull:
	case value.KBoolean:
		rec.Bool, _ = v.AsBool()
	case value.KNumber:
		rec.Num, _ = v.AsNumber()
	case value.KString:
		s, _ := v.AsString()
		rec.Units = s.Units()
	case value.KSymbol:
		s, _ := v.AsSymbol()
		rec.Symbol = c.symbol(s)
	case value.KObject:
		rec.Handle = uint32(v.Handle())
	default:
		panic(fmt.Sprintf("snapshot: unexpected value kind %s", v.Kind()))
	}
	return rec
}

var lengthKey = object.KeyFromGo("length")

// Capture records every live object of heap. roots may be nil. Pins on freed
// objects are left out, as the collector ignores them.
func Capture(heap *object.Heap, roots *gc.RootSet) *Snapshot {
	c := &capturer{syms: make(map[*value.Symbol]uint64)}
	snap := &Snapshot{Schema: SchemaVersion}
	if roots != nil {
		for _, h := range roots.Handles() {
			if !heap.Alive(h) {
				continue
			}
			snap.Roots = append(snap.Roots, RootRecord{Handle: uint32(h), Pins: uint32(roots.Pins(h))})
		}
	}

	for _, h := range heap.Handles() {
		obj := heap.Get(h)
		proto, _ := obj.GetPrototypeOf()
		rec := ObjectRecord{
			Handle:     uint32(h),
			Proto:      uint32(proto),
			Extensible: obj.IsExtensible(),
		}
		switch obj.Kind() {
		case object.KindOrdinary:
			rec.Kind = kindOrdinary
		case object.KindArray:
			rec.Kind = kindArray
			arr, _ := obj.Array()
			rec.Length = arr.Length()
			if p, ok := obj.GetOwnProperty(lengthKey); ok {
				d, _ := p.Data()
				rec.LengthWritable = d.Writable
			}
		default:
			panic(fmt.Sprintf("snapshot: unexpected object kind %s", obj.Kind()))
		}

		for _, k := range obj.OwnPropertyKeys() {
			if rec.Kind == kindArray && k == lengthKey {
				continue
			}
			p, _ := obj.GetOwnProperty(k)
			pr := PropRecord{
				Key:          c.key(k),
				Enumerable:   p.Enumerable(),
				Configurable: p.Configurable(),
			}
			if acc, ok := p.Accessor(); ok {
				pr.Accessor = true
				pr.Get = uint32(acc.Get)
				pr.Set = uint32(acc.Set)
			} else {
				d, _ := p.Data()
				pr.Value = c.value(d.Value)
				pr.Writable = d.Writable
			}
			rec.Props = append(rec.Props, pr)
		}
		snap.Objects = append(snap.Objects, rec)
	}
	snap.Symbols = c.records
	return snap
}

// Restored is a heap rebuilt from a snapshot. Handles maps recorded handles to
// the handles of the new heap.
type Restored struct {
	Heap    *object.Heap
	Roots   *gc.RootSet
	Handles map[uint32]value.Handle
}

type restorer struct {
	handles map[uint32]value.Handle
	syms    map[uint64]*value.Symbol
}

func (r *restorer) handle(owner, h uint32) (value.Handle, error) {
	if h == 0 {
		return value.NoHandle, nil
	}
	nh, ok := r.handles[h]
	if !ok {
		return value.NoHandle, fmt.Errorf("%w: object#%d references missing object#%d", ErrCorrupt, owner, h)
	}
	return nh, nil
}

func (r *restorer) symbol(id uint64) (*value.Symbol, error) {
	s, ok := r.syms[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown symbol %d", ErrCorrupt, id)
	}
	return s, nil
}

func (r *restorer) key(k KeyRecord) (object.PropertyKey, error) {
	if k.Symbol != 0 {
		s, err := r.symbol(k.Symbol)
		if err != nil {
			return object.PropertyKey{}, err
		}
		return object.SymbolKey(s), nil
	}
	return object.StringKey(value.StringFromUnits(k.Units)), nil
}

func (r *restorer) value(owner uint32, v ValueRecord) (value.Value, error) {
	switch value.Kind(v.Kind) {
	case value.KUndefined:
		return value.Undefined(), nil
	case value.KNull:
		return value.Null(), nil
	case value.KBoolean:
		return value.Bool(v.Bool), nil
	case value.KNumber:
		return value.Num(v.Num), nil
	case value.KString:
		return value.Str(value.StringFromUnits(v.Units)), nil
	case value.KSymbol:
		s, err := r.symbol(v.Symbol)
		if err != nil {
			return value.Value{}, err
		}
		return value.Sym(s), nil
	case value.KObject:
		if v.Handle == 0 {
			return value.Value{}, fmt.Errorf("%w: object#%d holds a null object reference", ErrCorrupt, owner)
		}
		h, err := r.handle(owner, v.Handle)
		if err != nil {
			return value.Value{}, err
		}
		return value.Obj(h), nil
	default:
		return value.Value{}, fmt.Errorf("%w: value kind %d", ErrCorrupt, v.Kind)
	}
}

// Restore rebuilds a heap from snap. Objects are allocated in recorded handle
// order, then their properties, array lengths, extensibility and prototypes are
// applied. Prototype links are written raw so recorded graphs come back as they
// were.
func Restore(snap *Snapshot, capacity int) (*Restored, error) {
	if snap.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, snap.Schema, SchemaVersion)
	}
	heap := object.NewHeap(capacity)
	r := &restorer{
		handles: make(map[uint32]value.Handle, len(snap.Objects)),
		syms:    make(map[uint64]*value.Symbol, len(snap.Symbols)),
	}
	for _, s := range snap.Symbols {
		if s.HasDesc {
			d := value.StringFromUnits(s.Desc)
			r.syms[s.ID] = value.NewSymbol(&d)
		} else {
			r.syms[s.ID] = value.NewSymbol(nil)
		}
	}

	for _, rec := range snap.Objects {
		if rec.Handle == 0 {
			return nil, fmt.Errorf("%w: object with handle 0", ErrCorrupt)
		}
		if _, dup := r.handles[rec.Handle]; dup {
			return nil, fmt.Errorf("%w: duplicate object#%d", ErrCorrupt, rec.Handle)
		}
		switch rec.Kind {
		case kindOrdinary:
			r.handles[rec.Handle] = heap.NewOrdinary(value.NoHandle)
		case kindArray:
			r.handles[rec.Handle] = heap.NewArray(value.NoHandle)
		default:
			return nil, fmt.Errorf("%w: object#%d has kind %d", ErrCorrupt, rec.Handle, rec.Kind)
		}
	}

	for _, rec := range snap.Objects {
		if err := r.fill(heap, rec); err != nil {
			return nil, err
		}
	}

	roots := gc.NewRootSet()
	for _, rec := range snap.Roots {
		nh, ok := r.handles[rec.Handle]
		if !ok {
			return nil, fmt.Errorf("%w: root object#%d missing", ErrCorrupt, rec.Handle)
		}
		if rec.Pins == 0 {
			return nil, fmt.Errorf("%w: root object#%d has no pins", ErrCorrupt, rec.Handle)
		}
		for range rec.Pins {
			roots.Add(nh)
		}
	}
	heap.ResetAllocCount()
	return &Restored{Heap: heap, Roots: roots, Handles: r.handles}, nil
}

func (r *restorer) fill(heap *object.Heap, rec ObjectRecord) error {
	h := r.handles[rec.Handle]
	obj := heap.Get(h)
	for _, pr := range rec.Props {
		key, err := r.key(pr.Key)
		if err != nil {
			return err
		}
		var desc object.PropertyDescriptor
		if pr.Accessor {
			get, err := r.handle(rec.Handle, pr.Get)
			if err != nil {
				return err
			}
			set, err := r.handle(rec.Handle, pr.Set)
			if err != nil {
				return err
			}
			desc = object.AccessorDescriptor(get, set, pr.Enumerable, pr.Configurable)
		} else {
			v, err := r.value(rec.Handle, pr.Value)
			if err != nil {
				return err
			}
			desc = object.DataDescriptor(v, pr.Writable, pr.Enumerable, pr.Configurable)
		}
		if !obj.DefineOwnProperty(key, desc) {
			return fmt.Errorf("%w: object#%d refused property %s", ErrCorrupt, rec.Handle, key)
		}
	}
	if rec.Kind == kindArray {
		desc := object.PropertyDescriptor{
			Value:       value.Num(float64(rec.Length)),
			HasValue:    true,
			Writable:    rec.LengthWritable,
			HasWritable: true,
		}
		if !obj.DefineOwnProperty(lengthKey, desc) {
			return fmt.Errorf("%w: object#%d refused length %d", ErrCorrupt, rec.Handle, rec.Length)
		}
	}
	if !rec.Extensible {
		obj.PreventExtensions()
	}
	proto, err := r.handle(rec.Handle, rec.Proto)
	if err != nil {
		return err
	}
	heap.LinkPrototype(h, proto)
	return nil
}
