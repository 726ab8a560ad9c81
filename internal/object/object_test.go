package object

import (
	"errors"
	"testing"

	"ecmacore/internal/value"
)

func TestPreventExtensionsIdempotentAndMonotonic(t *testing.T) {
	h := NewHeap(0)
	for _, handle := range []value.Handle{h.NewOrdinary(value.NoHandle), h.NewArray(value.NoHandle)} {
		obj := h.Get(handle)
		if !obj.IsExtensible() {
			t.Fatalf("%s: new object must be extensible", obj.Kind())
		}
		if !obj.PreventExtensions() {
			t.Fatalf("%s: PreventExtensions returned false", obj.Kind())
		}
		if obj.IsExtensible() {
			t.Fatalf("%s: still extensible after PreventExtensions", obj.Kind())
		}
		if !obj.PreventExtensions() {
			t.Fatalf("%s: second PreventExtensions returned false", obj.Kind())
		}
		if obj.IsExtensible() {
			t.Fatalf("%s: extensibility came back", obj.Kind())
		}
	}
}

func TestArrayDelegationEquivalence(t *testing.T) {
	ord := FromOrdinary(NewOrdinaryObject(value.NoHandle))
	arr := FromArray(NewArrayObject(value.NoHandle))

	if ord.IsExtensible() != arr.IsExtensible() {
		t.Fatalf("initial extensibility differs")
	}
	if ord.PreventExtensions() != arr.PreventExtensions() {
		t.Fatalf("PreventExtensions results differ")
	}
	if ord.IsExtensible() != arr.IsExtensible() {
		t.Fatalf("extensibility after PreventExtensions differs")
	}
}

// Scenario A: fresh ordinary object, no prototype, empty property map.
func TestScenarioOrdinaryObject(t *testing.T) {
	obj := FromOrdinary(NewOrdinaryObject(value.NoHandle))
	if !obj.PreventExtensions() {
		t.Fatalf("PreventExtensions = false")
	}
	if obj.IsExtensible() {
		t.Fatalf("IsExtensible = true")
	}
	if _, ok := obj.GetOwnProperty(KeyFromGo("x")); ok {
		t.Fatalf("GetOwnProperty(x) should be absent")
	}
	if _, ok := obj.GetPrototypeOf(); ok {
		t.Fatalf("expected null prototype")
	}
}

// Scenario C: array wrapping a fresh ordinary object.
func TestScenarioArrayObject(t *testing.T) {
	h := NewHeap(0)
	arr := h.Get(h.NewArray(value.NoHandle))
	if !arr.PreventExtensions() {
		t.Fatalf("PreventExtensions = false")
	}
	if arr.IsExtensible() {
		t.Fatalf("IsExtensible = true")
	}
}

func TestGetOwnPropertyLookup(t *testing.T) {
	h := NewHeap(0)
	obj := h.Get(h.NewOrdinary(value.NoHandle))
	getter := h.NewOrdinary(value.NoHandle)

	if !obj.DefineOwnProperty(KeyFromGo("x"), DataDescriptor(value.Num(1), true, false, true)) {
		t.Fatalf("define x failed")
	}
	if !obj.DefineOwnProperty(KeyFromGo("y"), AccessorDescriptor(getter, value.NoHandle, true, false)) {
		t.Fatalf("define y failed")
	}

	px, ok := obj.GetOwnProperty(KeyFromGo("x"))
	if !ok || px.Kind() != PropData {
		t.Fatalf("x: got %v %v", px, ok)
	}
	d, _ := px.Data()
	if n, _ := d.Value.AsNumber(); n != 1 || !d.Writable || d.Enumerable || !d.Configurable {
		t.Fatalf("x attributes wrong: %v", px)
	}
	if _, isAcc := px.Accessor(); isAcc {
		t.Fatalf("data property reported as accessor")
	}

	py, ok := obj.GetOwnProperty(KeyFromGo("y"))
	if !ok || py.Kind() != PropAccessor {
		t.Fatalf("y: got %v %v", py, ok)
	}
	a, _ := py.Accessor()
	if a.Get != getter || a.Set != value.NoHandle || !a.Enumerable || a.Configurable {
		t.Fatalf("y attributes wrong: %v", py)
	}
}

func TestDataPropertyRoundTrip(t *testing.T) {
	sym := value.NewSymbolFromGo("s")
	for _, v := range []value.Value{
		value.Undefined(), value.Null(), value.Bool(true), value.Num(-0.5),
		value.StrFromGo("hi"), value.Sym(sym), value.Obj(9),
	} {
		p := NewData(DataProperty{Value: v, Writable: true})
		d, ok := p.Data()
		if !ok || !value.SameValue(d.Value, v) {
			t.Fatalf("round trip lost %v", v)
		}
	}
}

func TestSetPrototypeOf(t *testing.T) {
	h := NewHeap(0)
	a := h.NewOrdinary(value.NoHandle)
	b := h.NewOrdinary(a)
	c := h.NewOrdinary(b)

	objA := h.Get(a)
	if objA.SetPrototypeOf(c) {
		t.Fatalf("cycle a -> c -> b -> a must be refused")
	}
	if p, ok := objA.GetPrototypeOf(); ok || p != value.NoHandle {
		t.Fatalf("refused SetPrototypeOf changed the prototype")
	}
	if objA.SetPrototypeOf(a) {
		t.Fatalf("self prototype must be refused")
	}

	objC := h.Get(c)
	if !objC.SetPrototypeOf(a) {
		t.Fatalf("SetPrototypeOf(a) on c failed")
	}
	if p, ok := objC.GetPrototypeOf(); !ok || p != a {
		t.Fatalf("GetPrototypeOf = %v %v, want %v", p, ok, a)
	}
	if !objC.SetPrototypeOf(value.NoHandle) {
		t.Fatalf("setting null prototype failed")
	}

	objC.PreventExtensions()
	if objC.SetPrototypeOf(b) {
		t.Fatalf("non-extensible object accepted a new prototype")
	}
	if !objC.SetPrototypeOf(value.NoHandle) {
		t.Fatalf("same-value SetPrototypeOf must succeed on non-extensible objects")
	}
}

func TestHasPropertyWalksChainAndToleratesCycles(t *testing.T) {
	h := NewHeap(0)
	a := h.NewOrdinary(value.NoHandle)
	b := h.NewOrdinary(a)
	h.Get(a).CreateDataProperty(KeyFromGo("inherited"), value.Num(1))

	objB := h.Get(b)
	if !objB.HasProperty(KeyFromGo("inherited")) {
		t.Fatalf("inherited property not found")
	}
	if objB.HasProperty(KeyFromGo("missing")) {
		t.Fatalf("missing property found")
	}

	// a raw link can close the chain; lookups must still terminate
	h.LinkPrototype(a, b)
	if objB.HasProperty(KeyFromGo("missing")) {
		t.Fatalf("missing property found in cyclic chain")
	}
}

func TestDefineOwnPropertyMonotonicity(t *testing.T) {
	obj := FromOrdinary(NewOrdinaryObject(value.NoHandle))
	key := KeyFromGo("frozen")
	if !obj.DefineOwnProperty(key, DataDescriptor(value.Num(1), false, false, false)) {
		t.Fatalf("initial define failed")
	}

	refused := []struct {
		name string
		desc PropertyDescriptor
	}{
		{"make configurable", PropertyDescriptor{Configurable: true, HasConfigurable: true}},
		{"flip enumerable", PropertyDescriptor{Enumerable: true, HasEnumerable: true}},
		{"make writable", PropertyDescriptor{Writable: true, HasWritable: true}},
		{"change value", PropertyDescriptor{Value: value.Num(2), HasValue: true}},
		{"to accessor", PropertyDescriptor{Get: 5, HasGet: true}},
	}
	for _, tt := range refused {
		if obj.DefineOwnProperty(key, tt.desc) {
			t.Fatalf("%s: expected refusal", tt.name)
		}
	}

	allowed := []PropertyDescriptor{
		{},
		{Value: value.Num(1), HasValue: true},
		{Writable: false, HasWritable: true},
		{Configurable: false, HasConfigurable: true},
	}
	for i, d := range allowed {
		if !obj.DefineOwnProperty(key, d) {
			t.Fatalf("allowed[%d] refused", i)
		}
	}
}

func TestDefineOwnPropertyNonConfigurableWritable(t *testing.T) {
	obj := FromOrdinary(NewOrdinaryObject(value.NoHandle))
	key := KeyFromGo("w")
	obj.DefineOwnProperty(key, DataDescriptor(value.Num(1), true, true, false))

	if !obj.DefineOwnProperty(key, PropertyDescriptor{Value: value.Num(2), HasValue: true}) {
		t.Fatalf("writable value change refused")
	}
	if !obj.DefineOwnProperty(key, PropertyDescriptor{Writable: false, HasWritable: true}) {
		t.Fatalf("writable -> non-writable refused")
	}
	if obj.DefineOwnProperty(key, PropertyDescriptor{Writable: true, HasWritable: true}) {
		t.Fatalf("non-writable -> writable accepted")
	}
	p, _ := obj.GetOwnProperty(key)
	d, _ := p.Data()
	if n, _ := d.Value.AsNumber(); n != 2 || d.Writable {
		t.Fatalf("unexpected final property %v", p)
	}
}

func TestDefineOwnPropertyConvertsVariants(t *testing.T) {
	obj := FromOrdinary(NewOrdinaryObject(value.NoHandle))
	key := KeyFromGo("p")
	obj.DefineOwnProperty(key, DataDescriptor(value.Num(1), true, true, true))

	if !obj.DefineOwnProperty(key, PropertyDescriptor{Get: 3, HasGet: true}) {
		t.Fatalf("data -> accessor refused on configurable property")
	}
	p, _ := obj.GetOwnProperty(key)
	a, ok := p.Accessor()
	if !ok || a.Get != 3 || a.Set != value.NoHandle || !a.Enumerable || !a.Configurable {
		t.Fatalf("conversion result wrong: %v", p)
	}

	if !obj.DefineOwnProperty(key, PropertyDescriptor{Value: value.Bool(true), HasValue: true}) {
		t.Fatalf("accessor -> data refused")
	}
	p, _ = obj.GetOwnProperty(key)
	d, ok := p.Data()
	if !ok || d.Writable || !d.Enumerable {
		t.Fatalf("accessor -> data result wrong: %v", p)
	}
}

func TestDefineOnNonExtensible(t *testing.T) {
	obj := FromOrdinary(NewOrdinaryObject(value.NoHandle))
	obj.CreateDataProperty(KeyFromGo("a"), value.Num(1))
	obj.PreventExtensions()
	if obj.CreateDataProperty(KeyFromGo("b"), value.Num(2)) {
		t.Fatalf("new property on non-extensible object")
	}
	if !obj.CreateDataProperty(KeyFromGo("a"), value.Num(3)) {
		t.Fatalf("existing property update refused")
	}
}

func TestDefaultsForPartialDescriptor(t *testing.T) {
	obj := FromOrdinary(NewOrdinaryObject(value.NoHandle))
	obj.DefineOwnProperty(KeyFromGo("g"), PropertyDescriptor{})
	p, ok := obj.GetOwnProperty(KeyFromGo("g"))
	if !ok {
		t.Fatalf("generic descriptor did not create a property")
	}
	d, isData := p.Data()
	if !isData || !d.Value.IsUndefined() || d.Writable || d.Enumerable || d.Configurable {
		t.Fatalf("defaults wrong: %v", p)
	}
}

func TestDelete(t *testing.T) {
	obj := FromOrdinary(NewOrdinaryObject(value.NoHandle))
	obj.CreateDataProperty(KeyFromGo("c"), value.Num(1))
	obj.DefineOwnProperty(KeyFromGo("nc"), DataDescriptor(value.Num(1), true, true, false))

	if !obj.Delete(KeyFromGo("c")) {
		t.Fatalf("configurable delete refused")
	}
	if _, ok := obj.GetOwnProperty(KeyFromGo("c")); ok {
		t.Fatalf("deleted property still present")
	}
	if obj.Delete(KeyFromGo("nc")) {
		t.Fatalf("non-configurable delete accepted")
	}
	if !obj.Delete(KeyFromGo("absent")) {
		t.Fatalf("deleting an absent key must succeed")
	}
}

func TestOwnPropertyKeysOrder(t *testing.T) {
	obj := FromOrdinary(NewOrdinaryObject(value.NoHandle))
	s1 := value.NewSymbolFromGo("s1")
	s2 := value.NewSymbolFromGo("s2")
	for _, k := range []PropertyKey{
		KeyFromGo("b"), SymbolKey(s1), KeyFromGo("10"), KeyFromGo("a"), KeyFromGo("2"), SymbolKey(s2), KeyFromGo("01"),
	} {
		obj.CreateDataProperty(k, value.Undefined())
	}
	got := obj.OwnPropertyKeys()
	want := []PropertyKey{
		KeyFromGo("2"), KeyFromGo("10"), KeyFromGo("b"), KeyFromGo("a"), KeyFromGo("01"), SymbolKey(s1), SymbolKey(s2),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("key %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestUnknownKindPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, &ObjectError{Code: ErrUnknownKind}) {
			t.Fatalf("expected unknown kind panic, got %v", r)
		}
	}()
	var o Object
	o.IsExtensible()
}
