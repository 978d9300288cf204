package marshal

import (
	"math/big"
	"testing"

	"github.com/chazu/magpack/runtime"
)

func roundTrip(t *testing.T, rt *runtime.Runtime, v runtime.Value, opts ...Option) runtime.Value {
	t.Helper()
	data, err := Marshal(rt, v, opts...)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := Unmarshal(rt, data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return got
}

// equalValue compares two graphs structurally, ignoring object identity.
// seen guards against cycles.
func equalValue(a, b runtime.Value, seen map[[2]runtime.Value]bool) bool {
	if a == b {
		return true
	}
	oa, ob := runtime.ObjectFromValue(a), runtime.ObjectFromValue(b)
	if oa == nil || ob == nil {
		return false
	}
	if oa.Kind() != ob.Kind() {
		return false
	}
	pair := [2]runtime.Value{a, b}
	if seen[pair] {
		return true
	}
	seen[pair] = true

	switch oa.Kind() {
	case runtime.KindString:
		return oa.StringContent() == ob.StringContent() && oa.Encoding() == ob.Encoding()
	case runtime.KindBigInt:
		return oa.BigInt().Cmp(ob.BigInt()) == 0
	case runtime.KindArray:
		ea, eb := oa.Elems(), ob.Elems()
		if len(ea) != len(eb) {
			return false
		}
		for i := range ea {
			if !equalValue(ea[i], eb[i], seen) {
				return false
			}
		}
		return true
	case runtime.KindDict:
		na, nb := oa.Dict().Entries(), ob.Dict().Entries()
		if len(na) != len(nb) {
			return false
		}
		for i := range na {
			if !equalValue(na[i].Key, nb[i].Key, seen) || !equalValue(na[i].Value, nb[i].Value, seen) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func TestRoundTripMixedGraph(t *testing.T) {
	rt := runtime.NewRuntime()

	inner := rt.NewArray(rt.Int(1), runtime.FromFloat64(2.5), runtime.Nil, runtime.True)
	v := rt.NewDictValue()
	dict := runtime.ObjectFromValue(v).Dict()
	dict.Set(rt.NewString("items"), inner)
	dict.Set(rt.NewString("name"), rt.NewStringEncoded("café", "UTF-8"))
	dict.Set(rt.NewString("total"), rt.NewBigInt(new(big.Int).Lsh(big.NewInt(7), 80)))
	dict.Set(rt.NewString("ok"), runtime.False)

	got := roundTrip(t, rt, v)
	if !equalValue(v, got, map[[2]runtime.Value]bool{}) {
		t.Error("round-tripped graph differs structurally")
	}
}

func TestRoundTripSharingPreserved(t *testing.T) {
	rt := runtime.NewRuntime()
	shared := rt.NewArray(rt.Int(9))
	outer := rt.NewArray(shared, shared)

	got := roundTrip(t, rt, outer)
	elems := runtime.ObjectFromValue(got).Elems()
	if len(elems) != 2 {
		t.Fatalf("decoded %d elements, want 2", len(elems))
	}
	if elems[0] != elems[1] {
		t.Error("shared element decoded as two distinct objects")
	}
}

func TestRoundTripCycle(t *testing.T) {
	rt := runtime.NewRuntime()
	arr := rt.NewArray()
	runtime.ObjectFromValue(arr).Append(arr)

	got := roundTrip(t, rt, arr)
	elems := runtime.ObjectFromValue(got).Elems()
	if len(elems) != 1 || elems[0] != got {
		t.Error("self-referential array did not decode to itself")
	}
}

func TestRoundTripDictCycle(t *testing.T) {
	rt := runtime.NewRuntime()
	v := rt.NewDictValue()
	runtime.ObjectFromValue(v).Dict().Set(rt.NewString("self"), v)

	got := roundTrip(t, rt, v)
	entries := runtime.ObjectFromValue(got).Dict().Entries()
	if len(entries) != 1 || entries[0].Value != got {
		t.Error("self-referential dictionary did not decode to itself")
	}
}

func TestRoundTripInstanceVariables(t *testing.T) {
	rt := runtime.NewRuntime()
	s := rt.NewString("payload")
	obj := runtime.ObjectFromValue(s)
	obj.SetIVar("source", rt.NewString("unit"))
	obj.SetIVar("revision", rt.Int(3))

	got := runtime.ObjectFromValue(roundTrip(t, rt, s))
	ivars := got.IVars()
	if len(ivars) != 2 {
		t.Fatalf("decoded %d instance variables, want 2", len(ivars))
	}
	if ivars[0].Name != "source" || ivars[1].Name != "revision" {
		t.Errorf("instance variable order = %q, %q", ivars[0].Name, ivars[1].Name)
	}
	if rev, _ := got.IVar("revision"); rev != rt.Int(3) {
		t.Errorf("revision = %v", rev)
	}
}

func TestRoundTripSubclass(t *testing.T) {
	rt := runtime.NewRuntime()
	wordList := runtime.NewClass("", "WordList", rt.ArrayClass)
	rt.Classes.Register(wordList)

	arr := rt.NewArray(rt.NewString("word"))
	runtime.ObjectFromValue(arr).SetClass(wordList)

	got := runtime.ObjectFromValue(roundTrip(t, rt, arr))
	if got.Class() != wordList {
		t.Errorf("decoded class = %v, want WordList", got.Class().Path())
	}
	if got.Kind() != runtime.KindArray {
		t.Errorf("decoded kind = %v, want array", got.Kind())
	}
}

func TestRoundTripExtended(t *testing.T) {
	rt := runtime.NewRuntime()
	first := runtime.NewModule("", "First")
	second := runtime.NewModule("", "Second")
	rt.Classes.Register(first)
	rt.Classes.Register(second)

	arr := rt.NewArray()
	obj := runtime.ObjectFromValue(arr)
	obj.SetClass(obj.Class().Extended(first))
	obj.SetClass(obj.Class().Extended(second))

	got := runtime.ObjectFromValue(roundTrip(t, rt, arr))
	class := got.Class()
	if !class.IsIncluded() || class.Mixin() != second {
		t.Fatalf("innermost mixin = %v, want Second", class.Name)
	}
	class = class.Superclass
	if !class.IsIncluded() || class.Mixin() != first {
		t.Fatalf("next mixin = %v, want First", class.Name)
	}
	if class.Superclass != rt.ArrayClass {
		t.Errorf("chain does not end at Array")
	}
}

func TestRoundTripEncodings(t *testing.T) {
	rt := runtime.NewRuntime()

	tests := []struct {
		name     string
		encoding string
	}{
		{"raw", ""},
		{"ascii", "US-ASCII"},
		{"utf8", "UTF-8"},
		{"charset", "Shift_JIS"},
	}

	for _, tt := range tests {
		v := rt.NewStringEncoded("text", tt.encoding)
		got := runtime.ObjectFromValue(roundTrip(t, rt, v))
		if got.Encoding() != tt.encoding {
			t.Errorf("%s: decoded encoding = %q, want %q", tt.name, got.Encoding(), tt.encoding)
		}
	}
}

func TestRoundTripWideInts(t *testing.T) {
	rt := runtime.NewRuntime()

	for _, n := range []int64{1 << 31, -(1 << 31) - 1, 1 << 40, -(1 << 46)} {
		got := roundTrip(t, rt, rt.Int(n))
		if !got.IsSmallInt() || got.SmallInt() != n {
			t.Errorf("round trip of %d = %v", n, got)
		}
	}
}

func TestRoundTripSymbolTable(t *testing.T) {
	rt := runtime.NewRuntime()
	a := rt.NewString("a")
	runtime.ObjectFromValue(a).SetIVar("tag", rt.Int(1))
	b := rt.NewString("b")
	runtime.ObjectFromValue(b).SetIVar("tag", rt.Int(2))

	got := runtime.ObjectFromValue(roundTrip(t, rt, rt.NewArray(a, b)))
	second := runtime.ObjectFromValue(got.Elems()[1])
	if v, ok := second.IVar("tag"); !ok || v != rt.Int(2) {
		t.Errorf("symbol link did not resolve: tag = %v, %v", v, ok)
	}
}

// ---------------------------------------------------------------------------
// Reader failure modes
// ---------------------------------------------------------------------------

func TestUnmarshalErrors(t *testing.T) {
	rt := runtime.NewRuntime()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown tag", []byte{'Z'}},
		{"truncated string", []byte{'"', 0x0B, 'a'}},
		{"truncated array", []byte{'[', 0x07, 'i', 0x06}},
		{"dangling object link", []byte{'@', 0x06}},
		{"dangling symbol link", []byte{'[', 0x06, 'I', '"', 0x06, 'a', 0x06, ';', 0x00, '0'}},
		{"negative count", []byte{'[', 0xFA}},
		{"undefined class", []byte{'C', ':', 0x0A, 'G', 'h', 'o', 's', 't', '[', 0x00}},
	}

	for _, tt := range tests {
		if _, err := Unmarshal(rt, tt.data); err == nil {
			t.Errorf("%s: Unmarshal(% x) succeeded, want error", tt.name, tt.data)
		}
	}
}
