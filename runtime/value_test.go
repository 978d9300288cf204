package runtime

import (
	"math"
	"testing"
)

func TestFloatRoundTrip(t *testing.T) {
	tests := []float64{
		0.0,
		-0.0,
		1.0,
		-1.0,
		3.14159265358979,
		math.MaxFloat64,
		math.SmallestNonzeroFloat64,
		math.Inf(1),
		math.Inf(-1),
	}

	for _, f := range tests {
		v := FromFloat64(f)
		if !v.IsFloat() {
			t.Errorf("FromFloat64(%v).IsFloat() = false, want true", f)
			continue
		}
		if got := v.Float64(); got != f {
			t.Errorf("FromFloat64(%v).Float64() = %v", f, got)
		}
	}
}

func TestFloatNaN(t *testing.T) {
	// A real NaN must stay a float, not collide with tagged values.
	v := FromFloat64(math.NaN())
	if !v.IsFloat() {
		t.Error("NaN should be treated as float")
	}
	if !math.IsNaN(v.Float64()) {
		t.Error("NaN roundtrip failed")
	}
}

func TestSmallIntRoundTrip(t *testing.T) {
	tests := []int64{
		0, 1, -1, 42, -42,
		MaxSmallInt, MinSmallInt,
		MaxSmallInt - 1, MinSmallInt + 1,
	}

	for _, n := range tests {
		v := FromSmallInt(n)
		if !v.IsSmallInt() {
			t.Errorf("FromSmallInt(%d).IsSmallInt() = false", n)
			continue
		}
		if got := v.SmallInt(); got != n {
			t.Errorf("FromSmallInt(%d).SmallInt() = %d", n, got)
		}
	}
}

func TestSmallIntRange(t *testing.T) {
	if _, ok := TryFromSmallInt(MaxSmallInt + 1); ok {
		t.Error("TryFromSmallInt(MaxSmallInt+1) succeeded")
	}
	if _, ok := TryFromSmallInt(MinSmallInt - 1); ok {
		t.Error("TryFromSmallInt(MinSmallInt-1) succeeded")
	}
}

func TestSpecialValues(t *testing.T) {
	if Nil == True || Nil == False || True == False {
		t.Error("special values must be distinct")
	}
	if !Nil.IsNil() || !Nil.IsSpecial() {
		t.Error("Nil type checks failed")
	}
	if !True.IsBool() || !False.IsBool() || Nil.IsBool() {
		t.Error("IsBool checks failed")
	}
	if !True.Bool() || False.Bool() {
		t.Error("Bool conversions failed")
	}
	if FromBool(true) != True || FromBool(false) != False {
		t.Error("FromBool failed")
	}
}

func TestSymbolValues(t *testing.T) {
	v := FromSymbolID(7)
	if !v.IsSymbol() {
		t.Error("IsSymbol = false")
	}
	if v.SymbolID() != 7 {
		t.Errorf("SymbolID = %d, want 7", v.SymbolID())
	}
	if v.IsFloat() || v.IsSmallInt() || v.IsObject() {
		t.Error("symbol misclassified")
	}
}

func TestObjectRoundTrip(t *testing.T) {
	rt := NewRuntime()
	v := rt.NewString("boxed")
	if !v.IsObject() {
		t.Fatal("IsObject = false")
	}
	obj := ObjectFromValue(v)
	if obj == nil || obj.StringContent() != "boxed" {
		t.Fatal("object payload lost through boxing")
	}
	if obj.ToValue() != v {
		t.Error("ToValue not stable")
	}
	if ObjectFromValue(Nil) != nil {
		t.Error("ObjectFromValue(Nil) should be nil")
	}
}

func TestValueKind(t *testing.T) {
	rt := NewRuntime()

	tests := []struct {
		name string
		v    Value
		want Kind
	}{
		{"nil", Nil, KindNil},
		{"true", True, KindTrue},
		{"false", False, KindFalse},
		{"int", FromSmallInt(12), KindSmallInt},
		{"float", FromFloat64(0.5), KindFloat},
		{"symbol", rt.Symbol("k"), KindSymbol},
		{"string", rt.NewString("s"), KindString},
		{"array", rt.NewArray(), KindArray},
		{"dict", rt.NewDictValue(), KindDict},
		{"regexp", rt.NewRegexp("x", ""), KindRegexp},
	}

	for _, tt := range tests {
		if got := tt.v.Kind(); got != tt.want {
			t.Errorf("%s: Kind = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestKindSurvivesReclass(t *testing.T) {
	rt := NewRuntime()
	sub := NewClass("", "Tuple", rt.ArrayClass)

	v := rt.NewArray()
	obj := ObjectFromValue(v)
	obj.SetClass(sub)

	if v.Kind() != KindArray {
		t.Errorf("Kind after reclass = %v, want array", v.Kind())
	}
	if obj.Class() != sub {
		t.Error("Class after reclass lost")
	}
}
