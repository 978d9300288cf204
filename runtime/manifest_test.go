package runtime

import (
	"bytes"
	"reflect"
	"testing"
)

func TestManifestRoundTrip(t *testing.T) {
	defs := []ClassDef{
		{Path: "App.Trait", Module: true},
		{Path: "App.Base", InstVars: []string{"id"}},
		{Path: "App.Widget", Superclass: "App.Base", InstVars: []string{"label", "size"}, Mixins: []string{"App.Trait"}},
		{Path: "App.Native", Data: true},
	}

	data, err := EncodeManifest(defs)
	if err != nil {
		t.Fatalf("EncodeManifest: %v", err)
	}

	got, err := DecodeManifest(data)
	if err != nil {
		t.Fatalf("DecodeManifest: %v", err)
	}
	if !reflect.DeepEqual(got, defs) {
		t.Errorf("roundtrip mismatch:\ngot  %+v\nwant %+v", got, defs)
	}

	// Canonical mode: encoding twice yields identical bytes.
	again, err := EncodeManifest(defs)
	if err != nil {
		t.Fatalf("EncodeManifest: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("canonical encoding should be deterministic")
	}
}

func TestDecodeManifestBad(t *testing.T) {
	if _, err := DecodeManifest([]byte{0xff}); err == nil {
		t.Error("expected error for malformed manifest")
	}
}

func TestBuildClasses(t *testing.T) {
	rt := NewRuntime()

	err := rt.BuildClasses([]ClassDef{
		{Path: "Mix.A", Module: true},
		{Path: "Mix.B", Module: true},
		{Path: "Shape", InstVars: []string{"origin"}},
		{Path: "Circle", Superclass: "Shape", Mixins: []string{"Mix.A", "Mix.B"}},
	})
	if err != nil {
		t.Fatalf("BuildClasses: %v", err)
	}

	shape, ok := rt.Classes.FromPath("Shape")
	if !ok {
		t.Fatal("Shape not registered")
	}
	if shape.Superclass != rt.ObjectClass {
		t.Error("default superclass should be Object")
	}
	if !reflect.DeepEqual(shape.InstVars, []string{"origin"}) {
		t.Errorf("Shape.InstVars = %v", shape.InstVars)
	}

	circle, ok := rt.Classes.FromPath("Circle")
	if !ok {
		t.Fatal("Circle not registered")
	}
	// First mixin sits nearest the class.
	chain := circle.Superclass
	if !chain.IsIncluded() || chain.Mixin().Path() != "Mix.A" {
		t.Errorf("nearest mixin = %v, want Mix.A", chain)
	}
	if !chain.Superclass.IsIncluded() || chain.Superclass.Mixin().Path() != "Mix.B" {
		t.Error("second mixin should be Mix.B")
	}
	if chain.Superclass.Superclass != shape {
		t.Error("mixin chain should bottom out at Shape")
	}
	if circle.RealClass() != circle {
		t.Error("Circle itself is concrete")
	}
}

func TestBuildClassesErrors(t *testing.T) {
	tests := []struct {
		name string
		defs []ClassDef
	}{
		{"empty path", []ClassDef{{}}},
		{"duplicate", []ClassDef{{Path: "Dup"}, {Path: "Dup"}}},
		{"redefines builtin", []ClassDef{{Path: "String"}}},
		{"module with superclass", []ClassDef{{Path: "M", Module: true, Superclass: "Object"}}},
		{"unknown superclass", []ClassDef{{Path: "C", Superclass: "Nope"}}},
		{"module as superclass", []ClassDef{
			{Path: "M", Module: true},
			{Path: "C", Superclass: "M"},
		}},
		{"unknown mixin", []ClassDef{{Path: "C", Mixins: []string{"Nope"}}}},
		{"class as mixin", []ClassDef{
			{Path: "K"},
			{Path: "C", Mixins: []string{"K"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRuntime()
			if err := rt.BuildClasses(tt.defs); err == nil {
				t.Error("expected error")
			}
		})
	}
}
