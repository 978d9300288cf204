// Package runtime implements the magpack value model: NaN-boxed values,
// heap objects with classes and instance variables, interned symbols, and
// a class registry.
package runtime

import "math/big"

// Runtime owns the symbol table, the class registry, and the built-in
// classes. Values constructed through one Runtime must not be mixed with
// another Runtime's classes.
type Runtime struct {
	Symbols *SymbolTable
	Classes *Registry

	ObjectClass      *Class
	BasicObjectClass *Class
	StringClass      *Class
	ArrayClass       *Class
	DictionaryClass  *Class
	IntegerClass     *Class
	LargeIntClass    *Class
	FloatClass       *Class
	RegexpClass      *Class
	SymbolClass      *Class
}

// NewRuntime creates a runtime with the built-in classes installed.
func NewRuntime() *Runtime {
	rt := &Runtime{
		Symbols: NewSymbolTable(),
		Classes: NewRegistry(),
	}

	rt.BasicObjectClass = NewClass("", "BasicObject", nil)
	rt.ObjectClass = NewClass("", "Object", rt.BasicObjectClass)
	rt.StringClass = NewClass("", "String", rt.ObjectClass)
	rt.ArrayClass = NewClass("", "Array", rt.ObjectClass)
	rt.DictionaryClass = NewClass("", "Dictionary", rt.ObjectClass)
	rt.IntegerClass = NewClass("", "Integer", rt.ObjectClass)
	rt.LargeIntClass = NewClass("", "LargeInteger", rt.IntegerClass)
	rt.FloatClass = NewClass("", "Float", rt.ObjectClass)
	rt.RegexpClass = NewClass("", "Regexp", rt.ObjectClass)
	rt.SymbolClass = NewClass("", "Symbol", rt.ObjectClass)

	for _, c := range []*Class{
		rt.BasicObjectClass, rt.ObjectClass, rt.StringClass, rt.ArrayClass,
		rt.DictionaryClass, rt.IntegerClass, rt.LargeIntClass,
		rt.FloatClass, rt.RegexpClass, rt.SymbolClass,
	} {
		rt.Classes.Register(c)
	}
	return rt
}

// ClassForKind returns the built-in class backing an intrinsic kind, or
// nil when the kind has no dedicated class.
func (rt *Runtime) ClassForKind(k Kind) *Class {
	switch k {
	case KindString:
		return rt.StringClass
	case KindArray:
		return rt.ArrayClass
	case KindDict:
		return rt.DictionaryClass
	case KindSmallInt:
		return rt.IntegerClass
	case KindBigInt:
		return rt.LargeIntClass
	case KindFloat:
		return rt.FloatClass
	case KindRegexp:
		return rt.RegexpClass
	case KindSymbol:
		return rt.SymbolClass
	case KindObject:
		return rt.ObjectClass
	case KindBasicObject:
		return rt.BasicObjectClass
	default:
		return nil
	}
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewString creates a string value in the raw/binary default encoding.
func (rt *Runtime) NewString(s string) Value {
	obj := newObject(KindString, rt.StringClass)
	obj.str = s
	return obj.ToValue()
}

// NewStringEncoded creates a string value tagged with a text encoding
// name such as "UTF-8" or "US-ASCII".
func (rt *Runtime) NewStringEncoded(s, encoding string) Value {
	obj := newObject(KindString, rt.StringClass)
	obj.str = s
	obj.encoding = encoding
	return obj.ToValue()
}

// NewArray creates an array value holding the given elements.
func (rt *Runtime) NewArray(elems ...Value) Value {
	obj := newObject(KindArray, rt.ArrayClass)
	obj.elems = append([]Value(nil), elems...)
	return obj.ToValue()
}

// NewDictValue creates an empty dictionary value.
func (rt *Runtime) NewDictValue() Value {
	obj := newObject(KindDict, rt.DictionaryClass)
	obj.dict = NewDict()
	return obj.ToValue()
}

// NewBigInt creates an arbitrary-precision integer value. The argument
// is copied.
func (rt *Runtime) NewBigInt(n *big.Int) Value {
	obj := newObject(KindBigInt, rt.LargeIntClass)
	obj.big = new(big.Int).Set(n)
	return obj.ToValue()
}

// NewRegexp creates a regexp value from a pattern source.
func (rt *Runtime) NewRegexp(source, encoding string) Value {
	obj := newObject(KindRegexp, rt.RegexpClass)
	obj.str = source
	obj.encoding = encoding
	return obj.ToValue()
}

// NewInstance creates a plain instance of class.
func (rt *Runtime) NewInstance(class *Class) Value {
	return newObject(KindObject, class).ToValue()
}

// NewStruct creates a struct-kinded instance of class.
func (rt *Runtime) NewStruct(class *Class) Value {
	return newObject(KindStruct, class).ToValue()
}

// NewForeign creates an opaque host-data value of class. Foreign values
// have no portable representation.
func (rt *Runtime) NewForeign(class *Class) Value {
	return newObject(KindForeign, class).ToValue()
}

// ClassValue wraps a class or module as a first-class value.
func (rt *Runtime) ClassValue(c *Class) Value {
	kind := KindClass
	if c.IsModule() {
		kind = KindModule
	}
	obj := newObject(kind, rt.ObjectClass)
	obj.classRef = c
	return obj.ToValue()
}

// Symbol interns name and returns it as a symbol value.
func (rt *Runtime) Symbol(name string) Value {
	return rt.Symbols.SymbolValue(name)
}

// Int creates an integer value, falling back to an arbitrary-precision
// integer when n is outside the small-int range.
func (rt *Runtime) Int(n int64) Value {
	if v, ok := TryFromSmallInt(n); ok {
		return v
	}
	return rt.NewBigInt(big.NewInt(n))
}
