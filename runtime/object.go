package runtime

import (
	"math/big"
	"sync"
	"unsafe"
)

// Object represents a heap-allocated runtime value.
//
// Every heap object carries the Kind it was constructed with, its current
// class (which reclassing and per-instance extension may change), a
// kind-specific payload, and an ordered instance-variable table.
type Object struct {
	kind  Kind
	class *Class

	// Payloads. Only the field matching kind is meaningful.
	str      string   // KindString: contents; KindRegexp: pattern source
	encoding string   // KindString/KindRegexp; "" means raw bytes
	elems    []Value  // KindArray
	dict     *Dict    // KindDict
	big      *big.Int // KindBigInt
	classRef *Class   // KindClass/KindModule: the wrapped class

	ivars []IVar
}

// IVar is one named instance variable. The table preserves first-set order.
type IVar struct {
	Name  string
	Value Value
}

// objectRegistry keeps heap objects alive. When an Object pointer is
// NaN-boxed into a Value the pointer becomes an integer Go's GC cannot
// trace, so every object holds a Go-visible reference here.
var objectRegistry = struct {
	sync.Mutex
	live map[*Object]struct{}
}{live: make(map[*Object]struct{})}

func newObject(kind Kind, class *Class) *Object {
	obj := &Object{kind: kind, class: class}
	objectRegistry.Lock()
	objectRegistry.live[obj] = struct{}{}
	objectRegistry.Unlock()
	return obj
}

// Kind returns the object's intrinsic kind, fixed at construction.
func (obj *Object) Kind() Kind {
	return obj.kind
}

// Class returns the object's current class.
func (obj *Object) Class() *Class {
	return obj.class
}

// SetClass changes the object's current class. The intrinsic kind is
// unaffected; this is how subclassing and per-instance extension of
// built-in containers is realized.
func (obj *Object) SetClass(c *Class) {
	obj.class = c
}

// ---------------------------------------------------------------------------
// Payload access
// ---------------------------------------------------------------------------

// StringContent returns the byte contents of a string or the pattern
// source of a regexp.
func (obj *Object) StringContent() string {
	return obj.str
}

// Encoding returns the text encoding name of a string or regexp.
// The empty string means the raw/binary default encoding.
func (obj *Object) Encoding() string {
	return obj.encoding
}

// SetEncoding sets the text encoding name of a string or regexp.
func (obj *Object) SetEncoding(name string) {
	obj.encoding = name
}

// Elems returns the element slice of an array.
func (obj *Object) Elems() []Value {
	return obj.elems
}

// Append appends elements to an array.
func (obj *Object) Append(vs ...Value) {
	obj.elems = append(obj.elems, vs...)
}

// SetElem replaces the element at index i.
// Panics if i is out of range.
func (obj *Object) SetElem(i int, v Value) {
	obj.elems[i] = v
}

// Dict returns the entry table of a dictionary.
func (obj *Object) Dict() *Dict {
	return obj.dict
}

// BigInt returns the arbitrary-precision payload of a large integer.
func (obj *Object) BigInt() *big.Int {
	return obj.big
}

// ClassRef returns the class wrapped by a class or module value, or nil
// for any other kind.
func (obj *Object) ClassRef() *Class {
	return obj.classRef
}

// ---------------------------------------------------------------------------
// Instance variables
// ---------------------------------------------------------------------------

// IVars returns the instance-variable table in first-set order.
// The returned slice is the object's own table; callers must not mutate it.
func (obj *Object) IVars() []IVar {
	return obj.ivars
}

// SetIVar sets an instance variable. A repeated name overwrites in place
// and keeps its original position.
func (obj *Object) SetIVar(name string, v Value) {
	for i := range obj.ivars {
		if obj.ivars[i].Name == name {
			obj.ivars[i].Value = v
			return
		}
	}
	obj.ivars = append(obj.ivars, IVar{Name: name, Value: v})
}

// IVar returns the value of a named instance variable.
func (obj *Object) IVar(name string) (Value, bool) {
	for i := range obj.ivars {
		if obj.ivars[i].Name == name {
			return obj.ivars[i].Value, true
		}
	}
	return Nil, false
}

// ---------------------------------------------------------------------------
// Value conversion
// ---------------------------------------------------------------------------

// ToValue converts an Object pointer to a NaN-boxed Value.
func (obj *Object) ToValue() Value {
	return fromObjectPtr(unsafe.Pointer(obj))
}

// ObjectFromValue extracts an Object pointer from a NaN-boxed Value.
// Returns nil if the value is not a heap object.
func ObjectFromValue(v Value) *Object {
	if !v.IsObject() {
		return nil
	}
	return (*Object)(v.objectPtr())
}
