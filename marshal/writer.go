// Package marshal serializes runtime object graphs to a compact binary
// stream with identity-aware backreferences.
//
// Each distinct object identity is written in full exactly once; every
// later encounter of the same identity (and every repeated symbol name)
// is replaced by a short link token carrying its first-seen emission
// index. Container identities are registered before their children are
// written, so self-referential graphs marshal to finite streams and a
// conforming reader reconstructs the sharing.
package marshal

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"math/big"

	"github.com/chazu/magpack/runtime"
)

// Stream marker bytes.
const (
	tagNil        = '0'
	tagTrue       = 'T'
	tagFalse      = 'F'
	tagInt        = 'i'
	tagFloat      = 'f'
	tagBigInt     = 'l'
	tagString     = '"'
	tagArray      = '['
	tagDict       = '{'
	tagSymbol     = ':'
	tagSymbolLink = ';'
	tagObjectLink = '@'
	tagIVars      = 'I'
	tagUserClass  = 'C'
	tagExtended   = 'e'
)

// Variable-table pseudo-entry names for encoding metadata.
const (
	symEncodingShort = "E"
	symEncodingLong  = "encoding"
)

// Writer serializes values to a byte sink. A Writer owns one link cache
// and one depth counter; it is exclusively owned by the goroutine
// performing the dump and must not be shared.
type Writer struct {
	w     io.Writer
	rt    *runtime.Runtime
	cache linkCache
	depth int
	opts  options
	tmp   [8]byte
}

// NewWriter creates a Writer dumping to w with a fresh link cache.
func NewWriter(w io.Writer, rt *runtime.Runtime, opts ...Option) *Writer {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Writer{w: w, rt: rt, cache: newLinkCache(), opts: o}
}

// Marshal serializes a single value and returns the stream bytes.
func Marshal(rt *runtime.Runtime, v runtime.Value, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	mw := NewWriter(&buf, rt, opts...)
	if err := mw.WriteValue(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteValue writes one value, emitting a link if its identity was
// already written. When the outermost write returns, the sink is flushed
// exactly once if it supports flushing. On error the sink is left
// holding a partial stream; the caller must discard it.
func (mw *Writer) WriteValue(v runtime.Value) error {
	mw.depth++
	err := mw.writeOrLink(v)
	mw.depth--
	if mw.depth == 0 && err == nil {
		err = mw.flushSink()
	}
	return err
}

// RegisterObject pre-seeds the link cache with v's identity, if v is
// eligible. Callers wrapping several top-level values in one cache scope
// use this to share identities across them.
func (mw *Writer) RegisterObject(v runtime.Value) {
	if shouldRegister(v) {
		mw.cache.register(v)
	}
}

// RegisterSymbol pre-seeds the link cache with a symbol name.
func (mw *Writer) RegisterSymbol(name string) {
	mw.cache.registerSymbol(name)
}

func (mw *Writer) writeOrLink(v runtime.Value) error {
	if mw.cache.isRegistered(v) {
		return mw.cache.writeLink(mw, v)
	}
	return mw.writeDirect(v)
}

func (mw *Writer) writeDirect(v runtime.Value) error {
	vars, withEnc, present, err := mw.computeVariables(v)
	if err != nil {
		return err
	}
	if err := mw.writeShapeData(v); err != nil {
		return err
	}
	if present {
		return mw.writeVariableTable(runtime.ObjectFromValue(v), vars, withEnc)
	}
	return nil
}

// computeVariables decides whether v gets an instance-variable table and
// emits the markers that precede the shape data: the table marker, one
// extension marker per module the instance was extended with, and the
// user-class marker for true subclasses of built-in containers.
func (mw *Writer) computeVariables(v runtime.Value) (vars []runtime.IVar, withEnc, present bool, err error) {
	kind := v.Kind()
	if kind == runtime.KindObject || kind == runtime.KindBasicObject || kind == runtime.KindForeign {
		return nil, false, false, nil
	}
	obj := runtime.ObjectFromValue(v)
	if obj == nil {
		// Immediates carry no encoding, variables, or class chain.
		return nil, false, false, nil
	}

	withEnc = mw.wantsEncodingTag(kind, obj)
	hasVars := len(obj.IVars()) > 0 &&
		kind != runtime.KindClass && kind != runtime.KindModule
	if withEnc || hasVars {
		vars = obj.IVars()
		present = true
		if err := mw.writeByte(tagIVars); err != nil {
			return nil, false, false, err
		}
	}

	class := obj.Class()
	switch kind {
	case runtime.KindString, runtime.KindRegexp, runtime.KindArray, runtime.KindDict:
		class, err = mw.resolveExtended(class)
		if err != nil {
			return nil, false, false, err
		}
	}

	if intrinsic := mw.rt.ClassForKind(kind); intrinsic != nil && kind != runtime.KindStruct {
		if real := class.RealClass(); real != intrinsic {
			if err := mw.writeUserClass(real); err != nil {
				return nil, false, false, err
			}
		}
	}
	return vars, withEnc, present, nil
}

func (mw *Writer) wantsEncodingTag(kind runtime.Kind, obj *runtime.Object) bool {
	if kind != runtime.KindString && kind != runtime.KindRegexp {
		return false
	}
	switch mw.opts.encodingTags {
	case EncodingTagsNever:
		return false
	case EncodingTagsAlways:
		return true
	default:
		return obj.Encoding() != ""
	}
}

// resolveExtended walks the value's class chain down to its concrete
// class. A stateless singleton is skipped; a stateful one cannot be
// dumped. Each included-module wrapper emits an extension marker plus
// the module's name, innermost module first.
func (mw *Writer) resolveExtended(class *runtime.Class) (*runtime.Class, error) {
	if class.IsSingleton() {
		if class.HasMethods() || class.HasVariables() {
			return nil, &StatefulSingletonError{Class: class.RealClass().Path()}
		}
		class = class.Superclass
	}
	for class.IsIncluded() {
		if err := mw.writeByte(tagExtended); err != nil {
			return nil, err
		}
		path, err := mw.pathFor(class.Mixin())
		if err != nil {
			return nil, err
		}
		if err := mw.writeSymbol(path); err != nil {
			return nil, err
		}
		class = class.Superclass
	}
	return class, nil
}

func (mw *Writer) writeUserClass(class *runtime.Class) error {
	if err := mw.writeByte(tagUserClass); err != nil {
		return err
	}
	path, err := mw.pathFor(class)
	if err != nil {
		return err
	}
	return mw.writeSymbol(path)
}

// pathFor returns the fully qualified name of a class, refusing
// anonymous classes and names that no longer resolve to the same class.
func (mw *Writer) pathFor(class *runtime.Class) (string, error) {
	path := class.Path()
	if class.IsAnonymous() {
		return "", &AnonymousTypeError{Path: path, Module: class.IsModule()}
	}
	real := class
	if !class.IsModule() {
		real = class.RealClass()
	}
	if got, ok := mw.rt.Classes.FromPath(path); !ok || got != real {
		return "", &UnresolvableTypeError{Path: path}
	}
	return path, nil
}

// writeShapeData dispatches on the value's shape. Strings, arrays, and
// dictionaries register their identity before any children are written,
// which is what lets cyclic graphs terminate.
func (mw *Writer) writeShapeData(v runtime.Value) error {
	if obj := runtime.ObjectFromValue(v); obj != nil && obj.Class() != nil {
		if real := obj.Class().RealClass(); real != nil && real.Data {
			return &UnsupportedShapeError{Shape: classify(v), Class: real.Path()}
		}
	}

	shape := classify(v)
	switch shape {
	case ShapeNil:
		return mw.writeByte(tagNil)

	case ShapeTrue:
		return mw.writeByte(tagTrue)

	case ShapeFalse:
		return mw.writeByte(tagFalse)

	case ShapeInt:
		n := v.SmallInt()
		if n < math.MinInt32 || n > math.MaxInt32 {
			// Too wide for the stream's integer form.
			return mw.writeBig(big.NewInt(n))
		}
		if err := mw.writeByte(tagInt); err != nil {
			return err
		}
		return mw.writeInt(int32(n))

	case ShapeFloat:
		if err := mw.writeByte(tagFloat); err != nil {
			return err
		}
		binary.BigEndian.PutUint64(mw.tmp[:8], math.Float64bits(v.Float64()))
		return mw.write(mw.tmp[:8])

	case ShapeBigInt:
		return mw.writeBig(runtime.ObjectFromValue(v).BigInt())

	case ShapeString:
		mw.RegisterObject(v)
		if err := mw.writeByte(tagString); err != nil {
			return err
		}
		return mw.writeBytesWithLen(runtime.ObjectFromValue(v).StringContent())

	case ShapeArray:
		mw.RegisterObject(v)
		elems := runtime.ObjectFromValue(v).Elems()
		if err := mw.writeByte(tagArray); err != nil {
			return err
		}
		if err := mw.writeInt(int32(len(elems))); err != nil {
			return err
		}
		for _, e := range elems {
			if err := mw.WriteValue(e); err != nil {
				return err
			}
		}
		return nil

	case ShapeDict:
		mw.RegisterObject(v)
		dict := runtime.ObjectFromValue(v).Dict()
		if err := mw.writeByte(tagDict); err != nil {
			return err
		}
		if err := mw.writeInt(int32(dict.Len())); err != nil {
			return err
		}
		for _, entry := range dict.Entries() {
			if err := mw.WriteValue(entry.Key); err != nil {
				return err
			}
			if err := mw.WriteValue(entry.Value); err != nil {
				return err
			}
		}
		return nil

	case ShapeRegexp, ShapeSymbol, ShapeObject, ShapeStruct, ShapeClass, ShapeModule:
		return &UnsupportedShapeError{Shape: shape, Class: mw.classNameOf(v)}

	default:
		return &UnrecognizedTypeError{Class: mw.classNameOf(v)}
	}
}

func (mw *Writer) writeBig(n *big.Int) error {
	if err := mw.writeByte(tagBigInt); err != nil {
		return err
	}
	sign := byte('+')
	if n.Sign() < 0 {
		sign = '-'
	}
	if err := mw.writeByte(sign); err != nil {
		return err
	}
	// Magnitude in little-endian order.
	mag := n.Bytes()
	for i, j := 0, len(mag)-1; i < j; i, j = i+1, j-1 {
		mag[i], mag[j] = mag[j], mag[i]
	}
	if err := mw.writeInt(int32(len(mag))); err != nil {
		return err
	}
	return mw.write(mag)
}

func (mw *Writer) writeVariableTable(obj *runtime.Object, vars []runtime.IVar, withEnc bool) error {
	if withEnc {
		if err := mw.writeInt(int32(len(vars)) + 1); err != nil {
			return err
		}
		if err := mw.writeEncodingEntry(obj.Encoding()); err != nil {
			return err
		}
	} else {
		if err := mw.writeInt(int32(len(vars))); err != nil {
			return err
		}
	}
	for _, iv := range vars {
		if err := mw.writeSymbol(iv.Name); err != nil {
			return err
		}
		if err := mw.WriteValue(iv.Value); err != nil {
			return err
		}
	}
	return nil
}

// writeEncodingEntry writes the encoding pseudo-entry: the short symbol
// with a bare boolean for the two common encodings, or the long symbol
// with a quoted charset name for anything else.
func (mw *Writer) writeEncodingEntry(name string) error {
	switch name {
	case "", "US-ASCII":
		if err := mw.writeSymbol(symEncodingShort); err != nil {
			return err
		}
		return mw.writeByte(tagFalse)
	case "UTF-8":
		if err := mw.writeSymbol(symEncodingShort); err != nil {
			return err
		}
		return mw.writeByte(tagTrue)
	default:
		if err := mw.writeSymbol(symEncodingLong); err != nil {
			return err
		}
		if err := mw.writeByte(tagString); err != nil {
			return err
		}
		return mw.writeBytesWithLen(name)
	}
}

// writeSymbol writes a symbol name, as a link when it was seen before.
func (mw *Writer) writeSymbol(name string) error {
	if mw.cache.isSymbolRegistered(name) {
		return mw.cache.writeSymbolLink(mw, name)
	}
	mw.cache.registerSymbol(name)
	if err := mw.writeByte(tagSymbol); err != nil {
		return err
	}
	return mw.writeBytesWithLen(name)
}

func (mw *Writer) classNameOf(v runtime.Value) string {
	if obj := runtime.ObjectFromValue(v); obj != nil && obj.ClassRef() != nil {
		return obj.ClassRef().Path()
	}
	if obj := runtime.ObjectFromValue(v); obj != nil && obj.Class() != nil {
		if real := obj.Class().RealClass(); real != nil {
			return real.Path()
		}
	}
	if c := mw.rt.ClassForKind(v.Kind()); c != nil {
		return c.Path()
	}
	return v.Kind().String()
}

// ---------------------------------------------------------------------------
// Sink plumbing
// ---------------------------------------------------------------------------

func (mw *Writer) writeBytesWithLen(s string) error {
	if err := mw.writeInt(int32(len(s))); err != nil {
		return err
	}
	return mw.write([]byte(s))
}

func (mw *Writer) writeInt(v int32) error {
	return mw.write(AppendInt(mw.tmp[:0], v))
}

func (mw *Writer) writeByte(b byte) error {
	mw.tmp[0] = b
	return mw.write(mw.tmp[:1])
}

func (mw *Writer) write(p []byte) error {
	_, err := mw.w.Write(p)
	return err
}

func (mw *Writer) flushSink() error {
	if f, ok := mw.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
