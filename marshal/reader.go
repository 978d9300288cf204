package marshal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/chazu/magpack/runtime"
)

var (
	// ErrShortData reports a stream that ends mid-value.
	ErrShortData = errors.New("marshal: unexpected end of stream")
)

// Reader reconstructs a value graph from a marshal stream.
//
// It keeps its own emission-order tables for objects and symbols,
// mirroring the writer's link cache, so link tokens resolve to shared
// values rather than copies. Like the Writer it is exclusively owned by
// one goroutine.
type Reader struct {
	rt   *runtime.Runtime
	data []byte
	pos  int

	objects []runtime.Value
	symbols []string
}

// NewReader creates a Reader over data.
func NewReader(rt *runtime.Runtime, data []byte) *Reader {
	return &Reader{rt: rt, data: data}
}

// Unmarshal reads a single value graph from data. Classes named by the
// stream must already exist in the runtime's registry.
func Unmarshal(rt *runtime.Runtime, data []byte) (runtime.Value, error) {
	r := NewReader(rt, data)
	v, err := r.ReadValue()
	if err != nil {
		return runtime.Nil, err
	}
	return v, nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadValue reads one value, resolving links to previously read values.
func (r *Reader) ReadValue() (runtime.Value, error) {
	tag, err := r.readByte()
	if err != nil {
		return runtime.Nil, err
	}

	switch tag {
	case tagNil:
		return runtime.Nil, nil

	case tagTrue:
		return runtime.True, nil

	case tagFalse:
		return runtime.False, nil

	case tagInt:
		n, err := r.readInt()
		if err != nil {
			return runtime.Nil, err
		}
		return runtime.FromSmallInt(int64(n)), nil

	case tagFloat:
		b, err := r.readBytes(8)
		if err != nil {
			return runtime.Nil, err
		}
		return runtime.FromFloat64(math.Float64frombits(binary.BigEndian.Uint64(b))), nil

	case tagBigInt:
		return r.readBig()

	case tagString:
		s, err := r.readLenBytes()
		if err != nil {
			return runtime.Nil, err
		}
		v := r.rt.NewString(string(s))
		r.objects = append(r.objects, v)
		return v, nil

	case tagArray:
		n, err := r.readCount()
		if err != nil {
			return runtime.Nil, err
		}
		v := r.rt.NewArray()
		r.objects = append(r.objects, v)
		obj := runtime.ObjectFromValue(v)
		for i := 0; i < n; i++ {
			e, err := r.ReadValue()
			if err != nil {
				return runtime.Nil, err
			}
			obj.Append(e)
		}
		return v, nil

	case tagDict:
		n, err := r.readCount()
		if err != nil {
			return runtime.Nil, err
		}
		v := r.rt.NewDictValue()
		r.objects = append(r.objects, v)
		dict := runtime.ObjectFromValue(v).Dict()
		for i := 0; i < n; i++ {
			key, err := r.ReadValue()
			if err != nil {
				return runtime.Nil, err
			}
			val, err := r.ReadValue()
			if err != nil {
				return runtime.Nil, err
			}
			dict.Set(key, val)
		}
		return v, nil

	case tagObjectLink:
		idx, err := r.readInt()
		if err != nil {
			return runtime.Nil, err
		}
		if idx < 0 || int(idx) >= len(r.objects) {
			return runtime.Nil, fmt.Errorf("marshal: link to object %d, only %d emitted", idx, len(r.objects))
		}
		return r.objects[idx], nil

	case tagIVars:
		return r.readWithVariables()

	case tagUserClass:
		return r.readUserClass()

	case tagExtended:
		return r.readExtended()

	default:
		return runtime.Nil, fmt.Errorf("marshal: unknown tag %q at offset %d", tag, r.pos-1)
	}
}

// readWithVariables reads the value following an instance-variable-table
// marker and applies the table to it. Encoding pseudo-entries set the
// value's text encoding instead of a variable.
func (r *Reader) readWithVariables() (runtime.Value, error) {
	v, err := r.ReadValue()
	if err != nil {
		return runtime.Nil, err
	}
	obj := runtime.ObjectFromValue(v)
	if obj == nil {
		return runtime.Nil, fmt.Errorf("marshal: variable table attached to %s value", v.Kind())
	}

	count, err := r.readCount()
	if err != nil {
		return runtime.Nil, err
	}
	for i := 0; i < count; i++ {
		name, err := r.readSymbol()
		if err != nil {
			return runtime.Nil, err
		}
		switch name {
		case symEncodingShort:
			b, err := r.ReadValue()
			if err != nil {
				return runtime.Nil, err
			}
			if b == runtime.True {
				obj.SetEncoding("UTF-8")
			} else {
				obj.SetEncoding("US-ASCII")
			}
		case symEncodingLong:
			// The charset name is a quoted raw string, never a link
			// target; it bypasses the object table.
			tag, err := r.readByte()
			if err != nil {
				return runtime.Nil, err
			}
			if tag != tagString {
				return runtime.Nil, fmt.Errorf("marshal: malformed encoding entry (tag %q)", tag)
			}
			charset, err := r.readLenBytes()
			if err != nil {
				return runtime.Nil, err
			}
			obj.SetEncoding(string(charset))
		default:
			val, err := r.ReadValue()
			if err != nil {
				return runtime.Nil, err
			}
			obj.SetIVar(name, val)
		}
	}
	return v, nil
}

func (r *Reader) readUserClass() (runtime.Value, error) {
	path, err := r.readSymbol()
	if err != nil {
		return runtime.Nil, err
	}
	class, ok := r.rt.Classes.FromPath(path)
	if !ok {
		return runtime.Nil, fmt.Errorf("marshal: stream names undefined class %s", path)
	}
	if class.IsModule() {
		return runtime.Nil, fmt.Errorf("marshal: %s is a module, not a class", path)
	}
	v, err := r.ReadValue()
	if err != nil {
		return runtime.Nil, err
	}
	obj := runtime.ObjectFromValue(v)
	if obj == nil {
		return runtime.Nil, fmt.Errorf("marshal: subclass marker attached to %s value", v.Kind())
	}
	obj.SetClass(class)
	return v, nil
}

func (r *Reader) readExtended() (runtime.Value, error) {
	path, err := r.readSymbol()
	if err != nil {
		return runtime.Nil, err
	}
	mod, ok := r.rt.Classes.FromPath(path)
	if !ok {
		return runtime.Nil, fmt.Errorf("marshal: stream names undefined module %s", path)
	}
	if !mod.IsModule() {
		return runtime.Nil, fmt.Errorf("marshal: %s is not a module", path)
	}
	v, err := r.ReadValue()
	if err != nil {
		return runtime.Nil, err
	}
	obj := runtime.ObjectFromValue(v)
	if obj == nil {
		return runtime.Nil, fmt.Errorf("marshal: extension marker attached to %s value", v.Kind())
	}
	// Nested markers apply innermost-first, so wrapping here rebuilds the
	// original extension order.
	obj.SetClass(obj.Class().Extended(mod))
	return v, nil
}

func (r *Reader) readSymbol() (string, error) {
	tag, err := r.readByte()
	if err != nil {
		return "", err
	}
	switch tag {
	case tagSymbol:
		b, err := r.readLenBytes()
		if err != nil {
			return "", err
		}
		name := string(b)
		r.symbols = append(r.symbols, name)
		return name, nil
	case tagSymbolLink:
		idx, err := r.readInt()
		if err != nil {
			return "", err
		}
		if idx < 0 || int(idx) >= len(r.symbols) {
			return "", fmt.Errorf("marshal: link to symbol %d, only %d emitted", idx, len(r.symbols))
		}
		return r.symbols[idx], nil
	default:
		return "", fmt.Errorf("marshal: expected symbol, found tag %q", tag)
	}
}

func (r *Reader) readBig() (runtime.Value, error) {
	sign, err := r.readByte()
	if err != nil {
		return runtime.Nil, err
	}
	if sign != '+' && sign != '-' {
		return runtime.Nil, fmt.Errorf("marshal: malformed big integer sign %q", sign)
	}
	mag, err := r.readLenBytes()
	if err != nil {
		return runtime.Nil, err
	}
	// Magnitude arrives little-endian.
	be := make([]byte, len(mag))
	for i, b := range mag {
		be[len(mag)-1-i] = b
	}
	n := new(big.Int).SetBytes(be)
	if sign == '-' {
		n.Neg(n)
	}
	// The writer routes wide small ints through the big form; narrow them
	// back so repeated round trips stay stable.
	if n.IsInt64() {
		if v, ok := runtime.TryFromSmallInt(n.Int64()); ok {
			return v, nil
		}
	}
	return r.rt.NewBigInt(n), nil
}

// ---------------------------------------------------------------------------
// Byte plumbing
// ---------------------------------------------------------------------------

func (r *Reader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrShortData
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) readBytes(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, ErrShortData
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) readInt() (int32, error) {
	v, n, err := DecodeInt(r.data[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// readCount reads a non-negative length field.
func (r *Reader) readCount() (int, error) {
	n, err := r.readInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("marshal: negative length %d", n)
	}
	return int(n), nil
}

func (r *Reader) readLenBytes() ([]byte, error) {
	n, err := r.readCount()
	if err != nil {
		return nil, err
	}
	return r.readBytes(n)
}
