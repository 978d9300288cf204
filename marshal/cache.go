package marshal

import "github.com/chazu/magpack/runtime"

// linkCache tracks which object identities and which symbol names have
// already been written to the stream, so later encounters emit a short
// link instead of a second copy.
//
// Object identity is the NaN-boxed Value itself: heap objects compare by
// pointer, immediates by bits. Objects and symbols index into disjoint
// namespaces, each 0-based in first-written order. The cache lives for
// one Writer and is never reset in place.
type linkCache struct {
	objects map[runtime.Value]int
	symbols map[string]int
}

func newLinkCache() linkCache {
	return linkCache{
		objects: make(map[runtime.Value]int),
		symbols: make(map[string]int),
	}
}

// Registration bounds for small integers. An integer whose encoding fits
// in a single byte is an immutable immediate not worth a link slot; it is
// never registered no matter how often it repeats.
const (
	MinCachedInt = -123
	MaxCachedInt = 122
)

// shouldRegister reports whether v is eligible for a link slot.
// Nil, booleans, and single-byte integers are exempt.
func shouldRegister(v runtime.Value) bool {
	if v.IsNil() || v.IsBool() {
		return false
	}
	if v.IsSmallInt() {
		n := v.SmallInt()
		return n < MinCachedInt || n > MaxCachedInt
	}
	return true
}

func (c *linkCache) isRegistered(v runtime.Value) bool {
	_, ok := c.objects[v]
	return ok
}

func (c *linkCache) register(v runtime.Value) {
	if _, ok := c.objects[v]; ok {
		return
	}
	c.objects[v] = len(c.objects)
}

func (c *linkCache) isSymbolRegistered(name string) bool {
	_, ok := c.symbols[name]
	return ok
}

func (c *linkCache) registerSymbol(name string) {
	if _, ok := c.symbols[name]; ok {
		return
	}
	c.symbols[name] = len(c.symbols)
}

func (c *linkCache) writeLink(mw *Writer, v runtime.Value) error {
	if err := mw.writeByte(tagObjectLink); err != nil {
		return err
	}
	return mw.writeInt(int32(c.objects[v]))
}

func (c *linkCache) writeSymbolLink(mw *Writer, name string) error {
	if err := mw.writeByte(tagSymbolLink); err != nil {
		return err
	}
	return mw.writeInt(int32(c.symbols[name]))
}
