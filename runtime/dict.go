package runtime

// Dict is an insertion-ordered dictionary of runtime values.
//
// Keys are compared the way Value equality works: immediates (small ints,
// floats, booleans, nil, symbols) by value, heap objects by identity. Two
// distinct string objects with equal contents are therefore distinct keys.
type Dict struct {
	entries []DictEntry
	index   map[Value]int
}

// DictEntry is one key/value pair.
type DictEntry struct {
	Key   Value
	Value Value
}

// NewDict creates an empty dictionary.
func NewDict() *Dict {
	return &Dict{index: make(map[Value]int)}
}

// Set adds or replaces an entry. A replaced key keeps its original
// insertion position.
func (d *Dict) Set(key, value Value) {
	if i, ok := d.index[key]; ok {
		d.entries[i].Value = value
		return
	}
	d.index[key] = len(d.entries)
	d.entries = append(d.entries, DictEntry{Key: key, Value: value})
}

// Get returns the value stored for key.
func (d *Dict) Get(key Value) (Value, bool) {
	if i, ok := d.index[key]; ok {
		return d.entries[i].Value, true
	}
	return Nil, false
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return len(d.entries)
}

// Entries returns the entry table in insertion order.
// The returned slice is the dictionary's own table; callers must not
// mutate it.
func (d *Dict) Entries() []DictEntry {
	return d.entries
}
