package runtime

// Kind is the intrinsic type tag assigned to a value at construction.
//
// Reclassing a heap object to a user subclass does not change its kind;
// a subclass of Array still answers KindArray. Dispatch that must respect
// the built-in representation (marshaling, primitives) switches on Kind,
// not on the value's current class.
type Kind int

const (
	KindNil Kind = iota
	KindTrue
	KindFalse
	KindSmallInt
	KindBigInt
	KindFloat
	KindString
	KindArray
	KindDict
	KindRegexp
	KindSymbol
	KindObject
	KindBasicObject
	KindStruct
	KindClass
	KindModule
	KindForeign // opaque host data (FFI handles etc.), no portable form
)

var kindNames = [...]string{
	KindNil:         "nil",
	KindTrue:        "true",
	KindFalse:       "false",
	KindSmallInt:    "integer",
	KindBigInt:      "large integer",
	KindFloat:       "float",
	KindString:      "string",
	KindArray:       "array",
	KindDict:        "dictionary",
	KindRegexp:      "regexp",
	KindSymbol:      "symbol",
	KindObject:      "object",
	KindBasicObject: "basic object",
	KindStruct:      "struct",
	KindClass:       "class",
	KindModule:      "module",
	KindForeign:     "foreign",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}
