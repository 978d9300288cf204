package marshal

import "github.com/chazu/magpack/runtime"

// Shape is the closed classification of a value that selects its stream
// encoding. Classification follows the value's intrinsic kind, never its
// current class: a user subclass of Array still classifies as ShapeArray
// and reuses the built-in encoding.
type Shape int

const (
	ShapeNil Shape = iota
	ShapeTrue
	ShapeFalse
	ShapeInt
	ShapeBigInt
	ShapeFloat
	ShapeString
	ShapeArray
	ShapeDict
	ShapeRegexp
	ShapeSymbol
	ShapeObject
	ShapeStruct
	ShapeClass
	ShapeModule
	ShapeUnknown
)

var shapeNames = [...]string{
	ShapeNil:     "nil",
	ShapeTrue:    "true",
	ShapeFalse:   "false",
	ShapeInt:     "integer",
	ShapeBigInt:  "big integer",
	ShapeFloat:   "float",
	ShapeString:  "string",
	ShapeArray:   "array",
	ShapeDict:    "dictionary",
	ShapeRegexp:  "regexp",
	ShapeSymbol:  "symbol",
	ShapeObject:  "object",
	ShapeStruct:  "struct",
	ShapeClass:   "class",
	ShapeModule:  "module",
	ShapeUnknown: "unknown",
}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "unknown"
	}
	return shapeNames[s]
}

// classify maps a value's intrinsic kind to its shape. It is a pure
// function of the value and is computed once per written value.
func classify(v runtime.Value) Shape {
	switch v.Kind() {
	case runtime.KindNil:
		return ShapeNil
	case runtime.KindTrue:
		return ShapeTrue
	case runtime.KindFalse:
		return ShapeFalse
	case runtime.KindSmallInt:
		return ShapeInt
	case runtime.KindBigInt:
		return ShapeBigInt
	case runtime.KindFloat:
		return ShapeFloat
	case runtime.KindString:
		return ShapeString
	case runtime.KindArray:
		return ShapeArray
	case runtime.KindDict:
		return ShapeDict
	case runtime.KindRegexp:
		return ShapeRegexp
	case runtime.KindSymbol:
		return ShapeSymbol
	case runtime.KindObject, runtime.KindBasicObject:
		return ShapeObject
	case runtime.KindStruct:
		return ShapeStruct
	case runtime.KindClass:
		return ShapeClass
	case runtime.KindModule:
		return ShapeModule
	default:
		return ShapeUnknown
	}
}
