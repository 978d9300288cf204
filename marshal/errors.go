package marshal

import "fmt"

// Marshaling errors are fatal for the whole dump: they unwind the
// recursive write and leave the sink holding a partial stream the caller
// must discard. Nothing is retried or downgraded.

// AnonymousTypeError reports an attempt to write the name of an
// anonymous class or module.
type AnonymousTypeError struct {
	Path   string
	Module bool
}

func (e *AnonymousTypeError) Error() string {
	kind := "class"
	if e.Module {
		kind = "module"
	}
	return fmt.Sprintf("marshal: can't dump anonymous %s %s", kind, e.Path)
}

// UnresolvableTypeError reports a class whose fully qualified name does
// not resolve back to the same class in the registry.
type UnresolvableTypeError struct {
	Path string
}

func (e *UnresolvableTypeError) Error() string {
	return fmt.Sprintf("marshal: %s can't be referred", e.Path)
}

// StatefulSingletonError reports a value whose singleton class carries
// methods or instance variables of its own.
type StatefulSingletonError struct {
	Class string
}

func (e *StatefulSingletonError) Error() string {
	return fmt.Sprintf("marshal: singleton of %s can't be dumped", e.Class)
}

// UnsupportedShapeError reports a value whose shape has no stream
// encoding.
type UnsupportedShapeError struct {
	Shape Shape
	Class string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("marshal: no stream encoding for %s value of class %s", e.Shape, e.Class)
}

// UnrecognizedTypeError reports a value that belongs to no known shape
// family at all.
type UnrecognizedTypeError struct {
	Class string
}

func (e *UnrecognizedTypeError) Error() string {
	return fmt.Sprintf("marshal: can't pack %s", e.Class)
}
