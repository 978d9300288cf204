package runtime

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ClassDef describes one class or module for interchange. Definitions
// are order-sensitive: a superclass or mixin must be defined (or built
// in) before any definition that refers to it.
type ClassDef struct {
	Path       string   `cbor:"path"`
	Superclass string   `cbor:"superclass,omitempty"`
	InstVars   []string `cbor:"instvars,omitempty"`
	Mixins     []string `cbor:"mixins,omitempty"`
	Module     bool     `cbor:"module,omitempty"`
	Data       bool     `cbor:"data,omitempty"`
}

// cborEncMode uses canonical mode so manifests encode deterministically.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("runtime: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// EncodeManifest serializes class definitions to CBOR bytes.
func EncodeManifest(defs []ClassDef) ([]byte, error) {
	return cborEncMode.Marshal(defs)
}

// DecodeManifest deserializes class definitions from CBOR bytes.
func DecodeManifest(data []byte) ([]ClassDef, error) {
	var defs []ClassDef
	if err := cbor.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("runtime: unmarshal class manifest: %w", err)
	}
	return defs, nil
}

// BuildClasses installs class definitions into the runtime in order.
// Superclass defaults to Object for classes. Mixins are included above
// the superclass, first mixin nearest the class.
func (rt *Runtime) BuildClasses(defs []ClassDef) error {
	for _, def := range defs {
		if def.Path == "" {
			return fmt.Errorf("runtime: class definition without a path")
		}
		if _, ok := rt.Classes.FromPath(def.Path); ok {
			return fmt.Errorf("runtime: %s is already defined", def.Path)
		}

		namespace, name := splitPath(def.Path)

		if def.Module {
			if def.Superclass != "" {
				return fmt.Errorf("runtime: module %s cannot have a superclass", def.Path)
			}
			rt.Classes.Register(NewModule(namespace, name))
			continue
		}

		super := rt.ObjectClass
		if def.Superclass != "" {
			s, ok := rt.Classes.FromPath(def.Superclass)
			if !ok {
				return fmt.Errorf("runtime: %s: unknown superclass %s", def.Path, def.Superclass)
			}
			if s.IsModule() {
				return fmt.Errorf("runtime: %s: superclass %s is a module", def.Path, def.Superclass)
			}
			super = s
		}

		for i := len(def.Mixins) - 1; i >= 0; i-- {
			m, ok := rt.Classes.FromPath(def.Mixins[i])
			if !ok {
				return fmt.Errorf("runtime: %s: unknown mixin %s", def.Path, def.Mixins[i])
			}
			if !m.IsModule() {
				return fmt.Errorf("runtime: %s: mixin %s is not a module", def.Path, def.Mixins[i])
			}
			super = super.Extended(m)
		}

		c := NewClass(namespace, name, super, def.InstVars...)
		c.Data = def.Data
		rt.Classes.Register(c)
	}
	return nil
}

func splitPath(path string) (namespace, name string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i], path[i+1:]
		}
	}
	return "", path
}
