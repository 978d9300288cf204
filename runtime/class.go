package runtime

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Class represents a class or module in the runtime's type lattice.
//
// The superclass chain may contain synthetic nodes in addition to concrete
// classes: included-module wrappers (one per module mixed into an instance
// or class) and per-instance singleton classes. Code that needs the
// concrete class of a value walks past these with RealClass.
type Class struct {
	Name       string
	Namespace  string
	Superclass *Class
	InstVars   []string

	// Data marks classes wrapping native host data. Such values have no
	// portable representation and cannot be marshaled.
	Data bool

	module    bool
	mixin     *Class // set on included-module wrapper nodes
	singleton bool

	singletonMethods []string
	ivars            []IVar
}

var anonCounter atomic.Uint64

// NewClass creates a concrete class.
func NewClass(namespace, name string, super *Class, instVars ...string) *Class {
	return &Class{
		Name:       name,
		Namespace:  namespace,
		Superclass: super,
		InstVars:   instVars,
	}
}

// NewModule creates a module.
func NewModule(namespace, name string) *Class {
	return &Class{Name: name, Namespace: namespace, module: true}
}

// NewAnonymousClass creates a class with a generated unutterable name.
func NewAnonymousClass(super *Class) *Class {
	n := anonCounter.Add(1)
	return &Class{
		Name:       fmt.Sprintf("#<Class:%#x>", n),
		Superclass: super,
	}
}

// Path returns the fully qualified dotted name.
func (c *Class) Path() string {
	if c.Namespace == "" {
		return c.Name
	}
	return c.Namespace + "." + c.Name
}

// IsModule returns true if c describes a module rather than a class.
func (c *Class) IsModule() bool {
	return c.module
}

// IsAnonymous returns true if the class has no utterable name.
func (c *Class) IsAnonymous() bool {
	return strings.HasPrefix(c.Name, "#")
}

// IsSingleton returns true if c is a per-instance singleton class.
func (c *Class) IsSingleton() bool {
	return c.singleton
}

// IsIncluded returns true if c is an included-module wrapper node.
func (c *Class) IsIncluded() bool {
	return c.mixin != nil
}

// Mixin returns the module an included-module wrapper stands for.
// Returns nil for ordinary classes.
func (c *Class) Mixin() *Class {
	return c.mixin
}

// RealClass returns the nearest concrete class, walking past singleton
// and included-module wrapper nodes.
func (c *Class) RealClass() *Class {
	r := c
	for r != nil && (r.singleton || r.mixin != nil) {
		r = r.Superclass
	}
	return r
}

// Extended returns a new included-module wrapper for mixin sitting
// directly above c. Extending an instance with a module is realized as
//
//	obj.SetClass(obj.Class().Extended(mod))
//
// so the most recently extended module is nearest the instance.
func (c *Class) Extended(mixin *Class) *Class {
	return &Class{
		Name:       mixin.Name,
		Namespace:  mixin.Namespace,
		Superclass: c,
		mixin:      mixin,
	}
}

// NewSingleton creates a singleton class whose sole instance is attached
// to of. It starts out stateless.
func NewSingleton(of *Class) *Class {
	return &Class{
		Name:       fmt.Sprintf("#<Class:%s>", of.Path()),
		Superclass: of,
		singleton:  true,
	}
}

// DefineMethod records a method defined directly on the class. On a
// singleton class this makes the singleton stateful.
func (c *Class) DefineMethod(name string) {
	c.singletonMethods = append(c.singletonMethods, name)
}

// HasMethods returns true if any method is defined directly on c.
func (c *Class) HasMethods() bool {
	return len(c.singletonMethods) > 0
}

// SetIVar sets a class-level instance variable.
func (c *Class) SetIVar(name string, v Value) {
	for i := range c.ivars {
		if c.ivars[i].Name == name {
			c.ivars[i].Value = v
			return
		}
	}
	c.ivars = append(c.ivars, IVar{Name: name, Value: v})
}

// HasVariables returns true if c carries class-level instance variables.
func (c *Class) HasVariables() bool {
	return len(c.ivars) > 0
}

// IsSubclassOf returns true if c is other or a descendant of other,
// considering only concrete classes.
func (c *Class) IsSubclassOf(other *Class) bool {
	for r := c; r != nil; r = r.Superclass {
		if r.RealClass() == other {
			return true
		}
	}
	return false
}
