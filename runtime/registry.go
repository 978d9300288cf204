package runtime

import "sync"

// Registry maps fully qualified dotted paths to classes and modules.
//
// Marshaling uses it to verify that a class name written to a stream
// resolves back to the same class, and readers use it to rebuild
// subclass and extension chains.
type Registry struct {
	mu     sync.RWMutex
	byPath map[string]*Class
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byPath: make(map[string]*Class)}
}

// Register records c under its fully qualified path. Anonymous classes
// are not registered.
func (r *Registry) Register(c *Class) {
	if c.IsAnonymous() {
		return
	}
	r.mu.Lock()
	r.byPath[c.Path()] = c
	r.mu.Unlock()
}

// FromPath resolves a fully qualified path to a class or module.
func (r *Registry) FromPath(path string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byPath[path]
	return c, ok
}

// Len returns the number of registered paths.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPath)
}
