package lock

import (
	"sort"
	"sync"
)

// Default is the process-wide registry used by the package-level helpers.
var Default = NewRegistry()

// Registry maps lock names to RWLock instances. Each name gets exactly one
// instance, created on first use and kept for the lifetime of the registry.
// The zero value is ready to use.
type Registry struct {
	mu    sync.RWMutex
	locks map[string]*RWLock
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*RWLock)}
}

// GetOrCreate returns the lock registered under name, creating it with the
// given fairness if it does not exist yet. fair is ignored for existing
// names. An empty name selects DefaultName.
func (r *Registry) GetOrCreate(name string, fair bool) *RWLock {
	if name == "" {
		name = DefaultName
	}
	r.mu.RLock()
	l, ok := r.locks[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locks[name]; ok {
		return l
	}
	if r.locks == nil {
		r.locks = make(map[string]*RWLock)
	}
	l = newRWLock(name, fair)
	r.locks[name] = l
	return l
}

// Lookup returns the lock registered under name without creating it.
func (r *Registry) Lookup(name string) (*RWLock, bool) {
	if name == "" {
		name = DefaultName
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.locks[name]
	return l, ok
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.locks)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.locks))
	for name := range r.locks {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
