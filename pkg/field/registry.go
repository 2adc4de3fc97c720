package field

import (
	"fmt"
	"sort"
)

// Registry holds the configured fields, keyed by handle.
type Registry struct {
	byHandle map[string]*Field
}

// NewRegistry builds a registry from the given fields. Duplicate
// handles are rejected.
func NewRegistry(fields ...*Field) (*Registry, error) {
	byHandle := make(map[string]*Field, len(fields))
	for _, f := range fields {
		if _, ok := byHandle[f.Handle]; ok {
			return nil, fmt.Errorf("duplicate field handle %q", f.Handle)
		}
		byHandle[f.Handle] = f
	}
	return &Registry{byHandle: byHandle}, nil
}

// Lookup returns the field with the given handle, or false.
func (r *Registry) Lookup(handle string) (*Field, bool) {
	f, ok := r.byHandle[handle]
	return f, ok
}

// Handles returns the registered handles in sorted order.
func (r *Registry) Handles() []string {
	handles := make([]string, 0, len(r.byHandle))
	for h := range r.byHandle {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	return handles
}

// Len returns the number of registered fields.
func (r *Registry) Len() int {
	return len(r.byHandle)
}
