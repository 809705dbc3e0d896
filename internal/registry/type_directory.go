package registry

import (
	"sort"
	"sync"
)

// TypeDirectory maps capability type id to its definition.
type TypeDirectory struct {
	mu    sync.RWMutex
	types map[string]CapabilityType
}

// NewTypeDirectory returns an empty directory.
func NewTypeDirectory() *TypeDirectory {
	return &TypeDirectory{types: make(map[string]CapabilityType)}
}

// Get returns the type, reporting absence as a routine outcome.
func (d *TypeDirectory) Get(id string) (CapabilityType, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.types[id]
	return cloneType(t), ok
}

// GetType returns the type or ErrNotFound.
func (d *TypeDirectory) GetType(id string) (CapabilityType, error) {
	t, ok := d.Get(id)
	if !ok {
		return CapabilityType{}, notFound("information type", id)
	}
	return t, nil
}

func (d *TypeDirectory) Contains(id string) bool {
	_, ok := d.Get(id)
	return ok
}

// Put installs or replaces a type and reports whether it was new.
func (d *TypeDirectory) Put(t CapabilityType) bool {
	t = cloneType(t)
	d.mu.Lock()
	defer d.mu.Unlock()
	_, existed := d.types[t.ID]
	d.types[t.ID] = t
	return !existed
}

// Remove deletes a type and returns the removed definition.
func (d *TypeDirectory) Remove(id string) (CapabilityType, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.types[id]
	if ok {
		delete(d.types, id)
	}
	return t, ok
}

// All returns every type ordered by id.
func (d *TypeDirectory) All() []CapabilityType {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]CapabilityType, 0, len(d.types))
	for _, t := range d.types {
		out = append(out, cloneType(t))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

func cloneType(t CapabilityType) CapabilityType {
	if t.Schema != nil {
		t.Schema = append([]byte(nil), t.Schema...)
	}
	return t
}
