package registry

import "sort"

// MultiMap maps a key to a set of values keyed by id.
type MultiMap[V any] struct {
	items map[string]map[string]V
}

// NewMultiMap returns an empty MultiMap.
func NewMultiMap[V any]() *MultiMap[V] {
	return &MultiMap[V]{items: make(map[string]map[string]V)}
}

// Put stores value under key, replacing any value with the same id.
func (m *MultiMap[V]) Put(key, id string, value V) {
	set, ok := m.items[key]
	if !ok {
		set = make(map[string]V)
		m.items[key] = set
	}
	set[id] = value
}

// Remove deletes one id under key and drops the key when its set empties.
func (m *MultiMap[V]) Remove(key, id string) (V, bool) {
	var zero V
	set, ok := m.items[key]
	if !ok {
		return zero, false
	}
	value, ok := set[id]
	if !ok {
		return zero, false
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m.items, key)
	}
	return value, true
}

// Get returns the values under key ordered by id.
func (m *MultiMap[V]) Get(key string) []V {
	ids := m.IDs(key)
	out := make([]V, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.items[key][id])
	}
	return out
}

// IDs returns the sorted ids stored under key.
func (m *MultiMap[V]) IDs(key string) []string {
	set := m.items[key]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (m *MultiMap[V]) Len(key string) int {
	return len(m.items[key])
}
