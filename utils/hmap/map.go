package hmap

import "github.com/benbjohnson/immutable"

// A simple implementation of a mutable hash map.
// Useful when keys are only structurally comparable (slices, interface
// values with custom equality), so Go's maps cannot be used directly, and we
// want to avoid the overhead of using immutable maps.

// Uses linked lists to resolve hash collisions.

type node[K, V any] struct {
	key   K
	value V
	next  *node[K, V]
}

type Map[K, V any] struct {
	hasher immutable.Hasher[K]
	mp     map[uint32]*node[K, V]
	size   int
}

// Order of V and K are swapped since K can be inferred by the argument.
func NewMap[V, K any](hasher immutable.Hasher[K]) *Map[K, V] {
	return &Map[K, V]{
		hasher: hasher,
		mp:     make(map[uint32]*node[K, V]),
	}
}

func (m *Map[K, V]) Set(key K, value V) {
	m.upsert(key, func() V { return value }, true)
}

// GetOrSet returns the value bound to key. If there is none, mk is called
// and its result is stored and returned. The second result reports whether
// the value already existed. The key is hashed once.
func (m *Map[K, V]) GetOrSet(key K, mk func() V) (V, bool) {
	return m.upsert(key, mk, false)
}

func (m *Map[K, V]) upsert(key K, mk func() V, overwrite bool) (V, bool) {
	h := m.hasher.Hash(key)
	snode, found := m.mp[h]
	if !found {
		v := mk()
		m.mp[h] = &node[K, V]{key, v, nil}
		m.size++
		return v, false
	}

	for {
		if m.hasher.Equal(key, snode.key) {
			if overwrite {
				snode.value = mk()
			}
			return snode.value, true
		}

		if next := snode.next; next == nil {
			// Hash collision :(
			v := mk()
			snode.next = &node[K, V]{key, v, nil}
			m.size++
			return v, false
		} else {
			snode = next
		}
	}
}

func (m *Map[K, V]) GetOk(key K) (res V, ok bool) {
	for node := m.mp[m.hasher.Hash(key)]; node != nil; node = node.next {
		if m.hasher.Equal(key, node.key) {
			return node.value, true
		}
	}

	return
}

func (m *Map[K, V]) Get(key K) V {
	v, _ := m.GetOk(key)
	return v
}

// Len is the number of bindings in the map.
func (m *Map[K, V]) Len() int {
	return m.size
}
