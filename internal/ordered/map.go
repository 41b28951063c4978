// Package ordered implements an insertion-ordered map type.
//
// Pipeline documents care about ordering in a few places (env, plugin
// config) where encoding/json's map type would scramble keys. Map keeps
// items in insertion order and marshals them that way for both JSON and
// YAML.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

var _ interface {
	json.Marshaler
	yaml.IsZeroer
	yaml.Marshaler
} = (*Map[string, any])(nil)

// Map is an order-preserving map. Setting a key that already exists
// updates the value in place; new keys append to the end.
type Map[K comparable, V any] struct {
	items []Tuple[K, V]
	index map[K]int
}

// MapSS is a convenience alias to reduce keyboard wear.
type MapSS = Map[string, string]

// MapSA is a convenience alias to reduce keyboard wear.
type MapSA = Map[string, any]

// NewMap returns a new empty map with a given initial capacity.
func NewMap[K comparable, V any](cap int) *Map[K, V] {
	return &Map[K, V]{
		items: make([]Tuple[K, V], 0, cap),
		index: make(map[K]int, cap),
	}
}

// MapFromItems creates a Map with some items.
func MapFromItems[K comparable, V any](ps ...Tuple[K, V]) *Map[K, V] {
	m := NewMap[K, V](len(ps))
	for _, p := range ps {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Len returns the number of items in the map.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

// IsZero reports if m is nil or empty. It is used by yaml.v3 to check
// emptiness.
func (m *Map[K, V]) IsZero() bool {
	return m.Len() == 0
}

// Get retrieves the value associated with a key, and reports if it was found.
func (m *Map[K, V]) Get(k K) (V, bool) {
	var zv V
	if m == nil {
		return zv, false
	}
	idx, ok := m.index[k]
	if !ok {
		return zv, false
	}
	return m.items[idx].Value, true
}

// Contains reports if the map contains the key.
func (m *Map[K, V]) Contains(k K) bool {
	if m == nil {
		return false
	}
	_, has := m.index[k]
	return has
}

// Set sets the value for the given key. If the key exists, it remains in its
// existing spot, otherwise it is added to the end of the map.
func (m *Map[K, V]) Set(k K, v V) {
	// new(Map) leaves index nil.
	if m.index == nil {
		m.index = make(map[K]int, 1)
	}
	if idx, exists := m.index[k]; exists {
		m.items[idx].Value = v
		return
	}
	m.index[k] = len(m.items)
	m.items = append(m.items, Tuple[K, V]{Key: k, Value: v})
}

// Replace replaces an old key in the same spot with a new key and value.
// If the old key doesn't exist in the map, the item is appended. If the new
// key already exists in the map under a different old key, the existing item
// is deleted first, so the map never holds the new key twice.
func (m *Map[K, V]) Replace(old, new K, v V) {
	if m.index == nil {
		m.index = make(map[K]int, 1)
	}
	idx, exists := m.index[old]
	if !exists {
		m.Set(new, v)
		return
	}
	if old != new {
		if _, clash := m.index[new]; clash {
			m.Delete(new)
			// Deleting may have shifted the item we are replacing.
			idx = m.index[old]
		}
		delete(m.index, old)
		m.index[new] = idx
	}
	m.items[idx] = Tuple[K, V]{Key: new, Value: v}
}

// Delete deletes a key from the map. It does nothing if the key is not in the
// map. Items after the deleted key shuffle down one spot.
func (m *Map[K, V]) Delete(k K) {
	if m == nil {
		return
	}
	idx, ok := m.index[k]
	if !ok {
		return
	}
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	delete(m.index, k)
	for i := idx; i < len(m.items); i++ {
		m.index[m.items[i].Key] = i
	}
}

// ToMap creates a regular (un-ordered) map containing the same data. If m is
// nil, ToMap returns nil.
func (m *Map[K, V]) ToMap() map[K]V {
	if m == nil {
		return nil
	}
	um := make(map[K]V, len(m.items))
	for _, p := range m.items {
		um[p.Key] = p.Value
	}
	return um
}

// Range ranges over the map (in order). If f returns an error, it stops
// ranging and returns that error.
func (m *Map[K, V]) Range(f func(k K, v V) error) error {
	if m.IsZero() {
		return nil
	}
	for _, p := range m.items {
		if err := f(p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports if two maps are equal (same items in the same order). Keys
// are compared directly; values are compared using go-cmp (provided with
// Equal[string, string] and Equal[string, any] as comparers).
func Equal[K comparable, V any](a, b *Map[K, V]) bool {
	if a == nil || b == nil {
		return a.IsZero() == b.IsZero()
	}
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.items {
		if a.items[i].Key != b.items[i].Key {
			return false
		}
		if !cmp.Equal(a.items[i].Value, b.items[i].Value, cmp.Comparer(Equal[string, string]), cmp.Comparer(Equal[string, any])) {
			return false
		}
	}
	return true
}

// EqualSS is a convenience alias to reduce keyboard wear.
var EqualSS = Equal[string, string]

// EqualSA is a convenience alias to reduce keyboard wear.
var EqualSA = Equal[string, any]

// MarshalJSON marshals the ordered map to JSON, preserving the map order in
// the output. An empty map marshals as {}.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	err := m.Range(func(k K, v V) error {
		if b.Len() > 1 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// MarshalYAML returns a *yaml.Node encoding this map (in order), or an error
// if any of the items could not be encoded into a *yaml.Node.
func (m *Map[K, V]) MarshalYAML() (any, error) {
	n := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}
	err := m.Range(func(k K, v V) error {
		nk, nv := new(yaml.Node), new(yaml.Node)
		if err := nk.Encode(k); err != nil {
			return err
		}
		if err := nv.Encode(v); err != nil {
			return err
		}
		n.Content = append(n.Content, nk, nv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// String returns a string representation resembling fmt's map formatting,
// except in insertion order.
func (m *Map[K, V]) String() string {
	var b bytes.Buffer
	b.WriteString("map[")
	first := true
	m.Range(func(k K, v V) error {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&b, "%v:%v", k, v)
		return nil
	})
	b.WriteByte(']')
	return b.String()
}
