package idmap

import (
	"iter"
	"math"

	"declid/internal/declid"
)

// NoLimit makes Slice run to the end of the map.
const NoLimit = math.MinInt

// Entry pairs an identifier with its payload.
type Entry[K declid.Id, V any] struct {
	Id    K
	Value V
}

// Map is an immutable, insertion-ordered map from identifiers to values.
//
// The zero value and a nil *Map are empty maps. A *Map obtained from this
// package is never modified afterwards.
type Map[K declid.Id, V any] struct {
	entries []Entry[K, V]
	slots   map[string]int // encoding -> index into entries
}

// New builds a map from entries. A later entry whose identifier encodes
// like an earlier one replaces its value but keeps the earlier position.
func New[K declid.Id, V any](entries ...Entry[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		entries: make([]Entry[K, V], 0, len(entries)),
		slots:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		m.set(e.Id, e.Value)
	}
	return m
}

// Collect builds a map from a sequence with the same rules as New.
func Collect[K declid.Id, V any](seq iter.Seq2[K, V]) *Map[K, V] {
	m := New[K, V]()
	for id, v := range seq {
		m.set(id, v)
	}
	return m
}

// set is only used while a map is being built and before it is shared.
func (m *Map[K, V]) set(id K, v V) {
	key := id.Encode()
	if i, ok := m.slots[key]; ok {
		m.entries[i] = Entry[K, V]{Id: id, Value: v}
		return
	}
	m.slots[key] = len(m.entries)
	m.entries = append(m.entries, Entry[K, V]{Id: id, Value: v})
}

func (m *Map[K, V]) clone(extra int) *Map[K, V] {
	n := m.Len()
	c := &Map[K, V]{
		entries: make([]Entry[K, V], n, n+extra),
		slots:   make(map[string]int, n+extra),
	}
	if n == 0 {
		return c
	}
	copy(c.entries, m.entries)
	for k, i := range m.slots {
		c.slots[k] = i
	}
	return c
}

// rebuild creates a map from entries that are known to have distinct keys.
func rebuild[K declid.Id, V any](entries []Entry[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		entries: entries,
		slots:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		m.slots[e.Id.Encode()] = i
	}
	return m
}

// Len reports the number of distinct identifiers.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Has reports whether an identifier with the same encoding is present.
func (m *Map[K, V]) Has(id K) bool {
	_, ok := m.index(id)
	return ok
}

func (m *Map[K, V]) index(id K) (int, bool) {
	if m == nil || len(m.entries) == 0 {
		return 0, false
	}
	i, ok := m.slots[id.Encode()]
	return i, ok
}

// Get returns the value stored for id or a *NotDefinedError.
func (m *Map[K, V]) Get(id K) (V, error) {
	i, ok := m.index(id)
	if !ok {
		var zero V
		return zero, &NotDefinedError{Id: id}
	}
	return m.entries[i].Value, nil
}

// Lookup is the comma-ok form of Get.
func (m *Map[K, V]) Lookup(id K) (V, bool) {
	i, ok := m.index(id)
	if !ok {
		var zero V
		return zero, false
	}
	return m.entries[i].Value, true
}

// Id returns the stored identifier that encodes like id. The stored value
// may carry data outside identity, such as an anonymous class runtime name.
func (m *Map[K, V]) Id(id K) (K, bool) {
	i, ok := m.index(id)
	if !ok {
		var zero K
		return zero, false
	}
	return m.entries[i].Id, true
}

// With returns a map where id maps to v. An existing identifier keeps its
// position.
func (m *Map[K, V]) With(id K, v V) *Map[K, V] {
	c := m.clone(1)
	c.set(id, v)
	return c
}

// Without returns a map without id. Removing an absent id is a no-op.
func (m *Map[K, V]) Without(id K) *Map[K, V] {
	i, ok := m.index(id)
	if !ok {
		return m.clone(0)
	}
	entries := make([]Entry[K, V], 0, m.Len()-1)
	entries = append(entries, m.entries[:i]...)
	entries = append(entries, m.entries[i+1:]...)
	return rebuild(entries)
}

// Merge returns the union of m and other. When both hold the same
// identifier, other's pair wins and takes other's position: the result
// lists m's remaining entries in order, followed by all of other's entries
// in order.
func (m *Map[K, V]) Merge(other *Map[K, V]) *Map[K, V] {
	if other.Len() == 0 {
		return m.clone(0)
	}
	entries := make([]Entry[K, V], 0, m.Len()+other.Len())
	for _, e := range m.view() {
		if _, shadowed := other.slots[e.Id.Encode()]; !shadowed {
			entries = append(entries, e)
		}
	}
	entries = append(entries, other.entries...)
	return rebuild(entries)
}

// Slice returns the entries in [offset, offset+limit) of the iteration
// order. A negative offset counts from the end and an offset past the end
// yields an empty map. NoLimit runs to the end; any other negative limit
// stops that many entries before the end.
func (m *Map[K, V]) Slice(offset, limit int) *Map[K, V] {
	n := m.Len()
	if offset < 0 {
		offset = max(n+offset, 0)
	}
	offset = min(offset, n)
	end := n
	switch {
	case limit == NoLimit:
	case limit < 0:
		end = max(n+limit, offset)
	default:
		end = min(offset+limit, n)
	}
	entries := make([]Entry[K, V], end-offset)
	copy(entries, m.view()[offset:end])
	return rebuild(entries)
}

// Filter returns the entries for which keep reports true, in order.
func (m *Map[K, V]) Filter(keep func(v V, id K) bool) *Map[K, V] {
	entries := make([]Entry[K, V], 0, m.Len())
	for _, e := range m.view() {
		if keep(e.Value, e.Id) {
			entries = append(entries, e)
		}
	}
	return rebuild(entries)
}

// MapValues returns a map with the same identifiers in the same order and
// values transformed by fn. fn receives the identifier for context only.
func MapValues[K declid.Id, V, W any](m *Map[K, V], fn func(v V, id K) W) *Map[K, W] {
	out := &Map[K, W]{
		entries: make([]Entry[K, W], m.Len()),
		slots:   make(map[string]int, m.Len()),
	}
	for i, e := range m.view() {
		out.entries[i] = Entry[K, W]{Id: e.Id, Value: fn(e.Value, e.Id)}
	}
	if m != nil {
		for k, i := range m.slots {
			out.slots[k] = i
		}
	}
	return out
}

// Widen returns m keyed by declid.Id, so it can be merged with maps of
// other identifier kinds.
func Widen[K declid.Id, V any](m *Map[K, V]) *Map[declid.Id, V] {
	out := &Map[declid.Id, V]{
		entries: make([]Entry[declid.Id, V], m.Len()),
		slots:   make(map[string]int, m.Len()),
	}
	for i, e := range m.view() {
		out.entries[i] = Entry[declid.Id, V]{Id: e.Id, Value: e.Value}
		out.slots[e.Id.Encode()] = i
	}
	return out
}

// Ids returns the identifiers in iteration order.
func (m *Map[K, V]) Ids() []K {
	ids := make([]K, 0, m.Len())
	for _, e := range m.view() {
		ids = append(ids, e.Id)
	}
	return ids
}

// Entries returns a copy of the entries in iteration order.
func (m *Map[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], m.Len())
	copy(out, m.view())
	return out
}

// All yields identifier/value pairs in iteration order. The sequence can be
// ranged over any number of times.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	entries := m.view()
	return func(yield func(K, V) bool) {
		for _, e := range entries {
			if !yield(e.Id, e.Value) {
				return
			}
		}
	}
}

// Values yields the values in iteration order.
func (m *Map[K, V]) Values() iter.Seq[V] {
	entries := m.view()
	return func(yield func(V) bool) {
		for _, e := range entries {
			if !yield(e.Value) {
				return
			}
		}
	}
}

// view returns the backing entries, nil-safe. Callers must not modify
// the result.
func (m *Map[K, V]) view() []Entry[K, V] {
	if m == nil {
		return nil
	}
	return m.entries
}
