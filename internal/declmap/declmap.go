// Package declmap is the declaration-keyed view of idmap used by callers
// that only need with, lookup, membership and iteration.
package declmap

import (
	"errors"
	"iter"

	"github.com/vmihailenco/msgpack/v5"

	"declid/internal/declid"
	"declid/internal/idmap"
)

// ErrKeyNotFound is returned by Get for an absent identifier.
var ErrKeyNotFound = errors.New("declmap: key not found")

// DeclarationMap is an immutable map from declaration identifiers to V.
// The zero value and a nil *DeclarationMap are empty.
type DeclarationMap[V any] struct {
	m *idmap.Map[declid.Id, V]
}

// New returns an empty map.
func New[V any]() *DeclarationMap[V] {
	return &DeclarationMap[V]{m: idmap.New[declid.Id, V]()}
}

// FromIdMap wraps m without copying it.
func FromIdMap[V any](m *idmap.Map[declid.Id, V]) *DeclarationMap[V] {
	return &DeclarationMap[V]{m: m}
}

// IdMap returns the underlying map.
func (d *DeclarationMap[V]) IdMap() *idmap.Map[declid.Id, V] {
	if d == nil || d.m == nil {
		return idmap.New[declid.Id, V]()
	}
	return d.m
}

func (d *DeclarationMap[V]) inner() *idmap.Map[declid.Id, V] {
	if d == nil {
		return nil
	}
	return d.m
}

func (d *DeclarationMap[V]) With(id declid.Id, v V) *DeclarationMap[V] {
	return FromIdMap(d.inner().With(id, v))
}

func (d *DeclarationMap[V]) Has(id declid.Id) bool { return d.inner().Has(id) }

// Get returns the value for id or ErrKeyNotFound.
func (d *DeclarationMap[V]) Get(id declid.Id) (V, error) {
	v, ok := d.inner().Lookup(id)
	if !ok {
		return v, ErrKeyNotFound
	}
	return v, nil
}

func (d *DeclarationMap[V]) Lookup(id declid.Id) (V, bool) { return d.inner().Lookup(id) }

// Id returns the stored identifier equal to id.
func (d *DeclarationMap[V]) Id(id declid.Id) (declid.Id, bool) { return d.inner().Id(id) }

func (d *DeclarationMap[V]) All() iter.Seq2[declid.Id, V] { return d.inner().All() }

func (d *DeclarationMap[V]) Values() iter.Seq[V] { return d.inner().Values() }

func (d *DeclarationMap[V]) Len() int { return d.inner().Len() }

func (d *DeclarationMap[V]) Ids() []declid.Id { return d.inner().Ids() }

func (d *DeclarationMap[V]) Without(id declid.Id) *DeclarationMap[V] {
	return FromIdMap(d.inner().Without(id))
}

// Merge follows idmap.Map.Merge: other wins and keeps its position.
func (d *DeclarationMap[V]) Merge(other *DeclarationMap[V]) *DeclarationMap[V] {
	return FromIdMap(d.inner().Merge(other.inner()))
}

func (d *DeclarationMap[V]) Slice(offset, limit int) *DeclarationMap[V] {
	return FromIdMap(d.inner().Slice(offset, limit))
}

func (d *DeclarationMap[V]) Filter(keep func(v V, id declid.Id) bool) *DeclarationMap[V] {
	return FromIdMap(d.inner().Filter(keep))
}

// EncodeMsgpack uses the idmap wire form.
func (d *DeclarationMap[V]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return d.IdMap().EncodeMsgpack(enc)
}

// DecodeMsgpack fills a zero DeclarationMap. Any map returned by New,
// FromIdMap or a derive, empty or not, is rejected like
// idmap.Map.DecodeMsgpack rejects it.
func (d *DeclarationMap[V]) DecodeMsgpack(dec *msgpack.Decoder) error {
	if d.m != nil {
		return &idmap.UnsupportedMutationError{Op: "DecodeMsgpack"}
	}
	var m idmap.Map[declid.Id, V]
	if err := m.DecodeMsgpack(dec); err != nil {
		return err
	}
	d.m = &m
	return nil
}
