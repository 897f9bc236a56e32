// Package idmap implements a persistent map keyed by declaration
// identifiers.
//
// Keys are compared by their canonical encoding, never by identity.
// Iteration follows the order in which distinct keys were first inserted.
// Every update (With, Without, Merge, Slice, MapValues, Filter) returns a
// new map and leaves the receiver untouched, so map values can be shared
// freely between goroutines.
//
//	m := idmap.New[declid.Id, int]()
//	m = m.With(declid.Function("f"), 1)
//	m = m.With(declid.Method(declid.Class("C"), "m"), 2)
//	v, err := m.Get(declid.Function("f"))
package idmap
