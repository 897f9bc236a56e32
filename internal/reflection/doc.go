// Package reflection is an in-memory runtime snapshot that answers the
// lookups declid.Resolve needs.
//
// A Registry is built once with a Builder and never changes afterwards, so
// it can be shared between goroutines. Class, function and method names
// are matched case-insensitively; constant and property names are not.
// Missing declarations are reported with *NotFoundError.
package reflection
