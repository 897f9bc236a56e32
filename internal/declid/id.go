package declid

// Id is an immutable declaration identifier.
//
// The interface is sealed: only the variants declared in this package
// implement it.
type Id interface {
	// Kind reports the variant.
	Kind() Kind

	// Encode returns the canonical encoding. It is non-empty, stable across
	// runs and injective over all identifiers.
	Encode() string

	// Describe returns a human-readable rendering for diagnostics.
	Describe() string

	// Equal reports structural equality. It agrees with Encode.
	Equal(other Id) bool

	// Resolve obtains a live handle for the declaration from r.
	Resolve(r Reflector) (Handle, error)

	sealed()
}

// ClassId is a NamedClassId or an AnonymousClassId.
type ClassId interface {
	Id
	classId()
}

// FunctionLikeId is a FunctionId or a MethodId, the owners of parameters.
type FunctionLikeId interface {
	Id
	functionLike()
}

// Equal compares two identifiers, treating nil as equal only to nil.
func Equal(a, b Id) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// Encode returns id.Encode() or an empty string for nil.
func Encode(id Id) string {
	if id == nil {
		return ""
	}
	return id.Encode()
}

// Describe returns id.Describe() or "<nil>".
func Describe(id Id) string {
	if id == nil {
		return "<nil>"
	}
	return id.Describe()
}
