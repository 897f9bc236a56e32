package declid

// Kind discriminates identifier variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNamedClass
	KindAnonymousClass
	KindFunction
	KindMethod
	KindParameter
	KindConstant
	KindClassConstant
	KindProperty
)

// String returns the tag used for the kind in encodings.
func (k Kind) String() string {
	switch k {
	case KindNamedClass:
		return "class"
	case KindAnonymousClass:
		return "anonymous-class"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindParameter:
		return "parameter"
	case KindConstant:
		return "constant"
	case KindClassConstant:
		return "class-constant"
	case KindProperty:
		return "property"
	default:
		return "invalid"
	}
}

// ParseKind maps an encoding tag back to its kind.
func ParseKind(s string) (Kind, bool) {
	for k := KindNamedClass; k <= KindProperty; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return KindInvalid, false
}

// Kinds lists every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, int(KindProperty))
	for k := KindNamedClass; k <= KindProperty; k++ {
		out = append(out, k)
	}
	return out
}
