package declid

// RuntimeNames looks up the runtime name of an anonymous class.
type RuntimeNames func(class AnonymousClassId) (string, bool)

// Bind returns id with runtime names attached to every anonymous class in
// its owner chain. Classes unknown to names, or already carrying a name,
// are left as they are. The result is Equal to id.
func Bind(id Id, names RuntimeNames) Id {
	if names == nil {
		return id
	}
	switch v := id.(type) {
	case AnonymousClassId:
		return bindClass(v, names)
	case MethodId:
		v.class = bindClass(v.class, names)
		return v
	case ParameterId:
		if function, ok := Bind(v.function, names).(FunctionLikeId); ok {
			v.function = function
		}
		return v
	case ClassConstantId:
		v.class = bindClass(v.class, names)
		return v
	case PropertyId:
		v.class = bindClass(v.class, names)
		return v
	default:
		return id
	}
}

func bindClass(class ClassId, names RuntimeNames) ClassId {
	anon, ok := class.(AnonymousClassId)
	if !ok {
		return class
	}
	if _, has := anon.RuntimeName(); has {
		return anon
	}
	if name, found := names(anon); found {
		return anon.WithRuntimeName(name)
	}
	return anon
}
