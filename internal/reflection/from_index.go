package reflection

import (
	"declid/internal/declid"
	"declid/internal/index"
)

// FromIndex registers every declaration the index marks as runtime.
// Anonymous classes are registered under their runtime name; declarations
// owned by an anonymous class without one are skipped. Owners are
// registered along with their members.
func FromIndex(ix *index.Index) *Registry {
	b := NewBuilder()
	if ix == nil {
		return b.Build()
	}
	for id, d := range ix.Declarations.All() {
		if d.Runtime {
			register(b, id)
		}
	}
	return b.Build()
}

func register(b *Builder, id declid.Id) {
	switch v := id.(type) {
	case declid.NamedClassId, declid.AnonymousClassId:
		if name, ok := className(v.(declid.ClassId)); ok {
			b.Class(name)
		}
	case declid.FunctionId:
		// a parameter listed first may have declared it already
		if _, err := b.registry().ReflectFunction(v.Name()); err != nil {
			b.Function(v.Name())
		}
	case declid.MethodId:
		if class, ok := className(v.Class()); ok {
			if _, err := b.registry().ReflectMethod(class, v.Name()); err != nil {
				b.Method(class, v.Name())
			}
		}
	case declid.ParameterId:
		if fn, ok := callable(v.Function()); ok {
			b.Parameter(fn, v.Name())
		}
	case declid.ConstantId:
		b.Constant(v.Name())
	case declid.ClassConstantId:
		if class, ok := className(v.Class()); ok {
			b.ClassConstant(class, v.Name())
		}
	case declid.PropertyId:
		if class, ok := className(v.Class()); ok {
			b.Property(class, v.Name())
		}
	}
}

func className(c declid.ClassId) (string, bool) {
	switch v := c.(type) {
	case declid.NamedClassId:
		return v.Name(), true
	case declid.AnonymousClassId:
		return v.RuntimeName()
	}
	return "", false
}

func callable(f declid.FunctionLikeId) (declid.Callable, bool) {
	switch v := f.(type) {
	case declid.FunctionId:
		return declid.Callable{Name: v.Name()}, true
	case declid.MethodId:
		class, ok := className(v.Class())
		return declid.Callable{Class: class, Name: v.Name()}, ok
	}
	return declid.Callable{}, false
}
