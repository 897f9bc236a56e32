package reflection

import (
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"declid/internal/declid"
)

type class struct {
	handle     *ClassHandle
	methods    map[string]*MethodHandle
	constants  map[string]*ConstantHandle
	properties map[string]*PropertyHandle
}

// Registry is an immutable runtime snapshot. It implements declid.Reflector.
type Registry struct {
	classes   map[string]*class
	functions map[string]*FunctionHandle
	constants map[string]*ConstantHandle
}

var _ declid.Reflector = (*Registry)(nil)

// fold keys class, function and method names, which are case-insensitive.
// Casers keep state, so each call builds its own.
func fold(name string) string { return cases.Fold().String(norm.NFC.String(name)) }

func (r *Registry) class(name string) (*class, error) {
	if r != nil {
		if c, ok := r.classes[fold(name)]; ok {
			return c, nil
		}
	}
	return nil, &NotFoundError{What: "class", Name: name}
}

func (r *Registry) ReflectClass(name string) (declid.Handle, error) {
	c, err := r.class(name)
	if err != nil {
		return nil, err
	}
	return c.handle, nil
}

func (r *Registry) ReflectFunction(name string) (declid.Handle, error) {
	if r != nil {
		if f, ok := r.functions[fold(name)]; ok {
			return f, nil
		}
	}
	return nil, &NotFoundError{What: "function", Name: name}
}

func (r *Registry) ReflectMethod(className, name string) (declid.Handle, error) {
	c, err := r.class(className)
	if err != nil {
		return nil, err
	}
	m, ok := c.methods[fold(name)]
	if !ok {
		return nil, &NotFoundError{What: "method", Name: c.handle.name + "::" + name + "()"}
	}
	return m, nil
}

func (r *Registry) ReflectParameter(function declid.Callable, name string) (declid.Handle, error) {
	var params []string
	if function.IsMethod() {
		h, err := r.ReflectMethod(function.Class, function.Name)
		if err != nil {
			return nil, err
		}
		m := h.(*MethodHandle)
		function = declid.Callable{Class: m.class, Name: m.name}
		params = m.params
	} else {
		h, err := r.ReflectFunction(function.Name)
		if err != nil {
			return nil, err
		}
		f := h.(*FunctionHandle)
		function = declid.Callable{Name: f.name}
		params = f.params
	}
	pos := slices.Index(params, name)
	if pos < 0 {
		return nil, &NotFoundError{What: "parameter", Name: function.String() + "($" + name + ")"}
	}
	return &ParameterHandle{function: function, name: name, position: pos}, nil
}

func (r *Registry) ReflectConstant(name string) (declid.Handle, error) {
	if r != nil {
		if c, ok := r.constants[name]; ok {
			return c, nil
		}
	}
	return nil, &NotFoundError{What: "constant", Name: name}
}

func (r *Registry) ReflectClassConstant(className, name string) (declid.Handle, error) {
	c, err := r.class(className)
	if err != nil {
		return nil, err
	}
	k, ok := c.constants[name]
	if !ok {
		return nil, &NotFoundError{What: "class constant", Name: c.handle.name + "::" + name}
	}
	return k, nil
}

func (r *Registry) ReflectProperty(className, name string) (declid.Handle, error) {
	c, err := r.class(className)
	if err != nil {
		return nil, err
	}
	p, ok := c.properties[name]
	if !ok {
		return nil, &NotFoundError{What: "property", Name: c.handle.name + "::$" + name}
	}
	return p, nil
}

// Classes returns the registered class names, sorted.
func (r *Registry) Classes() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.classes))
	for _, c := range r.classes {
		names = append(names, c.handle.name)
	}
	slices.Sort(names)
	return names
}

// Len reports the number of registered declarations of every kind.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	n := len(r.functions) + len(r.constants)
	for _, c := range r.classes {
		n += 1 + len(c.methods) + len(c.constants) + len(c.properties)
	}
	return n
}
