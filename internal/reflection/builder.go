package reflection

import (
	"slices"

	"declid/internal/declid"
)

// Builder collects declarations for a Registry. Declaring a member of an
// unknown class declares the class too. Redeclaring replaces.
type Builder struct {
	reg *Registry
}

func NewBuilder() *Builder {
	return &Builder{reg: newRegistry()}
}

func newRegistry() *Registry {
	return &Registry{
		classes:   make(map[string]*class),
		functions: make(map[string]*FunctionHandle),
		constants: make(map[string]*ConstantHandle),
	}
}

func (b *Builder) registry() *Registry {
	if b.reg == nil {
		b.reg = newRegistry()
	}
	return b.reg
}

func (b *Builder) class(name string) *class {
	reg := b.registry()
	key := fold(name)
	c, ok := reg.classes[key]
	if !ok {
		c = &class{
			handle:     &ClassHandle{name: name},
			methods:    make(map[string]*MethodHandle),
			constants:  make(map[string]*ConstantHandle),
			properties: make(map[string]*PropertyHandle),
		}
		reg.classes[key] = c
	}
	return c
}

func (b *Builder) Class(name string) *Builder {
	b.class(name)
	return b
}

// Function declares a function with the given parameters.
func (b *Builder) Function(name string, params ...string) *Builder {
	b.registry().functions[fold(name)] = &FunctionHandle{name: name, params: slices.Clone(params)}
	return b
}

// Method declares a method with the given parameters.
func (b *Builder) Method(className, name string, params ...string) *Builder {
	c := b.class(className)
	key := fold(name)
	if _, ok := c.methods[key]; !ok {
		c.handle.methods = append(c.handle.methods, name)
	}
	c.methods[key] = &MethodHandle{class: c.handle.name, name: name, params: slices.Clone(params)}
	return b
}

// Parameter appends a parameter to a function or method, declaring the
// callable when needed. A parameter that is already declared keeps its
// position.
func (b *Builder) Parameter(function declid.Callable, name string) *Builder {
	var params *[]string
	if function.IsMethod() {
		c := b.class(function.Class)
		m, ok := c.methods[fold(function.Name)]
		if !ok {
			b.Method(function.Class, function.Name)
			m = c.methods[fold(function.Name)]
		}
		params = &m.params
	} else {
		f, ok := b.registry().functions[fold(function.Name)]
		if !ok {
			b.Function(function.Name)
			f = b.reg.functions[fold(function.Name)]
		}
		params = &f.params
	}
	if !slices.Contains(*params, name) {
		*params = append(*params, name)
	}
	return b
}

func (b *Builder) Constant(name string) *Builder {
	b.registry().constants[name] = &ConstantHandle{name: name}
	return b
}

func (b *Builder) ClassConstant(className, name string) *Builder {
	c := b.class(className)
	c.constants[name] = &ConstantHandle{class: c.handle.name, name: name}
	return b
}

func (b *Builder) Property(className, name string) *Builder {
	c := b.class(className)
	c.properties[name] = &PropertyHandle{class: c.handle.name, name: name}
	return b
}

// Build returns the registry. The builder starts over afterwards, so the
// returned registry is never modified.
func (b *Builder) Build() *Registry {
	reg := b.registry()
	b.reg = nil
	return reg
}
