package declid

import "strconv"

// ConstantId identifies a global constant.
type ConstantId struct {
	name string
}

// NewConstant validates name and returns the identifier.
func NewConstant(name string) (ConstantId, error) {
	if name == "" {
		return ConstantId{}, invalid("constant name is empty")
	}
	return ConstantId{name: name}, nil
}

// Constant is like NewConstant but panics on invalid input.
func Constant(name string) ConstantId {
	return must(NewConstant(name))
}

func (id ConstantId) Name() string { return id.name }

func (ConstantId) Kind() Kind { return KindConstant }

func (id ConstantId) Encode() string {
	return "constant(" + strconv.Quote(id.name) + ")"
}

func (id ConstantId) Describe() string { return id.name }

func (id ConstantId) Equal(other Id) bool {
	o, ok := other.(ConstantId)
	return ok && o.name == id.name
}

func (id ConstantId) Resolve(r Reflector) (Handle, error) {
	if r == nil {
		return nil, &UnresolvableError{Id: id, Err: ErrNoReflector}
	}
	return r.ReflectConstant(id.name)
}

func (id ConstantId) String() string { return id.Describe() }

func (ConstantId) sealed() {}

// ClassConstantId identifies a class constant or an enum case.
type ClassConstantId struct {
	class ClassId
	name  string
}

// NewClassConstant validates the owner and name and returns the identifier.
func NewClassConstant(class ClassId, name string) (ClassConstantId, error) {
	if err := validateOwner(class, "class constant"); err != nil {
		return ClassConstantId{}, err
	}
	if name == "" {
		return ClassConstantId{}, invalid("class constant name is empty")
	}
	return ClassConstantId{class: class, name: name}, nil
}

// ClassConstant is like NewClassConstant but panics on invalid input.
func ClassConstant(class ClassId, name string) ClassConstantId {
	return must(NewClassConstant(class, name))
}

func (id ClassConstantId) Class() ClassId { return id.class }
func (id ClassConstantId) Name() string   { return id.name }

func (ClassConstantId) Kind() Kind { return KindClassConstant }

func (id ClassConstantId) Encode() string {
	return "class-constant(" + Encode(id.class) + "," + strconv.Quote(id.name) + ")"
}

func (id ClassConstantId) Describe() string {
	return Describe(id.class) + "::" + id.name
}

func (id ClassConstantId) Equal(other Id) bool {
	o, ok := other.(ClassConstantId)
	return ok && o.name == id.name && Equal(o.class, id.class)
}

func (id ClassConstantId) Resolve(r Reflector) (Handle, error) {
	class, err := runtimeClassName(id.class, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &UnresolvableError{Id: id, Err: ErrNoReflector}
	}
	return r.ReflectClassConstant(class, id.name)
}

func (id ClassConstantId) String() string { return id.Describe() }

func (ClassConstantId) sealed() {}

// PropertyId identifies a property of a named or anonymous class.
type PropertyId struct {
	class ClassId
	name  string
}

// NewProperty validates the owner and name and returns the identifier.
func NewProperty(class ClassId, name string) (PropertyId, error) {
	if err := validateOwner(class, "property"); err != nil {
		return PropertyId{}, err
	}
	if name == "" {
		return PropertyId{}, invalid("property name is empty")
	}
	return PropertyId{class: class, name: name}, nil
}

// Property is like NewProperty but panics on invalid input.
func Property(class ClassId, name string) PropertyId {
	return must(NewProperty(class, name))
}

func (id PropertyId) Class() ClassId { return id.class }
func (id PropertyId) Name() string   { return id.name }

func (PropertyId) Kind() Kind { return KindProperty }

func (id PropertyId) Encode() string {
	return "property(" + Encode(id.class) + "," + strconv.Quote(id.name) + ")"
}

func (id PropertyId) Describe() string {
	return Describe(id.class) + "::$" + id.name
}

func (id PropertyId) Equal(other Id) bool {
	o, ok := other.(PropertyId)
	return ok && o.name == id.name && Equal(o.class, id.class)
}

func (id PropertyId) Resolve(r Reflector) (Handle, error) {
	class, err := runtimeClassName(id.class, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &UnresolvableError{Id: id, Err: ErrNoReflector}
	}
	return r.ReflectProperty(class, id.name)
}

func (id PropertyId) String() string { return id.Describe() }

func (PropertyId) sealed() {}
