package declid

import (
	"strconv"
	"strings"
)

// FunctionId identifies a named function by its fully qualified name.
type FunctionId struct {
	name string
}

// NewFunction validates name and returns the identifier.
func NewFunction(name string) (FunctionId, error) {
	if name == "" {
		return FunctionId{}, invalid("function name is empty")
	}
	return FunctionId{name: name}, nil
}

// Function is like NewFunction but panics on invalid input.
func Function(name string) FunctionId {
	return must(NewFunction(name))
}

func (id FunctionId) Name() string { return id.name }

func (FunctionId) Kind() Kind { return KindFunction }

func (id FunctionId) Encode() string {
	return "function(" + strconv.Quote(id.name) + ")"
}

func (id FunctionId) Describe() string { return id.name + "()" }

func (id FunctionId) Equal(other Id) bool {
	o, ok := other.(FunctionId)
	return ok && o.name == id.name
}

func (id FunctionId) Resolve(r Reflector) (Handle, error) {
	if r == nil {
		return nil, &UnresolvableError{Id: id, Err: ErrNoReflector}
	}
	return r.ReflectFunction(id.name)
}

func (id FunctionId) String() string { return id.Describe() }

func (FunctionId) sealed()       {}
func (FunctionId) functionLike() {}

// MethodId identifies a method of a named or anonymous class.
type MethodId struct {
	class ClassId
	name  string
}

// NewMethod validates the owner and name and returns the identifier.
func NewMethod(class ClassId, name string) (MethodId, error) {
	if err := validateOwner(class, "method"); err != nil {
		return MethodId{}, err
	}
	if name == "" {
		return MethodId{}, invalid("method name is empty")
	}
	return MethodId{class: class, name: name}, nil
}

// Method is like NewMethod but panics on invalid input.
func Method(class ClassId, name string) MethodId {
	return must(NewMethod(class, name))
}

func (id MethodId) Class() ClassId { return id.class }
func (id MethodId) Name() string   { return id.name }

func (MethodId) Kind() Kind { return KindMethod }

func (id MethodId) Encode() string {
	return "method(" + Encode(id.class) + "," + strconv.Quote(id.name) + ")"
}

func (id MethodId) Describe() string {
	return Describe(id.class) + "::" + id.name + "()"
}

func (id MethodId) Equal(other Id) bool {
	o, ok := other.(MethodId)
	return ok && o.name == id.name && Equal(o.class, id.class)
}

func (id MethodId) Resolve(r Reflector) (Handle, error) {
	class, err := runtimeClassName(id.class, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &UnresolvableError{Id: id, Err: ErrNoReflector}
	}
	return r.ReflectMethod(class, id.name)
}

func (id MethodId) String() string { return id.Describe() }

func (MethodId) sealed()       {}
func (MethodId) functionLike() {}

// ParameterId identifies a parameter of a function or a method.
type ParameterId struct {
	function FunctionLikeId
	name     string
}

// NewParameter validates the owner and name and returns the identifier.
func NewParameter(function FunctionLikeId, name string) (ParameterId, error) {
	if err := validateOwner(function, "parameter"); err != nil {
		return ParameterId{}, err
	}
	if name == "" {
		return ParameterId{}, invalid("parameter name is empty")
	}
	return ParameterId{function: function, name: name}, nil
}

// Parameter is like NewParameter but panics on invalid input.
func Parameter(function FunctionLikeId, name string) ParameterId {
	return must(NewParameter(function, name))
}

func (id ParameterId) Function() FunctionLikeId { return id.function }
func (id ParameterId) Name() string             { return id.name }

func (ParameterId) Kind() Kind { return KindParameter }

func (id ParameterId) Encode() string {
	return "parameter(" + Encode(id.function) + "," + strconv.Quote(id.name) + ")"
}

// Describe renders the owner with the parameter between its parentheses:
// f($x) or A::f($x).
func (id ParameterId) Describe() string {
	return strings.TrimSuffix(Describe(id.function), ")") + "$" + id.name + ")"
}

func (id ParameterId) Equal(other Id) bool {
	o, ok := other.(ParameterId)
	return ok && o.name == id.name && Equal(o.function, id.function)
}

func (id ParameterId) Resolve(r Reflector) (Handle, error) {
	callable, err := callableOf(id.function, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &UnresolvableError{Id: id, Err: ErrNoReflector}
	}
	return r.ReflectParameter(callable, id.name)
}

func (id ParameterId) String() string { return id.Describe() }

func (ParameterId) sealed() {}
