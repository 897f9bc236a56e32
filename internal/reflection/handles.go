package reflection

import "declid/internal/declid"

// ClassHandle describes a loaded class.
type ClassHandle struct {
	name    string
	methods []string
}

func (h *ClassHandle) Name() string { return h.name }

// Methods returns the declared method names in declaration order.
func (h *ClassHandle) Methods() []string { return append([]string(nil), h.methods...) }

// FunctionHandle describes a loaded function.
type FunctionHandle struct {
	name   string
	params []string
}

func (h *FunctionHandle) Name() string { return h.name }

// Parameters returns the parameter names in position order.
func (h *FunctionHandle) Parameters() []string { return append([]string(nil), h.params...) }

// MethodHandle describes a method of a loaded class.
type MethodHandle struct {
	class  string
	name   string
	params []string
}

func (h *MethodHandle) Name() string { return h.name }

// Class returns the declaring class name.
func (h *MethodHandle) Class() string { return h.class }

func (h *MethodHandle) Parameters() []string { return append([]string(nil), h.params...) }

// ParameterHandle describes a parameter of a function or method.
type ParameterHandle struct {
	function declid.Callable
	name     string
	position int
}

func (h *ParameterHandle) Name() string { return h.name }

// Function returns the declaring callable.
func (h *ParameterHandle) Function() declid.Callable { return h.function }

// Position is the zero-based parameter position.
func (h *ParameterHandle) Position() int { return h.position }

// ConstantHandle describes a global or class constant. Class is empty for
// global constants.
type ConstantHandle struct {
	class string
	name  string
}

func (h *ConstantHandle) Name() string  { return h.name }
func (h *ConstantHandle) Class() string { return h.class }

// PropertyHandle describes a property of a loaded class.
type PropertyHandle struct {
	class string
	name  string
}

func (h *PropertyHandle) Name() string  { return h.name }
func (h *PropertyHandle) Class() string { return h.class }

var (
	_ declid.Handle = (*ClassHandle)(nil)
	_ declid.Handle = (*FunctionHandle)(nil)
	_ declid.Handle = (*MethodHandle)(nil)
	_ declid.Handle = (*ParameterHandle)(nil)
	_ declid.Handle = (*ConstantHandle)(nil)
	_ declid.Handle = (*PropertyHandle)(nil)
)
