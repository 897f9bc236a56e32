package declid

import "fmt"

// Handle is a live reflection handle produced by a Reflector.
type Handle interface {
	Name() string
}

// Callable names a function (Class empty) or a method for parameter
// lookups.
type Callable struct {
	Class string
	Name  string
}

// IsMethod reports whether the callable is a method.
func (c Callable) IsMethod() bool { return c.Class != "" }

func (c Callable) String() string {
	if c.IsMethod() {
		return c.Class + "::" + c.Name
	}
	return c.Name
}

// Reflector is the runtime reflection collaborator. Implementations report
// absent declarations with their own errors; Resolve returns those errors
// unchanged.
type Reflector interface {
	ReflectClass(name string) (Handle, error)
	ReflectFunction(name string) (Handle, error)
	ReflectMethod(class, name string) (Handle, error)
	ReflectParameter(function Callable, name string) (Handle, error)
	ReflectConstant(name string) (Handle, error)
	ReflectClassConstant(class, name string) (Handle, error)
	ReflectProperty(class, name string) (Handle, error)
}

// Resolve resolves id through r. A nil id is unresolvable.
func Resolve(r Reflector, id Id) (Handle, error) {
	if id == nil {
		return nil, &UnresolvableError{Err: invalid("id is nil")}
	}
	return id.Resolve(r)
}

// runtimeClassName returns the name the runtime knows class by. subject is
// the identifier being resolved and ends up in the error.
func runtimeClassName(class ClassId, subject Id) (string, error) {
	switch c := class.(type) {
	case NamedClassId:
		return c.name, nil
	case AnonymousClassId:
		if name, ok := c.RuntimeName(); ok {
			return name, nil
		}
		return "", &UnresolvableError{
			Id:  subject,
			Err: fmt.Errorf("%w: %s", ErrAnonymousClassNameNotAvailable, c.Describe()),
		}
	default:
		return "", &UnresolvableError{Id: subject, Err: invalid("unknown class id %T", class)}
	}
}

func callableOf(function FunctionLikeId, subject Id) (Callable, error) {
	switch f := function.(type) {
	case FunctionId:
		return Callable{Name: f.name}, nil
	case MethodId:
		class, err := runtimeClassName(f.class, subject)
		if err != nil {
			return Callable{}, err
		}
		return Callable{Class: class, Name: f.name}, nil
	default:
		return Callable{}, &UnresolvableError{Id: subject, Err: invalid("unknown function id %T", function)}
	}
}
