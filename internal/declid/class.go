package declid

import (
	"fmt"
	"strconv"
)

// NamedClassId identifies a class, interface, trait or enum by its
// fully qualified name.
type NamedClassId struct {
	name string
}

// NewNamedClass validates name and returns the identifier.
func NewNamedClass(name string) (NamedClassId, error) {
	if name == "" {
		return NamedClassId{}, invalid("class name is empty")
	}
	return NamedClassId{name: name}, nil
}

// Class is like NewNamedClass but panics on invalid input.
func Class(name string) NamedClassId {
	return must(NewNamedClass(name))
}

func (id NamedClassId) Name() string { return id.name }

func (NamedClassId) Kind() Kind { return KindNamedClass }

func (id NamedClassId) Encode() string {
	return "class(" + strconv.Quote(id.name) + ")"
}

func (id NamedClassId) Describe() string { return id.name }

func (id NamedClassId) Equal(other Id) bool {
	o, ok := other.(NamedClassId)
	return ok && o.name == id.name
}

func (id NamedClassId) Resolve(r Reflector) (Handle, error) {
	if r == nil {
		return nil, &UnresolvableError{Id: id, Err: ErrNoReflector}
	}
	return r.ReflectClass(id.name)
}

func (id NamedClassId) String() string { return id.Describe() }

func (NamedClassId) sealed()  {}
func (NamedClassId) classId() {}

// AnonymousClassId identifies an anonymous class by the position of its
// declaration. The runtime name, when captured, is carried along for
// resolution but takes no part in identity.
type AnonymousClassId struct {
	file        string
	line        int
	column      int
	runtimeName string
}

// NewAnonymousClass validates the position. Line is 1-based; a zero column
// means the column is unknown.
func NewAnonymousClass(file string, line, column int) (AnonymousClassId, error) {
	if file == "" {
		return AnonymousClassId{}, invalid("anonymous class file is empty")
	}
	if line < 1 {
		return AnonymousClassId{}, invalid("anonymous class line %d is not positive", line)
	}
	if column < 0 {
		return AnonymousClassId{}, invalid("anonymous class column %d is negative", column)
	}
	return AnonymousClassId{file: file, line: line, column: column}, nil
}

// AnonymousClass is like NewAnonymousClass but panics on invalid input.
func AnonymousClass(file string, line, column int) AnonymousClassId {
	return must(NewAnonymousClass(file, line, column))
}

func (id AnonymousClassId) File() string { return id.file }
func (id AnonymousClassId) Line() int    { return id.line }
func (id AnonymousClassId) Column() int  { return id.column }

// RuntimeName returns the live class name if it was captured.
func (id AnonymousClassId) RuntimeName() (string, bool) {
	return id.runtimeName, id.runtimeName != ""
}

// WithRuntimeName returns a copy that carries the live class name.
func (id AnonymousClassId) WithRuntimeName(name string) AnonymousClassId {
	id.runtimeName = name
	return id
}

func (AnonymousClassId) Kind() Kind { return KindAnonymousClass }

func (id AnonymousClassId) Encode() string {
	return "anonymous-class(" + strconv.Quote(id.file) + "," +
		strconv.Itoa(id.line) + "," + strconv.Itoa(id.column) + ")"
}

func (id AnonymousClassId) Describe() string {
	if id.column == 0 {
		return fmt.Sprintf("class@anonymous:%s:%d", id.file, id.line)
	}
	return fmt.Sprintf("class@anonymous:%s:%d:%d", id.file, id.line, id.column)
}

func (id AnonymousClassId) Equal(other Id) bool {
	o, ok := other.(AnonymousClassId)
	return ok && o.file == id.file && o.line == id.line && o.column == id.column
}

func (id AnonymousClassId) Resolve(r Reflector) (Handle, error) {
	name, err := runtimeClassName(id, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &UnresolvableError{Id: id, Err: ErrNoReflector}
	}
	return r.ReflectClass(name)
}

func (id AnonymousClassId) String() string { return id.Describe() }

func (AnonymousClassId) sealed()  {}
func (AnonymousClassId) classId() {}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
