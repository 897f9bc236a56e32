package declid

// Validate reports whether id was built through a constructor. Zero values
// of the variant structs are not valid identifiers.
func Validate(id Id) error {
	switch v := id.(type) {
	case nil:
		return invalid("id is nil")
	case NamedClassId:
		_, err := NewNamedClass(v.name)
		return err
	case AnonymousClassId:
		_, err := NewAnonymousClass(v.file, v.line, v.column)
		return err
	case FunctionId:
		_, err := NewFunction(v.name)
		return err
	case MethodId:
		_, err := NewMethod(v.class, v.name)
		return err
	case ParameterId:
		_, err := NewParameter(v.function, v.name)
		return err
	case ConstantId:
		_, err := NewConstant(v.name)
		return err
	case ClassConstantId:
		_, err := NewClassConstant(v.class, v.name)
		return err
	case PropertyId:
		_, err := NewProperty(v.class, v.name)
		return err
	default:
		return invalid("unknown id variant %T", id)
	}
}

func validateOwner(owner Id, what string) error {
	if owner == nil {
		return invalid("%s owner is nil", what)
	}
	if err := Validate(owner); err != nil {
		return invalid("%s owner: %v", what, err)
	}
	return nil
}
