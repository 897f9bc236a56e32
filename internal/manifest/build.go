package manifest

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"declid/internal/declid"
	"declid/internal/diag"
	"declid/internal/idmap"
)

// Declaration is the payload stored for a declaration id.
type Declaration struct {
	// Id is restored from the map key after decoding.
	Id          declid.Id     `msgpack:"-" json:"-"`
	Summary     string        `msgpack:"summary,omitempty" json:"summary,omitempty"`
	Tags        []string      `msgpack:"tags,omitempty" json:"tags,omitempty"`
	Line        int           `msgpack:"line,omitempty" json:"line,omitempty"`
	Runtime     bool          `msgpack:"runtime,omitempty" json:"runtime,omitempty"`
	RuntimeName string        `msgpack:"runtime_name,omitempty" json:"runtime_name,omitempty"`
	Source      diag.Location `msgpack:"source" json:"source"`
}

// entryError carries the diagnostic code for an entry that cannot be used.
type entryError struct {
	code diag.Code
	msg  string
}

func (e *entryError) Error() string { return e.msg }

func fail(code diag.Code, format string, args ...any) error {
	return &entryError{code: code, msg: fmt.Sprintf(format, args...)}
}

// Build turns the entries into a map in manifest order. A declaration
// listed twice keeps its first position and takes the later payload.
// Entries that cannot be used are reported and skipped.
func (f *File) Build(r diag.Reporter) *idmap.Map[declid.Id, Declaration] {
	for _, key := range f.Undecoded {
		diag.ReportWarning(r, diag.ManUnknownField, diag.Location{File: f.Path}, fmt.Sprintf("unknown field %q is ignored", key)).Emit()
	}

	entries := make([]idmap.Entry[declid.Id, Declaration], 0, len(f.Entries))
	first := make(map[string]diag.Location, len(f.Entries))
	for i := range f.Entries {
		e := &f.Entries[i]
		loc := diag.Location{File: f.Path, Line: e.Pos}

		id, err := e.DeclarationId()
		if err != nil {
			code := diag.ManInvalidId
			var ee *entryError
			if errors.As(err, &ee) {
				code = ee.code
			}
			diag.ReportError(r, code, loc, err.Error()).Emit()
			continue
		}

		decl := Declaration{
			Summary: e.Summary,
			Tags:    e.Tags,
			Runtime: e.Runtime,
			Source:  loc,
		}

		if e.RuntimeName != "" {
			if anon, ok := id.(declid.AnonymousClassId); ok {
				id = anon.WithRuntimeName(e.RuntimeName)
				decl.RuntimeName = e.RuntimeName
			} else {
				diag.ReportWarning(r, diag.ManRuntimeName, loc,
					fmt.Sprintf("runtime_name %q on %s is ignored", e.RuntimeName, id.Describe())).Emit()
			}
		}

		if e.Line != 0 {
			line, err := safecast.Conv[int](e.Line)
			if err != nil || line < 0 {
				diag.ReportWarning(r, diag.ManLineOutOfRange, loc, fmt.Sprintf("line %d is ignored", e.Line)).Emit()
			} else {
				decl.Line = line
			}
		}

		decl.Id = id
		key := id.Encode()
		if prev, dup := first[key]; dup {
			diag.ReportWarning(r, diag.ManDuplicate, loc, fmt.Sprintf("%s is listed more than once; the later entry wins", id.Describe())).
				WithNote(prev, "first listed here").
				Emit()
		} else {
			first[key] = loc
		}
		entries = append(entries, idmap.Entry[declid.Id, Declaration]{Id: id, Value: decl})
	}
	return idmap.New(entries...)
}

// DeclarationId builds the identifier the entry names.
func (e *Entry) DeclarationId() (declid.Id, error) {
	if e.Id != "" {
		id, err := declid.Parse(e.Id)
		if err != nil {
			return nil, fail(diag.ManInvalidId, "%v", err)
		}
		if e.Kind != "" {
			kind, ok := declid.ParseKind(e.Kind)
			if !ok {
				return nil, fail(diag.ManUnknownKind, "%s", UnknownKindMessage(e.Kind))
			}
			if kind != id.Kind() {
				return nil, fail(diag.ManKindMismatch, "kind %q does not match id %s", e.Kind, e.Id)
			}
		}
		return id, nil
	}

	if e.Kind == "" {
		return nil, fail(diag.ManMissingField, "declaration needs id or kind")
	}
	kind, ok := declid.ParseKind(e.Kind)
	if !ok {
		return nil, fail(diag.ManUnknownKind, "%s", UnknownKindMessage(e.Kind))
	}

	if kind == declid.KindAnonymousClass {
		return e.anonymous()
	}
	if e.Name == "" {
		return nil, fail(diag.ManMissingField, "%s needs a name", kind)
	}

	var (
		id  declid.Id
		err error
	)
	switch kind {
	case declid.KindNamedClass:
		id, err = declid.NewNamedClass(e.Name)
	case declid.KindFunction:
		id, err = declid.NewFunction(e.Name)
	case declid.KindConstant:
		id, err = declid.NewConstant(e.Name)
	case declid.KindMethod, declid.KindClassConstant, declid.KindProperty:
		var owner declid.ClassId
		owner, err = e.owner(kind)
		if err != nil {
			return nil, err
		}
		switch kind {
		case declid.KindMethod:
			id, err = declid.NewMethod(owner, e.Name)
		case declid.KindClassConstant:
			id, err = declid.NewClassConstant(owner, e.Name)
		default:
			id, err = declid.NewProperty(owner, e.Name)
		}
	case declid.KindParameter:
		var fn declid.FunctionLikeId
		fn, err = e.function()
		if err != nil {
			return nil, err
		}
		id, err = declid.NewParameter(fn, e.Name)
	default:
		return nil, fail(diag.ManUnknownKind, "%s", UnknownKindMessage(e.Kind))
	}
	if err != nil {
		return nil, fail(diag.ManInvalidId, "%v", err)
	}
	return id, nil
}

func (e *Entry) anonymous() (declid.AnonymousClassId, error) {
	a := e.Anonymous
	if a == nil {
		return declid.AnonymousClassId{}, fail(diag.ManMissingField, "anonymous-class needs anonymous = { file, line, column }")
	}
	line, err := safecast.Conv[int](a.Line)
	if err != nil {
		return declid.AnonymousClassId{}, fail(diag.ManInvalidId, "anonymous class line %d: %v", a.Line, err)
	}
	column, err := safecast.Conv[int](a.Column)
	if err != nil {
		return declid.AnonymousClassId{}, fail(diag.ManInvalidId, "anonymous class column %d: %v", a.Column, err)
	}
	id, err := declid.NewAnonymousClass(a.File, line, column)
	if err != nil {
		return declid.AnonymousClassId{}, fail(diag.ManInvalidId, "%v", err)
	}
	return id, nil
}

func (e *Entry) owner(kind declid.Kind) (declid.ClassId, error) {
	switch {
	case e.Class != "" && e.Anonymous != nil:
		return nil, fail(diag.ManInvalidId, "%s has both class and anonymous", kind)
	case e.Class != "":
		return declid.NewNamedClass(e.Class)
	case e.Anonymous != nil:
		return e.anonymous()
	default:
		return nil, fail(diag.ManMissingField, "%s needs class or anonymous", kind)
	}
}

func (e *Entry) function() (declid.FunctionLikeId, error) {
	switch {
	case e.Method != "" && e.Function != "":
		return nil, fail(diag.ManInvalidId, "parameter has both function and method")
	case e.Method != "":
		owner, err := e.owner(declid.KindParameter)
		if err != nil {
			return nil, err
		}
		m, err := declid.NewMethod(owner, e.Method)
		if err != nil {
			return nil, fail(diag.ManInvalidId, "%v", err)
		}
		return m, nil
	case e.Function != "":
		f, err := declid.NewFunction(e.Function)
		if err != nil {
			return nil, fail(diag.ManInvalidId, "%v", err)
		}
		return f, nil
	default:
		return nil, fail(diag.ManMissingField, "parameter needs function or method")
	}
}
