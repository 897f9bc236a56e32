package diag

import "strconv"

// Severity orders diagnostics; a larger value is more severe.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

// Label is the lower-case name used in rendered output.
func (s Severity) Label() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "severity(" + strconv.Itoa(int(s)) + ")"
}

func (s Severity) String() string { return s.Label() }

// Location points into a manifest. Line is 1-based; 0 means the whole file.
type Location struct {
	File string `msgpack:"file"`
	Line int    `msgpack:"line,omitempty"`
}

func (l Location) String() string {
	if l.Line <= 0 {
		return l.File
	}
	return l.File + ":" + strconv.Itoa(l.Line)
}

type Note struct {
	Loc Location `msgpack:"loc"`
	Msg string   `msgpack:"msg"`
}

type Diagnostic struct {
	Severity Severity `msgpack:"sev"`
	Code     Code     `msgpack:"code"`
	Message  string   `msgpack:"msg"`
	Primary  Location `msgpack:"at"`
	Notes    []Note   `msgpack:"notes,omitempty"`
}

func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary}
}

// WithNote returns a copy of d with one more note.
func (d Diagnostic) WithNote(loc Location, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Loc: loc, Msg: msg})
	return d
}
