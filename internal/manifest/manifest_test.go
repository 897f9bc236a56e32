package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"declid/internal/declid"
	"declid/internal/diag"
)

const appTOML = `
[[declaration]]
id = 'function("app\\boot")'
summary = "boots the app"
tags = ["entry"]
line = 3
runtime = true

[[declaration]]
kind = "method"
class = 'App\User'
name = "save"
summary = "persists the user"

[[declaration]]
kind = "parameter"
class = 'App\User'
method = "save"
name = "force"

[[declaration]]
kind = "anonymous-class"
anonymous = { file = "src/x.php", line = 3, column = 9 }
runtime = true
runtime_name = "class@anonymous/src/x.php:3$0"
`

func build(t *testing.T, f *File) (*diag.Bag, []declid.Id, map[string]Declaration) {
	t.Helper()
	bag := diag.NewBag(100)
	m := f.Build(diag.BagReporter{Bag: bag})
	values := make(map[string]Declaration, m.Len())
	for id, d := range m.All() {
		values[id.Encode()] = d
	}
	return bag, m.Ids(), values
}

func TestParseTOML(t *testing.T) {
	f, err := Parse("decl/app.toml", []byte(appTOML), FormatTOML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Entries) != 4 {
		t.Fatalf("got %d entries", len(f.Entries))
	}
	if f.Entries[0].Pos != 2 || f.Entries[1].Pos != 9 {
		t.Errorf("positions = %d, %d", f.Entries[0].Pos, f.Entries[1].Pos)
	}

	bag, ids, values := build(t, f)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", bag.Format(true))
	}
	user := declid.Class(`App\User`)
	want := []declid.Id{
		declid.Function(`app\boot`),
		declid.Method(user, "save"),
		declid.Parameter(declid.Method(user, "save"), "force"),
		declid.AnonymousClass("src/x.php", 3, 9),
	}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v", ids)
	}
	for i := range want {
		if !ids[i].Equal(want[i]) {
			t.Errorf("id %d = %s, want %s", i, ids[i].Encode(), want[i].Encode())
		}
	}

	boot := values[want[0].Encode()]
	if boot.Summary != "boots the app" || boot.Line != 3 || !boot.Runtime || len(boot.Tags) != 1 {
		t.Errorf("boot = %+v", boot)
	}
	if boot.Source != (diag.Location{File: "decl/app.toml", Line: 2}) {
		t.Errorf("boot source = %v", boot.Source)
	}
	if !boot.Id.Equal(want[0]) {
		t.Errorf("payload id = %v", boot.Id)
	}

	anon := values[want[3].Encode()]
	if anon.RuntimeName != "class@anonymous/src/x.php:3$0" {
		t.Errorf("runtime name = %q", anon.RuntimeName)
	}
	if name, ok := ids[3].(declid.AnonymousClassId).RuntimeName(); !ok || name != anon.RuntimeName {
		t.Errorf("key runtime name = %q, %v", name, ok)
	}
}

func TestParseYAML(t *testing.T) {
	src := `
declaration:
  - id: 'class-constant(class("A"),"MAX")'
    summary: limit
  - kind: property
    anonymous: {file: a.php, line: 4}
    name: items
    colour: red
owner: team-a
`
	f, err := Parse("decl/a.yaml", []byte(src), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Entries) != 2 || f.Entries[0].Pos != 3 || f.Entries[1].Pos != 5 {
		t.Fatalf("entries = %+v", f.Entries)
	}
	bag, ids, _ := build(t, f)
	if len(ids) != 2 || !ids[1].Equal(declid.Property(declid.AnonymousClass("a.php", 4, 0), "items")) {
		t.Fatalf("ids = %v", ids)
	}
	if bag.Len() != 2 {
		t.Fatalf("diagnostics:\n%s", bag.Format(true))
	}
	for _, d := range bag.Items() {
		if d.Code != diag.ManUnknownField {
			t.Errorf("unexpected %s", d.Code)
		}
	}
}

func TestBuildDuplicatesKeepFirstPosition(t *testing.T) {
	src := `
[[declaration]]
id = 'function("f")'
summary = "first"

[[declaration]]
id = 'function("g")'

[[declaration]]
kind = "function"
name = "f"
summary = "second"
`
	f, err := Parse("d.toml", []byte(src), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	bag, ids, values := build(t, f)
	if len(ids) != 2 || !ids[0].Equal(declid.Function("f")) || !ids[1].Equal(declid.Function("g")) {
		t.Fatalf("ids = %v", ids)
	}
	if got := values[declid.Function("f").Encode()].Summary; got != "second" {
		t.Errorf("f summary = %q", got)
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ManDuplicate || items[0].Primary.Line != 9 {
		t.Fatalf("diagnostics:\n%s", bag.Format(true))
	}
	if len(items[0].Notes) != 1 || items[0].Notes[0].Loc.Line != 2 {
		t.Errorf("notes = %+v", items[0].Notes)
	}
}

func TestBuildReportsBadEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		code  diag.Code
	}{
		{"malformed id", Entry{Id: "function(f)"}, diag.ManInvalidId},
		{"no id or kind", Entry{Name: "f"}, diag.ManMissingField},
		{"unknown kind", Entry{Kind: "trait", Name: "T"}, diag.ManUnknownKind},
		{"kind mismatch", Entry{Id: `function("f")`, Kind: "class"}, diag.ManKindMismatch},
		{"missing name", Entry{Kind: "function"}, diag.ManMissingField},
		{"method without owner", Entry{Kind: "method", Name: "m"}, diag.ManMissingField},
		{"two owners", Entry{Kind: "property", Name: "p", Class: "A", Anonymous: &Anonymous{File: "a.php", Line: 1}}, diag.ManInvalidId},
		{"parameter without callable", Entry{Kind: "parameter", Name: "x"}, diag.ManMissingField},
		{"anonymous without location", Entry{Kind: "anonymous-class"}, diag.ManMissingField},
		{"anonymous bad line", Entry{Kind: "anonymous-class", Anonymous: &Anonymous{File: "a.php"}}, diag.ManInvalidId},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{Path: "x.toml", Entries: []Entry{tt.entry}}
			bag, ids, _ := build(t, f)
			if len(ids) != 0 {
				t.Errorf("entry was kept: %v", ids)
			}
			if bag.Len() != 1 || bag.Items()[0].Code != tt.code || !bag.HasErrors() {
				t.Errorf("diagnostics:\n%s", bag.Format(true))
			}
		})
	}
}

func TestUnknownKindSuggestsClosest(t *testing.T) {
	tests := []struct {
		in   string
		want declid.Kind
		ok   bool
	}{
		{"methd", declid.KindMethod, true},
		{"Clas", declid.KindNamedClass, true},
		{"proprety", declid.KindProperty, true},
		{"class-const", declid.KindClassConstant, true},
		{"trait", declid.KindInvalid, false},
		{"", declid.KindInvalid, false},
	}
	for _, tt := range tests {
		got, ok := SuggestKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("SuggestKind(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	f := &File{Path: "x.toml", Entries: []Entry{{Kind: "functon", Name: "f"}}}
	bag, _, _ := build(t, f)
	if bag.Len() != 1 || !strings.Contains(bag.Items()[0].Message, `did you mean "function"?`) {
		t.Errorf("diagnostics:\n%s", bag.Format(true))
	}
}

func TestBuildWarnings(t *testing.T) {
	f := &File{Path: "x.toml", Entries: []Entry{
		{Kind: "class", Name: "A", RuntimeName: "A$0"},
		{Kind: "function", Name: "f", Line: -4},
	}}
	bag, ids, values := build(t, f)
	if len(ids) != 2 {
		t.Fatalf("ids = %v", ids)
	}
	if bag.HasErrors() || bag.Len() != 2 {
		t.Fatalf("diagnostics:\n%s", bag.Format(true))
	}
	if values[declid.Class("A").Encode()].RuntimeName != "" {
		t.Error("runtime name kept on a named class")
	}
	if values[declid.Function("f").Encode()].Line != 0 {
		t.Error("negative line kept")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.toml")
	if err := os.WriteFile(path, []byte(appTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Format != FormatTOML || f.Path != path || len(f.Entries) != 4 {
		t.Errorf("file = %+v", f)
	}

	if _, err := Load(filepath.Join(dir, "app.json")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("json manifest: %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing manifest: %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Parse("bad.toml", []byte("[[declaration]]\nid = \n"), FormatTOML)
	var derr *DecodeError
	if !errors.As(err, &derr) || derr.Line != 2 {
		t.Fatalf("toml error = %v", err)
	}
	if !strings.HasPrefix(err.Error(), "bad.toml:2: ") {
		t.Errorf("message = %q", err.Error())
	}

	_, err = Parse("bad.yaml", []byte("declaration: 3\n"), FormatYAML)
	if !errors.As(err, &derr) || derr.Line != 1 {
		t.Fatalf("yaml error = %v", err)
	}

	f, err := Parse("empty.yaml", nil, FormatYAML)
	if err != nil || len(f.Entries) != 0 {
		t.Fatalf("empty yaml = %+v, %v", f, err)
	}
}
