package declid

import (
	"errors"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	for _, id := range sampleIds() {
		t.Run(id.Encode(), func(t *testing.T) {
			parsed, err := Parse(id.Encode())
			if err != nil {
				t.Fatalf("Parse(%q): %v", id.Encode(), err)
			}
			if !parsed.Equal(id) {
				t.Errorf("Parse(%q) = %s, want %s", id.Encode(), parsed.Describe(), id.Describe())
			}
			if parsed.Kind() != id.Kind() {
				t.Errorf("kind = %s, want %s", parsed.Kind(), id.Kind())
			}
			if parsed.Encode() != id.Encode() {
				t.Errorf("re-encoding = %q, want %q", parsed.Encode(), id.Encode())
			}
		})
	}
}

func TestParseEscapedNames(t *testing.T) {
	id := Method(Class("we\"ird\\name"), "a,b)")
	parsed, err := Parse(id.Encode())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m, ok := parsed.(MethodId)
	if !ok {
		t.Fatalf("expected MethodId, got %T", parsed)
	}
	if m.Name() != "a,b)" || m.Class().(NamedClassId).Name() != "we\"ird\\name" {
		t.Errorf("unexpected parse result %s", m.Describe())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	inputs := []string{
		``,
		`class`,
		`class(A)`,
		`class("A")x`,
		`class("A"`,
		`class('A')`,
		"class(`A`)",
		`class("")`,
		`klass("A")`,
		`function("A",1)`,
		`anonymous-class("a.php",01,2)`,
		`anonymous-class("a.php",0,2)`,
		`anonymous-class("a.php",-1,2)`,
		`anonymous-class("a.php",1)`,
		`method(function("f"),"m")`,
		`method(class("A"))`,
		`parameter(class("A"),"x")`,
		`parameter(property(class("A"),"p"),"x")`,
		`class-constant(constant("A"),"B")`,
		`method(class("A"), "f")`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			id, err := Parse(in)
			if err == nil {
				t.Fatalf("Parse(%q) = %s, expected error", in, id.Encode())
			}
			if !errors.Is(err, ErrMalformedEncoding) {
				t.Errorf("error %v does not wrap ErrMalformedEncoding", err)
			}
			var syn *SyntaxError
			if !errors.As(err, &syn) {
				t.Errorf("error %T is not a *SyntaxError", err)
			}
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustParse("nope")
}
