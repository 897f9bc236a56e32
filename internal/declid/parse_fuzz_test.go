package declid

import (
	"testing"
	"time"
)

const maxFuzzInput = 4 << 10

// parseTimeout bounds a single Parse; exceeding it means the parser loops.
const parseTimeout = 5 * time.Second

func addEncodingSeeds(f *testing.F) {
	for _, s := range []string{
		``,
		`class("A")`,
		`class("App\\Models\\User")`,
		`anonymous-class("src/x.php",3,9)`,
		`function("f")`,
		`method(class("A"),"m")`,
		`method(anonymous-class("a.php",1,0),"run")`,
		`parameter(function("f"),"x")`,
		`parameter(method(class("A"),"m"),"y")`,
		`constant("PHP_VERSION")`,
		`class-constant(class("A"),"K")`,
		`property(class("A"),"p")`,
		`method(class("A"),"m"`,
		`class("é\"\\")`,
		`parameter(constant("X"),"x")`,
	} {
		f.Add(s)
	}
}

// FuzzParseRoundTrip checks that every accepted encoding is canonical up to
// re-encoding: Encode(Parse(s)) parses back to an equal id.
func FuzzParseRoundTrip(f *testing.F) {
	addEncodingSeeds(f)
	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > maxFuzzInput {
			input = input[:maxFuzzInput]
		}
		id, err := Parse(input)
		if err != nil {
			return
		}
		if err := Validate(id); err != nil {
			t.Fatalf("Parse(%q) returned an invalid id: %v", input, err)
		}
		enc := id.Encode()
		again, err := Parse(enc)
		if err != nil {
			t.Fatalf("Parse(Encode(Parse(%q))) = %v", input, err)
		}
		if !Equal(id, again) || again.Encode() != enc {
			t.Fatalf("round trip of %q changed the id: %s -> %s", input, enc, again.Encode())
		}
	})
}

// FuzzParseNoHang runs Parse under a deadline.
func FuzzParseNoHang(f *testing.F) {
	addEncodingSeeds(f)
	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > maxFuzzInput {
			input = input[:maxFuzzInput]
		}
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = Parse(input)
		}()
		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("Parse did not return within %v for %q", parseTimeout, input)
		}
	})
}
