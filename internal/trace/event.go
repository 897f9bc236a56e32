package trace

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind distinguishes span boundaries from marks.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindMark
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindMark:
		return "mark"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) arrow() string {
	switch k {
	case KindBegin:
		return "→"
	case KindEnd:
		return "←"
	}
	return "•"
}

// Attr is a key/value annotation on an end event.
type Attr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is one recorded trace event. Seq is assigned by the first tracer
// that records it.
type Event struct {
	Seq     uint64
	At      time.Time
	Kind    Kind
	Scope   Scope
	Span    uint64
	Parent  uint64
	Name    string
	Note    string
	Elapsed time.Duration
	Attrs   []Attr
}

// Format selects how events are written.
type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
)

// ParseFormat accepts auto, text, ndjson and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("unknown trace format %q, want auto|text|ndjson", s)
}

// formatFor resolves FormatAuto by the output file extension.
func formatFor(f Format, path string) Format {
	if f != FormatAuto {
		return f
	}
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

// Append renders ev in format f, newline terminated, onto b.
func (ev *Event) Append(b []byte, f Format) []byte {
	if f == FormatNDJSON {
		return ev.appendJSON(b)
	}
	return ev.appendText(b)
}

// appendText writes lines like
//
//	12:00:01.250 #7     ← file:decl/app.toml 1.2ms (ok) entries=4
func (ev *Event) appendText(b []byte) []byte {
	b = ev.At.AppendFormat(b, "15:04:05.000")
	b = fmt.Appendf(b, " #%-5d ", ev.Seq)
	for range int(ev.Scope) - int(ScopeCommand) {
		b = append(b, "  "...)
	}
	b = append(b, ev.Kind.arrow()...)
	b = append(b, ' ')
	b = append(b, ev.Name...)
	if ev.Kind == KindEnd {
		b = append(b, ' ')
		b = append(b, ev.Elapsed.Round(time.Microsecond).String()...)
	}
	if ev.Note != "" {
		b = append(b, " ("...)
		b = append(b, ev.Note...)
		b = append(b, ')')
	}
	for _, a := range ev.Attrs {
		b = append(b, ' ')
		b = append(b, a.Key...)
		b = append(b, '=')
		b = append(b, a.Value...)
	}
	return append(b, '\n')
}

type jsonEvent struct {
	Seq       uint64 `json:"seq"`
	At        string `json:"at"`
	Kind      string `json:"kind"`
	Scope     string `json:"scope"`
	Span      uint64 `json:"span,omitempty"`
	Parent    uint64 `json:"parent,omitempty"`
	Name      string `json:"name"`
	Note      string `json:"note,omitempty"`
	ElapsedUS int64  `json:"elapsed_us,omitempty"`
	Attrs     []Attr `json:"attrs,omitempty"`
}

func (ev *Event) appendJSON(b []byte) []byte {
	data, err := json.Marshal(jsonEvent{
		Seq:       ev.Seq,
		At:        ev.At.Format(time.RFC3339Nano),
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		Span:      ev.Span,
		Parent:    ev.Parent,
		Name:      ev.Name,
		Note:      ev.Note,
		ElapsedUS: ev.Elapsed.Microseconds(),
		Attrs:     ev.Attrs,
	})
	if err != nil {
		return b
	}
	b = append(b, data...)
	return append(b, '\n')
}
