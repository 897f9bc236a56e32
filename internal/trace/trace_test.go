package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestLevelAllows(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeCommand, false},
		{LevelError, ScopeCommand, false},
		{LevelPhase, ScopeIndex, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeEntry, false},
		{LevelDebug, ScopeEntry, true},
	}
	for _, tt := range tests {
		if got := tt.level.Allows(tt.scope); got != tt.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParsers(t *testing.T) {
	if l, err := ParseLevel(" DETAIL "); err != nil || l != LevelDetail {
		t.Errorf("ParseLevel(DETAIL) = %v, %v", l, err)
	}
	if l, err := ParseLevel(""); err != nil || l != LevelOff {
		t.Errorf("ParseLevel(\"\") = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) succeeded")
	}
	if m, err := ParseMode("Both"); err != nil || m != ModeBoth {
		t.Errorf("ParseMode(Both) = %v, %v", m, err)
	}
	if _, err := ParseMode(""); err == nil {
		t.Error("ParseMode(\"\") succeeded")
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStream(&buf, LevelDetail, FormatNDJSON))

	ctx, span := Start(ctx, ScopeIndex, "index")
	Mark(ctx, ScopeFile, "file:a.toml", "loaded")
	Mark(ctx, ScopeEntry, "entry:f()", "")
	span.Attr("files", "1").End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d events:\n%s", len(lines), buf.String())
	}
	var mark, end jsonEvent
	if err := json.Unmarshal([]byte(lines[1]), &mark); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[2]), &end); err != nil {
		t.Fatal(err)
	}
	if mark.Kind != "mark" || mark.Parent != span.ID() {
		t.Errorf("mark = %+v", mark)
	}
	if end.Kind != "end" || end.Scope != "index" || end.Span != span.ID() || end.Note != "ok" {
		t.Errorf("end = %+v", end)
	}
	if len(end.Attrs) != 1 || end.Attrs[0] != (Attr{Key: "files", Value: "1"}) {
		t.Errorf("attrs = %v", end.Attrs)
	}
}

func TestRingKeepsNewest(t *testing.T) {
	ring := NewRing(2, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	for _, name := range []string{"a", "b", "c"} {
		Mark(ctx, ScopeEntry, name, "")
	}
	events := ring.Events()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Seq >= events[1].Seq {
		t.Errorf("sequence not increasing: %d, %d", events[0].Seq, events[1].Seq)
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "• b") || !strings.Contains(buf.String(), "• c") {
		t.Errorf("dump = %q", buf.String())
	}
}

func TestNewBoth(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	ctx := WithTracer(context.Background(), tr)
	_, span := Start(ctx, ScopeCommand, "declid index")
	span.End("")
	span.End("again")

	ring, ok := RingOf(tr)
	if !ok {
		t.Fatal("no ring behind ModeBoth")
	}
	events := ring.Events()
	if len(events) != 2 {
		t.Fatalf("ring holds %d events", len(events))
	}
	if !strings.Contains(buf.String(), "→ declid index") || !strings.Contains(buf.String(), "← declid index") {
		t.Errorf("stream = %q", buf.String())
	}
	if !strings.Contains(buf.String(), "#"+strconv.FormatUint(events[1].Seq, 10)) {
		t.Error("stream and ring disagree on sequence numbers")
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewStreamToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.ndjson")
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	_, span := Start(WithTracer(context.Background(), tr), ScopeIndex, "index")
	span.End("")
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte(`{"seq":`)) {
		t.Errorf(".ndjson path did not select NDJSON: %q", data)
	}
}

func TestDisabledTracing(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	ctx := context.Background()
	next, span := Start(ctx, ScopeCommand, "x")
	if next != ctx || span.ID() != 0 || span.End("") != 0 {
		t.Error("disabled span is live")
	}
	span.Attr("k", "v")
}

func TestStartNestsSpans(t *testing.T) {
	ring := NewRing(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, outer := Start(ctx, ScopeCommand, "index")
	_, inner := Start(ctx, ScopeFile, "file:a.toml")
	inner.End("")
	outer.End("")

	events := ring.Events()
	if len(events) != 4 {
		t.Fatalf("got %d events", len(events))
	}
	if events[1].Parent != outer.ID() {
		t.Errorf("inner parent = %d, want %d", events[1].Parent, outer.ID())
	}
	if SpanID(ctx) != outer.ID() {
		t.Error("context does not carry the outer span")
	}
	if FromContext(context.Background()) != Nop {
		t.Error("empty context does not yield Nop")
	}
}
