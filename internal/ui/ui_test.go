package ui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"declid/internal/declid"
	"declid/internal/index"
)

func TestKindLabel(t *testing.T) {
	tests := map[declid.Kind]string{
		declid.KindNamedClass:     "Class",
		declid.KindAnonymousClass: "Anonymous Class",
		declid.KindClassConstant:  "Class Constant",
		declid.KindParameter:      "Parameter",
	}
	for k, want := range tests {
		if got := KindLabel(k); got != want {
			t.Errorf("KindLabel(%v) = %q, want %q", k, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"declarations", 8, "decla..."},
		{"abcdef", 2, "ab"},
		{"日本語テキスト", 7, "日本..."},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func buildIndex(t *testing.T, src string) *index.Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.toml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	ix, err := index.Build(context.Background(), []string{path}, index.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

func TestWriteTable(t *testing.T) {
	ix := buildIndex(t, `
[[declaration]]
id = 'class("App\\User")'
summary = "a user"

[[declaration]]
id = 'method(class("App\\User"),"save")'
runtime = true
`)
	var buf bytes.Buffer
	if err := WriteTable(&buf, ix, TableOptions{First: 1}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "#  KIND") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1  Class ") || !strings.HasSuffix(lines[1], "a user") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], `App\User::save() *`) || !strings.HasPrefix(lines[2], "2  Method") {
		t.Errorf("row 2 = %q", lines[2])
	}
	// columns line up
	col := strings.Index(lines[0], "DECLARATION")
	if strings.Index(lines[1], `App\User`) != col {
		t.Errorf("misaligned:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteTable(&buf, ix, TableOptions{Width: 10}); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if len(line) > 10 {
			t.Errorf("line wider than 10: %q", line)
		}
	}
}

func TestWriteTableEmpty(t *testing.T) {
	ix := buildIndex(t, "")
	var buf bytes.Buffer
	if err := WriteTable(&buf, ix, TableOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no declarations") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestProgressModelTracksEvents(t *testing.T) {
	m := NewProgressModel("indexing", []string{"a.toml", "b.toml", "a.toml"}, nil).(*progressModel)
	if len(m.rows) != 2 {
		t.Fatalf("rows = %d, want duplicates folded", len(m.rows))
	}

	m.applyEvent(index.Event{File: "a.toml", Stage: index.StageLoad, Status: index.StatusWorking})
	if got := statusLabel(index.StageLoad, m.rows[0].status); got != "loading" {
		t.Errorf("status = %q", got)
	}
	if got := m.percent(); got != 0.2 {
		t.Errorf("percent = %v, want 0.2", got)
	}

	m.applyEvent(index.Event{File: "a.toml", Stage: index.StageLoad, Status: index.StatusDone, Entries: 3, Elapsed: 1500 * time.Microsecond})
	m.applyEvent(index.Event{File: "b.toml", Stage: index.StageLoad, Status: index.StatusError})
	m.applyEvent(index.Event{File: "unknown.toml", Stage: index.StageLoad, Status: index.StatusDone})
	m.applyEvent(index.Event{Stage: index.StageMerge, Status: index.StatusWorking})
	if !strings.Contains(m.View(), "indexing (merging)") {
		t.Errorf("header does not show the merge stage:\n%s", m.View())
	}
	m.applyEvent(index.Event{Stage: index.StageMerge, Status: index.StatusDone, Entries: 3})
	m.applyEvent(index.Event{Stage: index.StageBind, Status: index.StatusDone, Entries: 3})
	if got := m.percent(); got < 0.999 {
		t.Errorf("percent = %v, want 1", got)
	}

	view := m.View()
	for _, want := range []string{"indexing", "a.toml (3)", "2ms", "error", "3 declarations, 1 manifests failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q:\n%s", want, view)
		}
	}
}

func TestProgressModelQuitsWhenEventsClose(t *testing.T) {
	ch := make(chan index.Event)
	close(ch)
	m := NewProgressModel("indexing", []string{"a.toml"}, ch).(*progressModel)
	msg := m.next()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("msg = %T, want doneMsg", msg)
	}
	if _, cmd := m.Update(msg); cmd == nil || !m.done {
		t.Error("model did not quit")
	}
	if !strings.HasPrefix(m.View(), "✓ indexing") {
		t.Errorf("view = %q", m.View())
	}
}
