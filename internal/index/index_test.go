package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"declid/internal/declid"
	"declid/internal/diag"
	"declid/internal/manifest"
	"declid/internal/observ"
	"declid/internal/trace"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func encodings(ix *Index) []string {
	var out []string
	for id := range ix.Declarations.All() {
		out = append(out, id.Encode())
	}
	return out
}

const baseTOML = `
[[declaration]]
id = 'function("f")'
summary = "base f"

[[declaration]]
id = 'method(class("C"),"m")'

[[declaration]]
id = 'constant("X")'
`

const overrideYAML = `
declaration:
  - id: 'class("D")'
  - id: 'function("f")'
    summary: override f
`

func TestBuildMergesInArgumentOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{"base.toml": baseTOML, "over.yaml": overrideYAML})
	paths := []string{filepath.Join(dir, "base.toml"), filepath.Join(dir, "over.yaml")}

	ix, err := Build(context.Background(), paths, Options{Jobs: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{
		`method(class("C"),"m")`,
		`constant("X")`,
		`class("D")`,
		`function("f")`,
	}
	if got := encodings(ix); strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("order = %v\nwant  %v", got, want)
	}
	f, err := ix.Declarations.Get(declid.Function("f"))
	if err != nil || f.Summary != "override f" || f.Source.File != paths[1] {
		t.Errorf("f = %+v, %v", f, err)
	}

	items := ix.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IdxOverride || items[0].Notes[0].Loc.File != paths[0] {
		t.Errorf("diagnostics:\n%s", ix.Bag.Format(true))
	}
	if len(ix.Files) != 2 || ix.Digest.IsZero() {
		t.Errorf("files=%v digest=%s", ix.Files, ix.Digest)
	}
}

func TestDigestFollowsContentAndOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.toml": baseTOML, "b.yaml": overrideYAML})
	a, b := filepath.Join(dir, "a.toml"), filepath.Join(dir, "b.yaml")

	build := func(paths ...string) Digest {
		t.Helper()
		ix, err := Build(context.Background(), paths, Options{})
		if err != nil {
			t.Fatal(err)
		}
		return ix.Digest
	}

	d1 := build(a, b)
	if pre, err := DigestFiles([]string{a, b}); err != nil || pre != d1 {
		t.Errorf("DigestFiles = %s, %v; want %s", pre, err, d1)
	}
	if d2 := build(a, b); d1 != d2 {
		t.Error("digest is not deterministic")
	}
	if d3 := build(b, a); d1 == d3 {
		t.Error("digest ignores order")
	}
	if err := os.WriteFile(b, []byte(overrideYAML+"  - id: 'class(\"E\")'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if d4 := build(a, b); d1 == d4 {
		t.Error("digest ignores content")
	}
}

func TestBuildBindsRuntimeNamesAcrossManifests(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"anon.toml": `
[[declaration]]
kind = "anonymous-class"
anonymous = { file = "x.php", line = 3, column = 1 }
runtime = true
runtime_name = "class@anonymous/x.php:3$0"
`,
		"members.toml": `
[[declaration]]
id = 'method(anonymous-class("x.php",3,1),"run")'
runtime = true

[[declaration]]
id = 'property(anonymous-class("y.php",1,0),"p")'
runtime = true
`,
	})
	ix, err := Build(context.Background(), []string{filepath.Join(dir, "anon.toml"), filepath.Join(dir, "members.toml")}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	method := declid.Method(declid.AnonymousClass("x.php", 3, 1), "run")
	stored, ok := ix.Declarations.Id(method)
	if !ok {
		t.Fatal("method missing")
	}
	class := stored.(declid.MethodId).Class().(declid.AnonymousClassId)
	if name, ok := class.RuntimeName(); !ok || name != "class@anonymous/x.php:3$0" {
		t.Errorf("runtime name = %q, %v", name, ok)
	}
	d, _ := ix.Declarations.Lookup(method)
	if _, ok := d.Id.(declid.MethodId).Class().(declid.AnonymousClassId).RuntimeName(); !ok {
		t.Error("payload id was not bound")
	}

	items := ix.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IdxRuntimeOrphan {
		t.Errorf("diagnostics:\n%s", ix.Bag.Format(true))
	}
}

func TestBuildCollectsManifestProblems(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"broken.toml": "[[declaration]\n",
		"empty.yaml":  "",
		"bad.toml":    "[[declaration]]\nid = 'nope'\n",
		"notes.txt":   "",
	})
	var paths []string
	for _, n := range []string{"broken.toml", "empty.yaml", "bad.toml", "notes.txt"} {
		paths = append(paths, filepath.Join(dir, n))
	}
	ix, err := Build(context.Background(), paths, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ix.Len() != 0 {
		t.Errorf("declarations = %v", encodings(ix))
	}
	codes := map[diag.Code]bool{}
	for _, d := range ix.Bag.Items() {
		codes[d.Code] = true
	}
	for _, c := range []diag.Code{diag.ManDecode, diag.IdxEmpty, diag.ManInvalidId, diag.ManUnsupportedFormat} {
		if !codes[c] {
			t.Errorf("missing %s in:\n%s", c.ID(), ix.Bag.Format(true))
		}
	}
}

func TestBuildFailsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Build(context.Background(), []string{filepath.Join(dir, "missing.toml")}, Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildHonoursCancellation(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.toml": baseTOML})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, []string{filepath.Join(dir, "a.toml")}, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func TestBuildReportsProgressTimingsAndTrace(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.toml": baseTOML, "b.yaml": overrideYAML})
	paths := []string{filepath.Join(dir, "a.toml"), filepath.Join(dir, "b.yaml")}

	sink := &recordingSink{}
	timer := observ.NewTimer()
	ring := trace.NewRing(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)

	if _, err := Build(ctx, paths, Options{Progress: sink, Timer: timer}); err != nil {
		t.Fatal(err)
	}

	done := map[string]int{}
	for _, ev := range sink.events {
		if ev.Stage == StageLoad && ev.Status == StatusDone {
			done[ev.File] = ev.Entries
		}
	}
	if done[paths[0]] != 3 || done[paths[1]] != 2 {
		t.Errorf("load events = %v", done)
	}
	last := sink.events[len(sink.events)-1]
	if last.Stage != StageBind || last.Status != StatusDone || last.Entries != 4 {
		t.Errorf("last event = %+v", last)
	}

	var names []string
	for _, p := range timer.Report().Phases {
		names = append(names, p.Name)
	}
	joined := strings.Join(names, ",")
	for _, n := range []string{"load", "merge", "bind", "load " + paths[0]} {
		if !strings.Contains(joined, n) {
			t.Errorf("phase %q missing from %v", n, names)
		}
	}

	var sawOverride, sawFile bool
	for _, ev := range ring.Events() {
		sawOverride = sawOverride || strings.HasPrefix(ev.Name, "override:f()")
		sawFile = sawFile || ev.Name == "file:"+paths[1]
	}
	if !sawOverride || !sawFile {
		t.Errorf("trace events missing: override=%v file=%v", sawOverride, sawFile)
	}
}

func TestPageAndByKind(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.toml": baseTOML})
	ix, err := Build(context.Background(), []string{filepath.Join(dir, "a.toml")}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	page := ix.Page(1, 1)
	if got := encodings(page); len(got) != 1 || got[0] != `method(class("C"),"m")` {
		t.Errorf("page = %v", got)
	}
	if page.Digest != ix.Digest || page.Bag != ix.Bag {
		t.Error("page lost index metadata")
	}
	funcs := ix.ByKind(declid.KindFunction, declid.KindConstant)
	if got := encodings(funcs); len(got) != 2 {
		t.Errorf("by kind = %v", got)
	}
	if ix.ByKind() != ix {
		t.Error("ByKind() without kinds should return the index")
	}
	if ix.Filter(func(d manifest.Declaration, _ declid.Id) bool { return d.Summary != "" }).Len() != 1 {
		t.Error("Filter by summary")
	}
}
