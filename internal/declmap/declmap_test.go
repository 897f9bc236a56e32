package declmap

import (
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"declid/internal/declid"
	"declid/internal/idmap"
)

func TestZeroValueIsUsable(t *testing.T) {
	var d DeclarationMap[int]
	if d.Len() != 0 || d.Has(declid.Function("f")) {
		t.Fatal("zero map is not empty")
	}
	next := d.With(declid.Function("f"), 1)
	if next.Len() != 1 || d.Len() != 0 {
		t.Fatalf("With: next=%d zero=%d", next.Len(), d.Len())
	}
	var nilMap *DeclarationMap[int]
	if nilMap.Len() != 0 || nilMap.IdMap().Len() != 0 {
		t.Fatal("nil map is not empty")
	}
}

func TestGetAbsentIsKeyNotFound(t *testing.T) {
	d := New[string]().With(declid.Class("A"), "a")
	_, err := d.Get(declid.Property(declid.Class("A"), "p"))
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if errors.Is(err, idmap.ErrNotDefined) {
		t.Error("facade error also matches idmap.ErrNotDefined")
	}
	if v, err := d.Get(declid.Class("A")); err != nil || v != "a" {
		t.Errorf("Get(A) = %q, %v", v, err)
	}
}

func TestSemanticsMatchIdMap(t *testing.T) {
	f := declid.Function("f")
	m := declid.Method(declid.Class("C"), "m")
	c := declid.Constant("X")

	d := New[int]().With(f, 1).With(m, 2).With(c, 3).With(m, 20)
	raw := idmap.New[declid.Id, int]().With(f, 1).With(m, 2).With(c, 3).With(m, 20)

	same := func(t *testing.T, got *DeclarationMap[int], want *idmap.Map[declid.Id, int]) {
		t.Helper()
		gotIds, wantIds := got.Ids(), want.Ids()
		if len(gotIds) != len(wantIds) {
			t.Fatalf("ids %v, want %v", gotIds, wantIds)
		}
		for i := range wantIds {
			gv, _ := got.Lookup(gotIds[i])
			wv, _ := want.Lookup(wantIds[i])
			if !gotIds[i].Equal(wantIds[i]) || gv != wv {
				t.Fatalf("entry %d: %s=%d, want %s=%d", i, gotIds[i], gv, wantIds[i], wv)
			}
		}
	}

	same(t, d, raw)
	same(t, d.Without(f), raw.Without(f))
	same(t, d.Slice(1, 1), raw.Slice(1, 1))
	other := New[int]().With(f, 100)
	same(t, d.Merge(other), raw.Merge(other.IdMap()))
	same(t, d.Filter(func(v int, _ declid.Id) bool { return v > 1 }), raw.Filter(func(v int, _ declid.Id) bool { return v > 1 }))
}

func TestMsgpack(t *testing.T) {
	d := New[string]().With(declid.Function("f"), "x")
	data, err := msgpack.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got DeclarationMap[string]
	if err := msgpack.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v, err := got.Get(declid.Function("f")); err != nil || v != "x" {
		t.Errorf("Get = %q, %v", v, err)
	}
	if err := msgpack.Unmarshal(data, d); !errors.Is(err, idmap.ErrUnsupportedMutation) {
		t.Errorf("decode into built map: %v", err)
	}
	if err := msgpack.Unmarshal(data, New[string]()); !errors.Is(err, idmap.ErrUnsupportedMutation) {
		t.Errorf("decode into New(): %v", err)
	}
}
