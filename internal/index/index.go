package index

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"declid/internal/declid"
	"declid/internal/declmap"
	"declid/internal/diag"
	"declid/internal/idmap"
	"declid/internal/manifest"
)

// Digest is a SHA-256 over the manifest paths and contents, in order.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

func digestOf(paths []string, sums [][32]byte) Digest {
	h := sha256.New()
	for i, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write(sums[i][:])
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// DigestFiles computes the digest Build would give the same manifests
// without decoding them. Files of unsupported formats contribute a zero sum
// as in Build.
func DigestFiles(paths []string) (Digest, error) {
	sums := make([][32]byte, len(paths))
	for i, p := range paths {
		if _, err := manifest.FormatOf(p); err != nil {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return Digest{}, fmt.Errorf("index: %w", err)
		}
		sums[i] = sha256.Sum256(data)
	}
	return digestOf(paths, sums), nil
}

// Index is the merged view of a set of manifests.
type Index struct {
	Declarations *declmap.DeclarationMap[manifest.Declaration]
	Bag          *diag.Bag
	Digest       Digest
	Files        []string
}

// Len reports the number of declarations.
func (ix *Index) Len() int { return ix.Declarations.Len() }

func (ix *Index) derive(d *declmap.DeclarationMap[manifest.Declaration]) *Index {
	return &Index{Declarations: d, Bag: ix.Bag, Digest: ix.Digest, Files: ix.Files}
}

// Filter keeps the declarations for which keep reports true.
func (ix *Index) Filter(keep func(d manifest.Declaration, id declid.Id) bool) *Index {
	return ix.derive(ix.Declarations.Filter(keep))
}

// ByKind keeps declarations of the given kinds. No kinds keeps everything.
func (ix *Index) ByKind(kinds ...declid.Kind) *Index {
	if len(kinds) == 0 {
		return ix
	}
	return ix.Filter(func(_ manifest.Declaration, id declid.Id) bool {
		for _, k := range kinds {
			if id.Kind() == k {
				return true
			}
		}
		return false
	})
}

// Page returns the window [offset, offset+limit) of the declarations with
// idmap.Map.Slice rules.
func (ix *Index) Page(offset, limit int) *Index {
	return ix.derive(ix.Declarations.Slice(offset, limit))
}

// Restore re-attaches what decoding loses: payload ids and anonymous class
// runtime names. Cached indexes go through it.
func Restore(m *idmap.Map[declid.Id, manifest.Declaration]) *idmap.Map[declid.Id, manifest.Declaration] {
	names := runtimeNames(m)
	return idmap.Collect[declid.Id, manifest.Declaration](func(yield func(declid.Id, manifest.Declaration) bool) {
		for id, d := range m.All() {
			id = declid.Bind(id, names)
			d.Id = id
			if !yield(id, d) {
				return
			}
		}
	})
}

func runtimeNames(m *idmap.Map[declid.Id, manifest.Declaration]) declid.RuntimeNames {
	names := make(map[string]string)
	for id, d := range m.All() {
		if _, ok := id.(declid.AnonymousClassId); ok && d.RuntimeName != "" {
			names[id.Encode()] = d.RuntimeName
		}
	}
	return func(a declid.AnonymousClassId) (string, bool) {
		name, ok := names[a.Encode()]
		return name, ok
	}
}
