package diag

import (
	"cmp"
	"slices"
	"strings"
)

// Bag holds up to a fixed number of diagnostics. Its query methods accept a
// nil Bag.
type Bag struct {
	items []Diagnostic
	limit int
}

// NewBag returns a Bag that keeps the first limit diagnostics.
func NewBag(limit int) *Bag {
	limit = max(limit, 0)
	return &Bag{items: make([]Diagnostic, 0, min(limit, 64)), limit: limit}
}

// Add appends d and reports false when the Bag is full.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.limit {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Cap is the number of diagnostics the Bag keeps.
func (b *Bag) Cap() int {
	if b == nil {
		return 0
	}
	return b.limit
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Items returns the backing slice. Do not modify it.
func (b *Bag) Items() []Diagnostic {
	if b == nil {
		return nil
	}
	return b.items
}

// Worst returns the highest severity in the Bag and false when it is empty.
func (b *Bag) Worst() (Severity, bool) {
	if b.Len() == 0 {
		return SevInfo, false
	}
	worst := SevInfo
	for _, d := range b.items {
		worst = max(worst, d.Severity)
	}
	return worst, true
}

func (b *Bag) HasErrors() bool {
	sev, ok := b.Worst()
	return ok && sev >= SevError
}

func (b *Bag) HasWarnings() bool {
	sev, ok := b.Worst()
	return ok && sev >= SevWarning
}

// Merge appends every diagnostic of other, raising the limit to fit them.
func (b *Bag) Merge(other *Bag) {
	if other.Len() == 0 {
		return
	}
	b.items = append(b.items, other.items...)
	b.limit = max(b.limit, len(b.items))
}

// Sort orders by file, line, severity (most severe first) and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Line, y.Primary.Line),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup keeps the first diagnostic per code and primary location.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		at   Location
	}
	seen := make(map[key]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := key{d.Code, d.Primary}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}

// Format renders one line per diagnostic, followed by its notes when
// includeNotes is set:
//
//	error MAN1002 decl/app.toml:4 invalid declaration id: ...
//	note MAN1003 decl/app.toml:2 first listed here
func (b *Bag) Format(includeNotes bool) string {
	var lines []string
	for _, d := range b.Items() {
		lines = append(lines, line(d.Severity.Label(), d.Code, d.Primary, d.Message))
		if includeNotes {
			for _, n := range d.Notes {
				lines = append(lines, line("note", d.Code, n.Loc, n.Msg))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func line(label string, code Code, at Location, msg string) string {
	return label + " " + code.ID() + " " + at.String() + " " + OneLine(msg)
}

// OneLine folds line breaks in msg into spaces.
func OneLine(msg string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg))
}
