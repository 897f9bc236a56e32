// Package diag holds the problems found while loading manifests, building
// the index and reading the cache.
//
// A Diagnostic has a Severity, a Code with a stable id such as MAN1002, a
// one-line message, the manifest Location it concerns and optional notes
// pointing at related locations (for example where a duplicated declaration
// was first listed).
//
// Producers write to a Reporter:
//
//	diag.ReportWarning(r, diag.ManDuplicate, loc, "f() is listed more than once").
//		WithNote(first, "first listed here").
//		Emit()
//
// BagReporter appends to a Bag; Dedup drops repeats before they reach the
// next Reporter. Rendering for terminals and JSON lives in diagfmt.
package diag
