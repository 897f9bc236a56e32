// Package trace records what a declid command did while it ran.
//
// Spans mark the command, the index build and its phases (load, merge,
// bind), and each manifest load. Marks record single points such as a
// declaration overriding an earlier one. Events go to a stream (stderr or a
// file, as text or NDJSON), to an in-memory ring that is printed when a
// command fails, or to both.
//
//	tr, _ := trace.New(trace.Config{Level: trace.LevelDetail, Mode: trace.ModeRing})
//	ctx = trace.WithTracer(ctx, tr)
//	ctx, span := trace.Start(ctx, trace.ScopeIndex, "merge")
//	defer span.End("")
//	trace.Mark(ctx, trace.ScopeEntry, "override:f()", "vendor.yaml")
//
// The level decides which scopes are recorded: phase keeps the command and
// index scopes, detail adds per-manifest spans, debug adds per-declaration
// marks. The error level records nothing.
package trace
