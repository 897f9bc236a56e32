package trace

import (
	"context"
	"time"
)

type tracerKey struct{}
type spanKey struct{}

// WithTracer returns ctx carrying t.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// SpanID returns the id of the innermost span started on ctx, or 0.
func SpanID(ctx context.Context) uint64 {
	if ctx != nil {
		if id, ok := ctx.Value(spanKey{}).(uint64); ok {
			return id
		}
	}
	return 0
}

// Span is an open span. A nil or disabled Span ignores every call.
type Span struct {
	t       Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   []Attr
}

// Start opens a span under the span on ctx. The returned context carries the
// new span so nested Start and Mark calls attach to it. When the scope is
// not recorded the span is disabled and ctx is returned unchanged.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	t := FromContext(ctx)
	if !t.Level().Allows(scope) {
		return ctx, nil
	}
	s := &Span{
		t:       t,
		id:      spans.Add(1),
		parent:  SpanID(ctx),
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Record(&Event{At: s.started, Kind: KindBegin, Scope: scope, Span: s.id, Parent: s.parent, Name: name})
	return context.WithValue(ctx, spanKey{}, s.id), s
}

// ID returns the span id; 0 for a disabled span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Attr annotates the end event.
func (s *Span) Attr(key, value string) *Span {
	if s != nil {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// End records the end event and returns the span's duration. Calling End
// more than once records a single end event.
func (s *Span) End(note string) time.Duration {
	if s == nil || s.t == nil {
		return 0
	}
	now := time.Now()
	elapsed := now.Sub(s.started)
	s.t.Record(&Event{
		At:      now,
		Kind:    KindEnd,
		Scope:   s.scope,
		Span:    s.id,
		Parent:  s.parent,
		Name:    s.name,
		Note:    note,
		Elapsed: elapsed,
		Attrs:   s.attrs,
	})
	s.t = nil
	return elapsed
}

// Mark records a point event under the span on ctx.
func Mark(ctx context.Context, scope Scope, name, note string) {
	t := FromContext(ctx)
	if !t.Level().Allows(scope) {
		return
	}
	t.Record(&Event{At: time.Now(), Kind: KindMark, Scope: scope, Parent: SpanID(ctx), Name: name, Note: note})
}
