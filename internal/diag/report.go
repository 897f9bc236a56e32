package diag

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Builder collects notes for one diagnostic until Emit.
type Builder struct {
	r    Reporter
	d    Diagnostic
	sent bool
}

func newBuilder(r Reporter, sev Severity, code Code, at Location, msg string) *Builder {
	return &Builder{r: r, d: New(sev, code, at, msg)}
}

func ReportError(r Reporter, code Code, at Location, msg string) *Builder {
	return newBuilder(r, SevError, code, at, msg)
}

func ReportWarning(r Reporter, code Code, at Location, msg string) *Builder {
	return newBuilder(r, SevWarning, code, at, msg)
}

func ReportInfo(r Reporter, code Code, at Location, msg string) *Builder {
	return newBuilder(r, SevInfo, code, at, msg)
}

func (b *Builder) WithNote(loc Location, msg string) *Builder {
	b.d = b.d.WithNote(loc, msg)
	return b
}

// Emit reports the diagnostic; later calls do nothing.
func (b *Builder) Emit() {
	if b.sent {
		return
	}
	b.sent = true
	if b.r != nil {
		b.r.Report(b.d)
	}
}

// BagReporter appends to Bag. A nil Bag drops everything.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

type dedupKey struct {
	code Code
	at   Location
	msg  string
}

type dedup struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// Dedup forwards to next only the first diagnostic with a given code,
// location and message. It is not safe for concurrent use.
func Dedup(next Reporter) Reporter {
	return &dedup{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *dedup) Report(d Diagnostic) {
	key := dedupKey{code: d.Code, at: d.Primary, msg: d.Message}
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	r.next.Report(d)
}
