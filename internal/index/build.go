package index

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"declid/internal/declid"
	"declid/internal/declmap"
	"declid/internal/diag"
	"declid/internal/idmap"
	"declid/internal/manifest"
	"declid/internal/observ"
	"declid/internal/trace"
)

// Options controls Build.
type Options struct {
	// Jobs limits parallel manifest loads; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps each manifest's diagnostics.
	MaxDiagnostics int
	Timer          *observ.Timer
	Progress       ProgressSink
}

type fileResult struct {
	sum   [32]byte
	decls *idmap.Map[declid.Id, manifest.Declaration]
	bag   *diag.Bag
}

// Build loads the manifests in parallel and merges them in argument order:
// a declaration listed by a later manifest replaces the earlier payload and
// moves to the later manifest's position. Problems inside manifests end up
// in Index.Bag; only I/O failures and cancellation return an error.
func Build(ctx context.Context, paths []string, opts Options) (*Index, error) {
	ctx, span := trace.Start(ctx, trace.ScopeIndex, "index")
	defer span.End("")
	span.Attr("files", strconv.Itoa(len(paths)))

	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}

	results, err := load(ctx, paths, opts)
	if err != nil {
		emit(opts.Progress, Event{Stage: StageLoad, Status: StatusError, Err: err})
		return nil, err
	}

	bag := diag.NewBag(opts.MaxDiagnostics * max(len(paths), 1))
	merged := merge(ctx, paths, results, bag, opts)
	bound := bind(ctx, merged, bag, opts)

	sums := make([][32]byte, len(results))
	for i, r := range results {
		sums[i] = r.sum
	}
	ix := &Index{
		Declarations: declmap.FromIdMap(bound),
		Bag:          bag,
		Digest:       digestOf(paths, sums),
		Files:        append([]string(nil), paths...),
	}
	span.Attr("declarations", strconv.Itoa(ix.Len()))
	return ix, nil
}

func load(ctx context.Context, paths []string, opts Options) ([]fileResult, error) {
	phase := opts.Timer.Begin("load")
	defer func() { phase.End(fmt.Sprintf("%d manifests", len(paths))) }()

	for _, p := range paths {
		emit(opts.Progress, Event{File: p, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// each goroutine writes only its own slot
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(jobs, len(paths)), 1))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := loadFile(gctx, path, opts)
			if err != nil {
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func loadFile(ctx context.Context, path string, opts Options) (fileResult, error) {
	_, span := trace.Start(ctx, trace.ScopeFile, "file:"+path)
	phase := opts.Timer.Begin("load " + path)
	started := time.Now()
	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})

	res := fileResult{bag: diag.NewBag(opts.MaxDiagnostics)}
	reporter := diag.Dedup(diag.BagReporter{Bag: res.bag})
	done := func(note string) {
		span.End(note)
		phase.End(note)
		status := StatusDone
		if res.bag.HasErrors() {
			status = StatusError
		}
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: status, Entries: res.decls.Len(), Elapsed: time.Since(started)})
	}

	format, err := manifest.FormatOf(path)
	if err != nil {
		diag.ReportError(reporter, diag.ManUnsupportedFormat, diag.Location{File: path}, err.Error()).Emit()
		done("unsupported")
		return res, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		span.End("read failed")
		phase.End("read failed")
		return fileResult{}, fmt.Errorf("index: %w", err)
	}
	res.sum = sha256.Sum256(data)

	f, err := manifest.Parse(path, data, format)
	if err != nil {
		loc := diag.Location{File: path}
		var derr *manifest.DecodeError
		if errors.As(err, &derr) {
			loc.Line = derr.Line
			err = derr.Err
		}
		diag.ReportError(reporter, diag.ManDecode, loc, err.Error()).Emit()
		done("decode failed")
		return res, nil
	}

	res.decls = f.Build(reporter)
	if res.decls.Len() == 0 && !res.bag.HasErrors() {
		diag.ReportInfo(reporter, diag.IdxEmpty, diag.Location{File: path}, "manifest declares nothing").Emit()
	}
	span.Attr("entries", strconv.Itoa(res.decls.Len()))
	done("")
	return res, nil
}

func merge(ctx context.Context, paths []string, results []fileResult, bag *diag.Bag, opts Options) *idmap.Map[declid.Id, manifest.Declaration] {
	ctx, span := trace.Start(ctx, trace.ScopeIndex, "merge")
	defer span.End("")
	phase := opts.Timer.Begin("merge")
	emit(opts.Progress, Event{Stage: StageMerge, Status: StatusWorking})

	reporter := diag.BagReporter{Bag: bag}
	merged := idmap.New[declid.Id, manifest.Declaration]()
	for i, r := range results {
		bag.Merge(r.bag)
		for id, d := range r.decls.All() {
			prev, ok := merged.Lookup(id)
			if !ok || prev.Source.File == paths[i] {
				continue
			}
			diag.ReportInfo(reporter, diag.IdxOverride, d.Source, fmt.Sprintf("%s overrides the earlier declaration", id.Describe())).
				WithNote(prev.Source, "earlier declaration").
				Emit()
			trace.Mark(ctx, trace.ScopeEntry, "override:"+id.Describe(), paths[i])
		}
		merged = merged.Merge(r.decls)
	}

	phase.End(fmt.Sprintf("%d declarations", merged.Len()))
	emit(opts.Progress, Event{Stage: StageMerge, Status: StatusDone, Entries: merged.Len()})
	return merged
}

// bind attaches anonymous class runtime names across manifests and reports
// runtime members whose anonymous owner has no runtime name.
func bind(ctx context.Context, m *idmap.Map[declid.Id, manifest.Declaration], bag *diag.Bag, opts Options) *idmap.Map[declid.Id, manifest.Declaration] {
	_, span := trace.Start(ctx, trace.ScopeIndex, "bind")
	defer span.End("")
	phase := opts.Timer.Begin("bind")
	defer phase.End("")
	emit(opts.Progress, Event{Stage: StageBind, Status: StatusWorking})

	bound := Restore(m)
	reporter := diag.BagReporter{Bag: bag}
	for id, d := range bound.All() {
		if !d.Runtime {
			continue
		}
		if anon, ok := anonymousOwner(id); ok {
			if _, named := anon.RuntimeName(); !named {
				diag.ReportWarning(reporter, diag.IdxRuntimeOrphan, d.Source,
					fmt.Sprintf("%s is marked runtime but %s has no runtime_name", id.Describe(), anon.Describe())).Emit()
			}
		}
	}
	emit(opts.Progress, Event{Stage: StageBind, Status: StatusDone, Entries: bound.Len()})
	return bound
}

// anonymousOwner returns the anonymous class at the root of id's owner
// chain, or id itself when it is one.
func anonymousOwner(id declid.Id) (declid.AnonymousClassId, bool) {
	switch v := id.(type) {
	case declid.AnonymousClassId:
		return v, true
	case declid.MethodId:
		return anonymousOwner(v.Class())
	case declid.ParameterId:
		return anonymousOwner(v.Function())
	case declid.ClassConstantId:
		return anonymousOwner(v.Class())
	case declid.PropertyId:
		return anonymousOwner(v.Class())
	default:
		return declid.AnonymousClassId{}, false
	}
}
