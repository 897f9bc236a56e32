package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"declid/internal/cache"
	"declid/internal/declid"
	"declid/internal/diag"
	"declid/internal/diagfmt"
	"declid/internal/idmap"
	"declid/internal/index"
	"declid/internal/manifest"
	"declid/internal/ui"
)

var errIndexHasErrors = errors.New("manifests have errors")

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [manifest...]",
		Short: "Merge manifests into a declaration index and print it",
		Long: `Load declaration manifests (TOML or YAML) and merge them in argument order.
A declaration listed again by a later manifest replaces the earlier one and
moves to the later position. Without arguments the manifests listed in
declid.toml are used.`,
		RunE: runIndex,
	}
	cmd.Flags().Int("offset", 0, "first declaration to print; negative counts from the end")
	cmd.Flags().Int("limit", 0, "maximum number of declarations to print (0 = all, negative = all but the last N)")
	cmd.Flags().StringSlice("kind", nil, "only print these kinds (class, anonymous-class, function, method, parameter, constant, class-constant, property)")
	cmd.Flags().String("format", "", "output format (table|json|plain); default from declid.toml")
	cmd.Flags().Bool("no-cache", false, "ignore and do not update the index cache")
	cmd.Flags().Int("jobs", 0, "max parallel manifest loads (0=config or auto)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().String("diag-format", "pretty", "diagnostic format on stderr (pretty|json)")
	cmd.Flags().String("path-mode", "auto", "paths in diagnostics (auto|absolute|relative|basename)")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	return cmd
}

type indexOptions struct {
	offset  int
	limit   int
	kinds   []declid.Kind
	format  string
	noCache bool
	jobs    int
	diag    diagOptions
	view    progressView
	quiet   bool
}

func readIndexOptions(cmd *cobra.Command, s *session) (indexOptions, error) {
	var opts indexOptions
	var err error
	flags := cmd.Flags()
	if opts.offset, err = flags.GetInt("offset"); err != nil {
		return opts, fmt.Errorf("failed to get offset flag: %w", err)
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return opts, fmt.Errorf("failed to get limit flag: %w", err)
	}
	if opts.limit == 0 {
		opts.limit = idmap.NoLimit
	}
	kinds, err := flags.GetStringSlice("kind")
	if err != nil {
		return opts, fmt.Errorf("failed to get kind flag: %w", err)
	}
	if opts.kinds, err = parseKinds(kinds); err != nil {
		return opts, err
	}
	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.format == "" {
		opts.format = s.cfg.Output.Format
	}
	switch opts.format {
	case "table", "json", "plain":
	default:
		return opts, fmt.Errorf("unsupported format %q (must be table, json or plain)", opts.format)
	}
	if opts.noCache, err = flags.GetBool("no-cache"); err != nil {
		return opts, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.jobs == 0 {
		opts.jobs = s.cfg.Index.Jobs
	}
	if opts.diag.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.diag.format, err = flags.GetString("diag-format"); err != nil {
		return opts, fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	if opts.diag.format != "pretty" && opts.diag.format != "json" {
		return opts, fmt.Errorf("unsupported diagnostic format %q (must be pretty or json)", opts.diag.format)
	}
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if opts.diag.pathMode, ok = diagfmt.ParsePathMode(pathMode); !ok {
		return opts, fmt.Errorf("invalid --path-mode value %q (expected auto|absolute|relative|basename)", pathMode)
	}
	view, err := flags.GetString("ui")
	if err != nil {
		return opts, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if opts.view, ok = parseProgressView(view); !ok {
		return opts, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", view)
	}
	if opts.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	opts.diag.quiet = opts.quiet
	return opts, nil
}

// progressView is the --ui setting of the index command.
type progressView uint8

const (
	progressAuto progressView = iota
	progressOn
	progressOff
)

var progressViews = map[string]progressView{
	"":     progressAuto,
	"auto": progressAuto,
	"on":   progressOn,
	"off":  progressOff,
}

func parseProgressView(value string) (progressView, bool) {
	v, ok := progressViews[strings.ToLower(strings.TrimSpace(value))]
	return v, ok
}

// enabled reports whether the view runs. Auto draws only when both streams
// are terminals, since diagnostics share stderr with the view.
func (v progressView) enabled(stdout, stderr *os.File) bool {
	switch v {
	case progressOn:
		return true
	case progressOff:
		return false
	}
	return isTerminal(stdout) && isTerminal(stderr)
}

func parseKinds(values []string) ([]declid.Kind, error) {
	var kinds []declid.Kind
	for _, v := range values {
		k, ok := declid.ParseKind(strings.TrimSpace(strings.ToLower(v)))
		if !ok || k == declid.KindInvalid {
			return nil, errors.New(manifest.UnknownKindMessage(v))
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	s, err := sessionFrom(cmd)
	if err != nil {
		return err
	}
	opts, err := readIndexOptions(cmd, s)
	if err != nil {
		return err
	}
	paths, err := manifestPaths(s, args)
	if err != nil {
		return err
	}
	ix, err := loadIndex(cmd, s, paths, opts)
	if err != nil {
		return err
	}

	if err := printDiagnostics(cmd.ErrOrStderr(), ix.Bag, opts.diag); err != nil {
		return err
	}

	view := ix.ByKind(opts.kinds...)
	first := firstPosition(view.Len(), opts.offset)
	view = view.Page(opts.offset, opts.limit)
	if err := writeIndex(cmd.OutOrStdout(), view, opts.format, first); err != nil {
		return err
	}
	if ix.Bag.HasErrors() {
		return errIndexHasErrors
	}
	return nil
}

// manifestPaths returns args, or the manifests named by the config.
func manifestPaths(s *session, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	paths, err := s.cfg.ManifestPaths()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.New("no manifests: pass paths or list them in declid.toml [index].manifests")
	}
	return paths, nil
}

// loadIndex returns the cached index for paths when there is one and
// builds (and caches) it otherwise. Cache problems are reported and never
// fail the command.
func loadIndex(cmd *cobra.Command, s *session, paths []string, opts indexOptions) (*index.Index, error) {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	var c *cache.Cache
	var key index.Digest
	if s.cfg.Cache.Enabled && !opts.noCache {
		phase := s.timer.Begin("cache lookup")
		var err error
		c, err = cache.Open(s.cfg.Cache.App)
		if err == nil {
			key, err = index.DigestFiles(paths)
		}
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				phase.End("missing manifest")
				return nil, err
			}
			reportCacheProblem(stderr, diag.CacheInfo, err, opts.quiet)
			c = nil
		} else if ix, ok, err := c.Get(key); err != nil {
			reportCacheProblem(stderr, cacheCode(err), err, opts.quiet)
		} else if ok {
			phase.End("hit")
			return ix, nil
		}
		phase.End("miss")
	}

	buildOpts := index.Options{Jobs: opts.jobs, Timer: s.timer}
	var ix *index.Index
	var err error
	if !opts.quiet && opts.format == "table" && opts.view.enabled(os.Stdout, os.Stderr) {
		ix, err = buildIndexWithUI(ctx, stderr, "indexing", paths, buildOpts)
	} else {
		ix, err = index.Build(ctx, paths, buildOpts)
	}
	if err != nil {
		return nil, err
	}

	if c != nil {
		phase := s.timer.Begin("cache store")
		if err := c.Put(key, ix); err != nil {
			reportCacheProblem(stderr, cacheCode(err), err, opts.quiet)
		}
		phase.End("")
	}
	return ix, nil
}

func cacheCode(err error) diag.Code {
	switch {
	case errors.Is(err, cache.ErrCorrupt):
		return diag.CacheCorrupt
	case errors.Is(err, cache.ErrLocked):
		return diag.CacheLockFail
	default:
		return diag.CacheInfo
	}
}

func reportCacheProblem(w io.Writer, code diag.Code, err error, quiet bool) {
	if quiet {
		return
	}
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevWarning, code, diag.Location{File: "cache"}, err.Error()+" (rebuilding)"))
	_ = diagfmt.Pretty(w, bag, diagfmt.PrettyOpts{Color: !color.NoColor})
}

// diagOptions selects how diagnostics are printed.
type diagOptions struct {
	format    string // pretty|json
	pathMode  diagfmt.PathMode
	withNotes bool
	quiet     bool
}

// printDiagnostics writes the index diagnostics sorted by location. Quiet
// keeps only errors. JSON output is written even when there is nothing to
// report.
func printDiagnostics(w io.Writer, bag *diag.Bag, opts diagOptions) error {
	out := diag.NewBag(max(bag.Len(), 1))
	for _, d := range bag.Items() {
		if opts.quiet && d.Severity < diag.SevError {
			continue
		}
		out.Add(d)
	}
	out.Sort()
	if opts.format == "json" {
		return diagfmt.JSON(w, out, diagfmt.JSONOpts{Paths: diagfmt.Paths{Mode: opts.pathMode}, Notes: opts.withNotes})
	}
	width := 0
	if f, ok := w.(*os.File); ok {
		width = terminalWidth(f)
	}
	return diagfmt.Pretty(w, out, diagfmt.PrettyOpts{
		Paths: diagfmt.Paths{Mode: opts.pathMode},
		Color: !color.NoColor,
		Notes: opts.withNotes,
		Width: width,
	})
}

// firstPosition is the 1-based position of the first declaration a page
// starting at offset shows, with Slice's rules for negative offsets.
func firstPosition(total, offset int) int {
	if offset < 0 {
		offset = max(total+offset, 0)
	}
	return min(offset, total) + 1
}

type declarationJSON struct {
	Id          string   `json:"id"`
	Kind        string   `json:"kind"`
	Description string   `json:"description"`
	Summary     string   `json:"summary,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Runtime     bool     `json:"runtime,omitempty"`
	RuntimeName string   `json:"runtime_name,omitempty"`
	Source      string   `json:"source"`
}

func writeIndex(w io.Writer, ix *index.Index, format string, first int) error {
	switch format {
	case "json":
		out := make([]declarationJSON, 0, ix.Len())
		for id, d := range ix.Declarations.All() {
			out = append(out, toJSON(id, d))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "plain":
		for id := range ix.Declarations.All() {
			if _, err := fmt.Fprintln(w, id.Encode()); err != nil {
				return err
			}
		}
		return nil
	default:
		return ui.WriteTable(w, ix, ui.TableOptions{
			Color: !color.NoColor,
			Width: terminalWidth(os.Stdout),
			First: first,
		})
	}
}

func toJSON(id declid.Id, d manifest.Declaration) declarationJSON {
	return declarationJSON{
		Id:          id.Encode(),
		Kind:        id.Kind().String(),
		Description: id.Describe(),
		Summary:     d.Summary,
		Tags:        d.Tags,
		Runtime:     d.Runtime,
		RuntimeName: d.RuntimeName,
		Source:      d.Source.String(),
	}
}
