// Package observ measures how long the phases of a command take.
package observ

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

// Timer collects phases. It is safe for concurrent use and a nil Timer
// records nothing.
type Timer struct {
	mu     sync.Mutex
	phases []phase
}

type phase struct {
	name    string
	started time.Time
	elapsed time.Duration
	note    string
	done    bool
}

func NewTimer() *Timer { return &Timer{} }

// Phase is a running phase returned by Begin.
type Phase struct {
	t   *Timer
	idx int
}

// Begin starts a phase named name.
func (t *Timer) Begin(name string) Phase {
	if t == nil {
		return Phase{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, phase{name: name, started: time.Now()})
	return Phase{t: t, idx: len(t.phases) - 1}
}

// End stops the phase and attaches note. Only the first End counts.
func (p Phase) End(note string) {
	if p.t == nil {
		return
	}
	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	ph := &p.t.phases[p.idx]
	if ph.done {
		return
	}
	ph.elapsed, ph.note, ph.done = time.Since(ph.started), note, true
}

// PhaseReport is one finished or running phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
	Running    bool    `json:"running,omitempty"`
}

// Report holds the phases in Begin order. TotalMS is the wall time from
// the first Begin to the last End; parallel phases overlap in it.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	if len(t.phases) == 0 {
		return r
	}
	first, last := t.phases[0].started, t.phases[0].started
	for _, ph := range t.phases {
		elapsed := ph.elapsed
		if !ph.done {
			elapsed = time.Since(ph.started)
		}
		if end := ph.started.Add(elapsed); end.After(last) {
			last = end
		}
		r.Phases = append(r.Phases, PhaseReport{
			Name:       ph.name,
			DurationMS: millis(elapsed),
			Note:       ph.note,
			Running:    !ph.done,
		})
	}
	r.TotalMS = millis(last.Sub(first))
	return r
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// WriteTo prints the report as an aligned table:
//
//	timings:
//	  load          1.20 ms  // 2 manifests
//	  total         1.31 ms
func (r Report) WriteTo(w io.Writer) (int64, error) {
	width := runewidth.StringWidth("total")
	for _, p := range r.Phases {
		width = max(width, runewidth.StringWidth(p.Name))
	}
	var sb strings.Builder
	sb.WriteString("timings:\n")
	row := func(name string, ms float64, note string) {
		fmt.Fprintf(&sb, "  %s %8.2f ms", runewidth.FillRight(name, width), ms)
		if note != "" {
			sb.WriteString("  // " + note)
		}
		sb.WriteByte('\n')
	}
	for _, p := range r.Phases {
		note := p.Note
		if p.Running {
			note = strings.TrimSpace("running " + note)
		}
		row(p.Name, p.DurationMS, note)
	}
	row("total", r.TotalMS, "")
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// Summary renders the report as WriteTo does.
func (t *Timer) Summary() string {
	var sb strings.Builder
	_, _ = t.Report().WriteTo(&sb)
	return sb.String()
}
