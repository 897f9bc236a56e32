package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
)

// Tracer receives events. Implementations are safe for concurrent use.
type Tracer interface {
	Record(ev *Event)
	Level() Level
	Close() error
}

type nop struct{}

func (nop) Record(*Event) {}
func (nop) Level() Level  { return LevelOff }
func (nop) Close() error  { return nil }

// Nop records nothing.
var Nop Tracer = nop{}

var seq, spans atomic.Uint64

func stamp(ev *Event) {
	if ev.Seq == 0 {
		ev.Seq = seq.Add(1)
	}
}

// Mode selects where events are kept.
type Mode uint8

const (
	ModeStream Mode = iota + 1
	ModeRing
	ModeBoth
)

var modeNames = [...]string{"", "stream", "ring", "both"}

func (m Mode) String() string {
	if m != 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode accepts stream, ring and both.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(s)
	for i, name := range modeNames[1:] {
		if name == s {
			return Mode(i + 1), nil
		}
	}
	return 0, fmt.Errorf("unknown trace mode %q, want stream|ring|both", s)
}

// Config describes the tracer built by New.
type Config struct {
	Level Level
	Mode  Mode
	// Format applies to the stream; FormatAuto picks NDJSON for .ndjson and
	// .jsonl paths and text otherwise.
	Format Format
	// Output overrides Path for the stream.
	Output io.Writer
	// Path is the stream file; "" or "-" is stderr.
	Path string
	// RingSize defaults to 4096.
	RingSize int
}

// New builds a tracer for cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode == ModeRing {
		return NewRing(cfg.RingSize, cfg.Level), nil
	}
	if cfg.Mode != ModeStream && cfg.Mode != ModeBoth {
		return nil, fmt.Errorf("trace: unsupported mode %v", cfg.Mode)
	}

	w := cfg.Output
	var closer io.Closer
	if w == nil {
		switch cfg.Path {
		case "", "-":
			w = os.Stderr
		default:
			f, err := os.Create(cfg.Path)
			if err != nil {
				return nil, fmt.Errorf("trace: %w", err)
			}
			w, closer = f, f
		}
	}
	stream := NewStream(w, cfg.Level, formatFor(cfg.Format, cfg.Path))
	stream.closer = closer
	if cfg.Mode == ModeStream {
		return stream, nil
	}
	return Tee(cfg.Level, stream, NewRing(cfg.RingSize, cfg.Level)), nil
}

type tee struct {
	level Level
	to    []Tracer
}

// Tee records every event into each of to.
func Tee(level Level, to ...Tracer) Tracer {
	return &tee{level: level, to: to}
}

func (t *tee) Record(ev *Event) {
	stamp(ev)
	for _, tr := range t.to {
		tr.Record(ev)
	}
}

func (t *tee) Level() Level { return t.level }

func (t *tee) Close() error {
	var errs []error
	for _, tr := range t.to {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

// RingOf finds the ring t records into, if any.
func RingOf(t Tracer) (*Ring, bool) {
	switch t := t.(type) {
	case *Ring:
		return t, true
	case *tee:
		for _, inner := range t.to {
			if r, ok := RingOf(inner); ok {
				return r, true
			}
		}
	}
	return nil, false
}
