package trace

import (
	"io"
	"sync"
)

// Stream writes each event as soon as it is recorded. Write errors are
// dropped.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	level  Level
	format Format
	buf    []byte
}

func NewStream(w io.Writer, level Level, format Format) *Stream {
	if format == FormatAuto {
		format = FormatText
	}
	return &Stream{w: w, level: level, format: format}
}

func (s *Stream) Record(ev *Event) {
	if !s.level.Allows(ev.Scope) {
		return
	}
	stamp(ev)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = ev.Append(s.buf[:0], s.format)
	_, _ = s.w.Write(s.buf)
}

func (s *Stream) Level() Level { return s.level }

// Close closes the file New opened; a caller-supplied writer stays open.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// Ring keeps the most recent events in memory.
type Ring struct {
	mu     sync.Mutex
	events []Event
	next   int
	filled bool
	level  Level
}

// NewRing keeps up to size events; size <= 0 means 4096.
func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = 4096
	}
	return &Ring{events: make([]Event, size), level: level}
}

func (r *Ring) Record(ev *Event) {
	if !r.level.Allows(ev.Scope) {
		return
	}
	stamp(ev)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.next] = *ev
	r.next++
	if r.next == len(r.events) {
		r.next, r.filled = 0, true
	}
}

func (r *Ring) Level() Level { return r.level }
func (r *Ring) Close() error { return nil }

// Events returns the kept events, oldest first.
func (r *Ring) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.filled {
		return append([]Event(nil), r.events[:r.next]...)
	}
	out := make([]Event, 0, len(r.events))
	out = append(out, r.events[r.next:]...)
	return append(out, r.events[:r.next]...)
}

// Dump writes the kept events to w.
func (r *Ring) Dump(w io.Writer, format Format) error {
	var buf []byte
	for _, ev := range r.Events() {
		buf = ev.Append(buf, format)
	}
	_, err := w.Write(buf)
	return err
}
