package trace

import (
	"fmt"
	"strings"
)

// Level is the tracing verbosity.
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelPhase
	LevelDetail
	LevelDebug
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

// ParseLevel accepts the level names case-insensitively; "" means off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("unknown trace level %q, want one of %s", s, strings.Join(levelNames[:], "|"))
}

// Allows reports whether events of scope are recorded at level l.
func (l Level) Allows(s Scope) bool {
	switch l {
	case LevelPhase:
		return s <= ScopeIndex
	case LevelDetail:
		return s <= ScopeFile
	case LevelDebug:
		return s != 0
	}
	return false
}

// Scope is how fine-grained an event is. Smaller is coarser.
type Scope uint8

const (
	ScopeCommand Scope = iota + 1
	ScopeIndex
	ScopeFile
	ScopeEntry
)

var scopeNames = [...]string{"", "command", "index", "file", "entry"}

func (s Scope) String() string {
	if s != 0 && int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return fmt.Sprintf("scope(%d)", uint8(s))
}
