// Package diagfmt renders a diag.Bag for terminals and as JSON.
package diagfmt

import (
	"os"
	"path/filepath"
)

// PathMode selects how manifest paths are shown.
type PathMode uint8

const (
	PathModeAuto PathMode = iota // as given on the command line
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

var pathModeNames = [...]string{"auto", "absolute", "relative", "basename"}

func (m PathMode) String() string {
	if int(m) < len(pathModeNames) {
		return pathModeNames[m]
	}
	return "auto"
}

// ParsePathMode accepts the PathMode names; "" is auto.
func ParsePathMode(s string) (PathMode, bool) {
	if s == "" {
		return PathModeAuto, true
	}
	for i, name := range pathModeNames {
		if name == s {
			return PathMode(i), true
		}
	}
	return PathModeAuto, false
}

// Paths rewrites paths for display. Base anchors PathModeRelative and
// defaults to the working directory.
type Paths struct {
	Mode PathMode
	Base string
}

// Show returns path as Mode prescribes, or path unchanged when it cannot be
// rewritten.
func (p Paths) Show(path string) string {
	if path == "" {
		return path
	}
	switch p.Mode {
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		base := p.Base
		if base == "" {
			base, _ = os.Getwd()
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			break
		}
		if rel, err := filepath.Rel(base, abs); err == nil {
			return rel
		}
	}
	return path
}
