package manifest

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"

	"declid/internal/declid"
)

// SuggestKind returns the kind whose name is closest to s when the two are
// within a couple of edits, so a typo like "methd" can point at "method".
func SuggestKind(s string) (declid.Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return declid.KindInvalid, false
	}
	best, bestDist := declid.KindInvalid, 0
	for _, k := range declid.Kinds() {
		d := levenshtein.Distance(s, k.String(), nil)
		if best == declid.KindInvalid || d < bestDist {
			best, bestDist = k, d
		}
	}
	if bestDist > max(2, len(best.String())/4) {
		return declid.KindInvalid, false
	}
	return best, true
}

// UnknownKindMessage describes an unrecognized kind, with a suggestion when
// one is close.
func UnknownKindMessage(s string) string {
	if k, ok := SuggestKind(s); ok {
		return fmt.Sprintf("unknown kind %q (did you mean %q?)", s, k.String())
	}
	return fmt.Sprintf("unknown kind %q", s)
}
