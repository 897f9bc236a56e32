package diag

import "fmt"

// Code identifies a kind of problem. The thousands digit selects the area:
// 1xxx manifests, 2xxx the index, 3xxx the cache.
type Code uint16

const (
	UnknownCode Code = 0

	ManInfo              Code = 1000
	ManDecode            Code = 1001
	ManInvalidId         Code = 1002
	ManDuplicate         Code = 1003
	ManUnknownKind       Code = 1004
	ManMissingField      Code = 1005
	ManRuntimeName       Code = 1006
	ManKindMismatch      Code = 1007
	ManLineOutOfRange    Code = 1008
	ManUnsupportedFormat Code = 1009
	ManUnknownField      Code = 1010

	IdxInfo          Code = 2000
	IdxOverride      Code = 2001
	IdxEmpty         Code = 2002
	IdxRuntimeOrphan Code = 2003

	CacheInfo     Code = 3000
	CacheCorrupt  Code = 3001
	CacheSchema   Code = 3002
	CacheLockFail Code = 3003
)

var titles = map[Code]string{
	UnknownCode:          "unknown problem",
	ManInfo:              "manifest information",
	ManDecode:            "manifest cannot be decoded",
	ManInvalidId:         "invalid declaration id",
	ManDuplicate:         "declaration listed more than once",
	ManUnknownKind:       "unknown declaration kind",
	ManMissingField:      "declaration is missing a required field",
	ManRuntimeName:       "runtime_name is only valid for anonymous classes",
	ManKindMismatch:      "kind does not match the id",
	ManLineOutOfRange:    "line number out of range",
	ManUnsupportedFormat: "unsupported manifest format",
	ManUnknownField:      "unknown manifest field",
	IdxInfo:              "index information",
	IdxOverride:          "declaration overridden by a later manifest",
	IdxEmpty:             "manifest declares nothing",
	IdxRuntimeOrphan:     "runtime declaration has no runtime owner",
	CacheInfo:            "cache information",
	CacheCorrupt:         "cache entry is corrupt",
	CacheSchema:          "cache entry has a different schema",
	CacheLockFail:        "cache lock unavailable",
}

var areas = [...]string{1: "MAN", 2: "IDX", 3: "CCH"}

// ID is the stable printed form, e.g. MAN1002.
func (c Code) ID() string {
	if area := int(c) / 1000; area > 0 && area < len(areas) {
		return fmt.Sprintf("%s%04d", areas[area], int(c))
	}
	return "E0000"
}

func (c Code) Title() string {
	if t, ok := titles[c]; ok {
		return t
	}
	return titles[UnknownCode]
}

func (c Code) String() string {
	return "[" + c.ID() + "]: " + c.Title()
}
