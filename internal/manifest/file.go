package manifest

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Anonymous locates an anonymous class.
type Anonymous struct {
	File   string `toml:"file" yaml:"file"`
	Line   int64  `toml:"line" yaml:"line"`
	Column int64  `toml:"column" yaml:"column"`
}

// Entry is one [[declaration]] as written.
type Entry struct {
	Id          string     `toml:"id" yaml:"id"`
	Kind        string     `toml:"kind" yaml:"kind"`
	Class       string     `toml:"class" yaml:"class"`
	Anonymous   *Anonymous `toml:"anonymous" yaml:"anonymous"`
	Function    string     `toml:"function" yaml:"function"`
	Method      string     `toml:"method" yaml:"method"`
	Name        string     `toml:"name" yaml:"name"`
	Summary     string     `toml:"summary" yaml:"summary"`
	Tags        []string   `toml:"tags" yaml:"tags"`
	Line        int64      `toml:"line" yaml:"line"`
	Runtime     bool       `toml:"runtime" yaml:"runtime"`
	RuntimeName string     `toml:"runtime_name" yaml:"runtime_name"`

	// Pos is the manifest line the entry starts on, 0 when unknown.
	Pos int `toml:"-" yaml:"-"`
}

// File is a decoded manifest.
type File struct {
	Path    string
	Format  Format
	Entries []Entry
	// Undecoded lists keys the decoder did not recognize, e.g.
	// "declaration.summry".
	Undecoded []string
}

// Load reads and decodes the manifest at path.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data, format)
}

// Parse decodes data. path is only used in errors and locations.
func Parse(path string, data []byte, format Format) (*File, error) {
	switch format {
	case FormatTOML:
		return parseTOML(path, data)
	case FormatYAML:
		return parseYAML(path, data)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

type tomlDoc struct {
	Declaration []Entry `toml:"declaration"`
}

var tableHeader = regexp.MustCompile(`^\s*\[\[\s*declaration\s*\]\]`)

func parseTOML(path string, data []byte) (*File, error) {
	var doc tomlDoc
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		derr := &DecodeError{Path: path, Err: err}
		var perr toml.ParseError
		if errors.As(err, &perr) {
			derr.Line = perr.Position.Line
			derr.Err = errors.New(perr.Message)
		}
		return nil, derr
	}

	f := &File{Path: path, Format: FormatTOML, Entries: doc.Declaration}
	for _, key := range md.Undecoded() {
		f.Undecoded = append(f.Undecoded, key.String())
	}

	var headers []int
	for i, line := range strings.Split(string(data), "\n") {
		if tableHeader.MatchString(line) {
			headers = append(headers, i+1)
		}
	}
	if len(headers) == len(f.Entries) {
		for i := range f.Entries {
			f.Entries[i].Pos = headers[i]
		}
	}
	return f, nil
}

var entryFields = map[string]bool{
	"id": true, "kind": true, "class": true, "anonymous": true,
	"function": true, "method": true, "name": true, "summary": true,
	"tags": true, "line": true, "runtime": true, "runtime_name": true,
}

func parseYAML(path string, data []byte) (*File, error) {
	f := &File{Path: path, Format: FormatYAML}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return f, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, &DecodeError{Path: path, Line: top.Line, Err: errors.New("expected a mapping with a declaration list")}
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		if key.Value != "declaration" {
			f.Undecoded = append(f.Undecoded, key.Value)
			continue
		}
		if value.Kind != yaml.SequenceNode {
			return nil, &DecodeError{Path: path, Line: value.Line, Err: errors.New("declaration must be a list")}
		}
		for _, item := range value.Content {
			var e Entry
			if err := item.Decode(&e); err != nil {
				return nil, &DecodeError{Path: path, Line: item.Line, Err: err}
			}
			e.Pos = item.Line
			if item.Kind == yaml.MappingNode {
				for j := 0; j < len(item.Content); j += 2 {
					if k := item.Content[j].Value; !entryFields[k] {
						f.Undecoded = append(f.Undecoded, "declaration."+k)
					}
				}
			}
			f.Entries = append(f.Entries, e)
		}
	}
	return f, nil
}
