package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar"

	"declid/internal/trace"
)

// FileName is the name Find looks for.
const FileName = "declid.toml"

// ErrInvalidConfig wraps every decode and validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config mirrors declid.toml. Path and Root are empty for Default.
type Config struct {
	Path string `toml:"-"`
	Root string `toml:"-"`

	Index  IndexConfig  `toml:"index"`
	Cache  CacheConfig  `toml:"cache"`
	Output OutputConfig `toml:"output"`
	Trace  TraceConfig  `toml:"trace"`
}

type IndexConfig struct {
	// Manifests are paths or glob patterns relative to Root. "**" matches
	// any number of directories and {a,b} alternatives are allowed.
	Manifests []string `toml:"manifests"`
	Jobs      int      `toml:"jobs"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	App     string `toml:"app"`
}

type OutputConfig struct {
	Format string `toml:"format"` // table|json|plain
	Color  string `toml:"color"`  // auto|on|off
}

type TraceConfig struct {
	Level string `toml:"level"`
}

// Default is the configuration used when no declid.toml exists.
func Default() *Config {
	return &Config{
		Cache:  CacheConfig{Enabled: true, App: "declid"},
		Output: OutputConfig{Format: "table", Color: "auto"},
		Trace:  TraceConfig{Level: "off"},
	}
}

// Find walks up from startDir looking for declid.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest declid.toml above startDir, or Default when
// there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path over Default and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrInvalidConfig, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: %w: unknown key %q", path, ErrInvalidConfig, undecoded[0].String())
	}
	if meta.IsDefined("cache", "app") && strings.TrimSpace(cfg.Cache.App) == "" {
		return nil, fmt.Errorf("%s: %w: [cache].app is empty", path, ErrInvalidConfig)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that flags may also have set.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "table", "json", "plain":
	default:
		return fmt.Errorf("%w: [output].format %q (expected table|json|plain)", ErrInvalidConfig, c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("%w: [output].color %q (expected auto|on|off)", ErrInvalidConfig, c.Output.Color)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("%w: [trace].level: %w", ErrInvalidConfig, err)
	}
	if c.Index.Jobs < 0 {
		return fmt.Errorf("%w: [index].jobs %d is negative", ErrInvalidConfig, c.Index.Jobs)
	}
	for _, pattern := range c.Index.Manifests {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w: [index].manifests pattern %q: %w", ErrInvalidConfig, pattern, err)
		}
	}
	return nil
}

// ManifestPaths expands Index.Manifests against Root. Matches of one
// pattern are sorted; patterns keep their order and a path matched twice
// keeps its first place. A plain path that does not exist is returned
// as is, so loading it reports the missing file.
func (c *Config) ManifestPaths() ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, pattern := range c.Index.Manifests {
		if !filepath.IsAbs(pattern) && c.Root != "" {
			pattern = filepath.Join(c.Root, filepath.FromSlash(pattern))
		}
		matches, err := doublestar.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			add(pattern)
			continue
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[{\`)
}
