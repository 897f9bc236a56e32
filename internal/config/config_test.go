package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, FileName), "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find = %v, %v", ok, err)
	}
	if path != filepath.Join(root, FileName) {
		t.Errorf("path = %q", path)
	}
}

func TestDiscoverWithoutFileUsesDefault(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// another declid.toml above the temp dir would change the answer
	if cfg.Path != "" {
		t.Skipf("found %s above the temp dir", cfg.Path)
	}
	if !cfg.Cache.Enabled || cfg.Output.Format != "table" || cfg.Trace.Level != "off" {
		t.Errorf("default = %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, FileName)
	write(t, path, `
[index]
manifests = ["decl/*.toml", "extra.yaml"]
jobs = 2

[output]
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Root != root || cfg.Index.Jobs != 2 || cfg.Output.Format != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
	// untouched sections keep their defaults
	if !cfg.Cache.Enabled || cfg.Cache.App != "declid" || cfg.Output.Color != "auto" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[index\n"},
		{"unknown key", "[index]\nmanifest = []\n"},
		{"format", "[output]\nformat = \"xml\"\n"},
		{"color", "[output]\ncolor = \"always\"\n"},
		{"trace level", "[trace]\nlevel = \"loud\"\n"},
		{"jobs", "[index]\njobs = -1\n"},
		{"empty app", "[cache]\napp = \" \"\n"},
		{"bad pattern", "[index]\nmanifests = [\"[\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			write(t, path, tt.content)
			if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestManifestPaths(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"decl/b.toml", "decl/a.toml", "decl/skip.yaml", "extra.yaml"} {
		write(t, filepath.Join(root, name), "")
	}
	cfg := Default()
	cfg.Root = root
	cfg.Index.Manifests = []string{"decl/*.toml", "extra.yaml", "decl/a.toml", "missing.toml", "none/*.toml"}

	got, err := cfg.ManifestPaths()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "decl", "a.toml"),
		filepath.Join(root, "decl", "b.toml"),
		filepath.Join(root, "extra.yaml"),
		filepath.Join(root, "missing.toml"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("ManifestPaths() = %v\nwant %v", got, want)
	}
}

func TestManifestPathsRecursiveGlob(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"decl/app.toml", "decl/vendor/lib/x.yaml", "decl/vendor/y.yml", "decl/notes.txt"} {
		write(t, filepath.Join(root, name), "")
	}
	cfg := Default()
	cfg.Root = root
	cfg.Index.Manifests = []string{"decl/**/*.{toml,yaml,yml}"}

	got, err := cfg.ManifestPaths()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "decl", "app.toml"),
		filepath.Join(root, "decl", "vendor", "lib", "x.yaml"),
		filepath.Join(root, "decl", "vendor", "y.yml"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("ManifestPaths() = %v\nwant %v", got, want)
	}
}
