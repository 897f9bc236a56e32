// Package config loads declid.toml, the project file that names the
// manifests to index and the defaults for the command line.
package config
