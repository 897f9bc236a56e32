// Package cache keeps built declaration indexes on disk between runs.
//
// Entries are msgpack-encoded, written through a temporary file and a
// rename, and guarded by an advisory lock on <dir>/.lock so that several
// declid processes can share one cache directory.
package cache
