package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/vmihailenco/msgpack/v5"

	"declid/internal/declmap"
	"declid/internal/diag"
	"declid/internal/index"
	"declid/internal/manifest"
)

// SchemaVersion is bumped whenever the payload layout changes. Entries
// written under another schema read as misses.
const SchemaVersion uint16 = 1

const (
	lockTimeout = 5 * time.Second
	lockRetry   = 25 * time.Millisecond
)

var (
	// ErrCorrupt is returned by Get when a cache entry cannot be decoded.
	ErrCorrupt = errors.New("cache: corrupt entry")
	// ErrLocked is returned when another process holds the cache lock for
	// longer than the lock timeout.
	ErrLocked = errors.New("cache: lock is busy")
)

// Cache stores built indexes on disk, keyed by index.Digest.
// Safe for concurrent use, including across processes.
type Cache struct {
	// mu serializes use of lock within the process
	mu   sync.Mutex
	dir  string
	lock *flock.Flock
}

type payload struct {
	Digest       index.Digest
	Files        []string
	Declarations *declmap.DeclarationMap[manifest.Declaration]
	MaxDiags     int
	Diagnostics  []diag.Diagnostic
}

// Open opens the cache at $XDG_CACHE_HOME/<app>, or ~/.cache/<app>.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir opens a cache rooted at dir, creating it when needed.
func OpenDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, lock: flock.New(filepath.Join(dir, ".lock"))}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key index.Digest) string {
	return filepath.Join(c.dir, "idx", key.String()+".mp")
}

func (c *Cache) acquire(shared bool) (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	try := c.lock.TryLockContext
	if shared {
		try = c.lock.TryRLockContext
	}
	ok, err := try(ctx, lockRetry)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("cache: lock %s: %w", c.lock.Path(), err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() { _ = c.lock.Unlock() }, nil
}

// Put writes ix under key. The entry appears atomically.
func (c *Cache) Put(key index.Digest, ix *index.Index) error {
	if c == nil || ix == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	unlock, err := c.acquire(false)
	if err != nil {
		return err
	}
	defer unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	err = enc.EncodeUint16(SchemaVersion)
	if err == nil {
		err = enc.Encode(&payload{
			Digest:       key,
			Files:        ix.Files,
			Declarations: ix.Declarations,
			MaxDiags:     ix.Bag.Cap(),
			Diagnostics:  ix.Bag.Items(),
		})
	}
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the index stored under key. A missing entry, an entry of
// another schema, or one written for another digest is a miss. Runtime
// names are bound again before the index is returned.
func (c *Cache) Get(key index.Digest) (*index.Index, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	unlock, err := c.acquire(true)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	schema, err := dec.DecodeUint16()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if schema != SchemaVersion {
		return nil, false, nil
	}
	var p payload
	if err := dec.Decode(&p); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if p.Digest != key || p.Declarations == nil {
		return nil, false, nil
	}

	bag := diag.NewBag(p.MaxDiags)
	for _, d := range p.Diagnostics {
		bag.Add(d)
	}
	return &index.Index{
		Declarations: declmap.FromIdMap(index.Restore(p.Declarations.IdMap())),
		Bag:          bag,
		Digest:       p.Digest,
		Files:        p.Files,
	}, true, nil
}

// DropAll removes every entry. The cache stays usable.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	unlock, err := c.acquire(false)
	if err != nil {
		return err
	}
	defer unlock()

	// move first so concurrent readers never see a half-removed tree
	entries := filepath.Join(c.dir, "idx")
	old := entries + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(entries, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
