// Package cache keeps the hot segments of a container resident in memory.
//
// The cache is a strict LRU of bounded capacity keyed by segment filename.
// A resident segment is the authoritative copy; the on-disk blob may be stale
// until eviction or flush writes it back. Eviction writes unconditionally —
// there is no dirty bit — so no mutation is ever lost across evictions.
// Access is single-threaded by the engine's concurrency model.
package cache

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Loader reads a segment's payload from its backing file.
type Loader[S any] func(name string) (S, error)

// Storer writes a segment's payload back to its backing file.
type Storer[S any] func(name string, seg S) error

// Cache is a bounded LRU of resident segments. S is the in-memory segment
// representation: a slice pointer for sequence containers, a map for dict
// containers, so mutations through the returned handle are visible to the
// cache without re-insertion.
type Cache[S any] struct {
	capacity int
	order    []string // least-recent first
	entries  map[string]S
	load     Loader[S]
	store    Storer[S]
	log      *zap.SugaredLogger
}

// New creates an empty cache with the given capacity and backing callbacks.
func New[S any](capacity int, load Loader[S], store Storer[S], log *zap.SugaredLogger) *Cache[S] {
	return &Cache[S]{
		capacity: capacity,
		entries:  make(map[string]S, capacity),
		load:     load,
		store:    store,
		log:      log,
	}
}

// Len returns the number of resident segments.
func (c *Cache[S]) Len() int {
	return len(c.entries)
}

// Contains reports whether the named segment is resident.
func (c *Cache[S]) Contains(name string) bool {
	_, ok := c.entries[name]
	return ok
}

// Touch returns a handle to the named segment, making it most-recently used.
// On a miss the least-recent segment is evicted (written back) once the cache
// is at capacity, then the segment is loaded from disk.
func (c *Cache[S]) Touch(name string) (S, error) {
	if seg, ok := c.entries[name]; ok {
		c.moveToBack(name)
		return seg, nil
	}
	if err := c.Free(); err != nil {
		var zero S
		return zero, err
	}
	seg, err := c.load(name)
	if err != nil {
		var zero S
		return zero, err
	}
	c.entries[name] = seg
	c.order = append(c.order, name)
	return seg, nil
}

// Put inserts a freshly minted segment as most-recently used, evicting the
// least-recent one first if the cache is at capacity.
func (c *Cache[S]) Put(name string, seg S) error {
	if _, ok := c.entries[name]; ok {
		c.entries[name] = seg
		c.moveToBack(name)
		return nil
	}
	if err := c.Free(); err != nil {
		return err
	}
	c.entries[name] = seg
	c.order = append(c.order, name)
	return nil
}

// Take removes the named segment from the cache and returns its in-memory
// representation without writing it back, loading from disk if it wasn't
// resident. Used by balancing when a segment is being merged away.
func (c *Cache[S]) Take(name string) (S, error) {
	if seg, ok := c.entries[name]; ok {
		c.remove(name)
		return seg, nil
	}
	return c.load(name)
}

// Drop discards the named segment without writing it back. No-op if the
// segment isn't resident.
func (c *Cache[S]) Drop(name string) {
	if _, ok := c.entries[name]; ok {
		c.remove(name)
	}
}

// Free evicts the least-recent segment if the cache is at capacity, writing
// it back to its file. Called before any insertion so the cache never exceeds
// its bound.
func (c *Cache[S]) Free() error {
	if len(c.entries) < c.capacity {
		return nil
	}
	victim := c.order[0]
	seg := c.entries[victim]
	if err := c.store(victim, seg); err != nil {
		return err
	}
	c.remove(victim)
	c.log.Debugw("Evicted segment", "file", victim)
	return nil
}

// FlushAll writes every resident segment back to its file. Residency is
// unchanged. Failures are accumulated; every segment gets its write attempt
// before the combined error is returned.
func (c *Cache[S]) FlushAll() error {
	var errs error
	for _, name := range c.order {
		if err := c.store(name, c.entries[name]); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Clear discards every resident segment without writing anything back.
func (c *Cache[S]) Clear() {
	c.order = c.order[:0]
	clear(c.entries)
}

func (c *Cache[S]) moveToBack(name string) {
	for i, n := range c.order {
		if n == name {
			c.order = append(append(c.order[:i:i], c.order[i+1:]...), name)
			return
		}
	}
}

func (c *Cache[S]) remove(name string) {
	delete(c.entries, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
