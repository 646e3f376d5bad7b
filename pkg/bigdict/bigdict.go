// Package bigdict provides a mutable mapping whose entries are partitioned
// into on-disk segments, ordered internally by (hash(k), k) so every lookup
// dispatches to a unique segment.
//
// Keys are strings hashed with FNV-1a, which is stable across processes; the
// per-segment minimum pair is persisted in the mins metadata and binary
// searched on every operation. Within a segment the iteration order is
// unspecified. Segment sizes are kept within [CHUNK/2, 2*CHUNK] by the
// balancing engine.
package bigdict

import (
	"sort"

	"go.uber.org/zap"

	"github.com/iamNilotpal/bigcoll/internal/cache"
	"github.com/iamNilotpal/bigcoll/internal/codec"
	"github.com/iamNilotpal/bigcoll/internal/hashkey"
	"github.com/iamNilotpal/bigcoll/internal/segment"
	"github.com/iamNilotpal/bigcoll/pkg/errors"
	"github.com/iamNilotpal/bigcoll/pkg/options"
)

// Map is an out-of-core mapping from string keys to V.
type Map[V any] struct {
	store *segment.Store
	cache *cache.Cache[map[string]V]

	filenames []string
	lens      []int
	mins      []hashkey.Pair
	length    int

	chunk  int
	opts   *options.Options
	log    *zap.SugaredLogger
	closed bool
}

// Open opens (creating if necessary) a big dict rooted at a directory.
func Open[V any](root string, opts ...options.OptionFunc) (*Map[V], error) {
	o, err := options.New(options.DefaultDictChunkSize, opts...)
	if err != nil {
		return nil, err
	}
	if err := options.ValidateRoot(root); err != nil {
		return nil, err
	}
	store, err := segment.Open(segment.Config{Fs: o.Fs, Roots: []string{root}, Log: o.Logger})
	if err != nil {
		return nil, err
	}

	m := &Map[V]{store: store, chunk: o.ChunkSize, opts: o, log: o.Logger}
	m.cache = cache.New(o.CacheCapacity, m.loadSegment, m.storeSegment, o.Logger)

	if m.filenames, err = segment.ReadMeta(store, segment.FilenamesFile, []string{}); err != nil {
		return nil, err
	}
	if m.lens, err = segment.ReadMeta(store, segment.LensFile, []int{}); err != nil {
		return nil, err
	}
	if m.mins, err = segment.ReadMeta(store, segment.MinsFile, []hashkey.Pair{}); err != nil {
		return nil, err
	}
	if len(m.filenames) != len(m.lens) || len(m.lens) != len(m.mins) {
		return nil, errors.NewStorageError(
			nil, errors.ErrorCodeCorruptDatabase, "Metadata vectors disagree in length",
		).WithDetail("filenames", len(m.filenames)).
			WithDetail("lens", len(m.lens)).
			WithDetail("mins", len(m.mins))
	}
	for _, n := range m.lens {
		m.length += n
	}

	m.log.Infow("Opened big dict", "root", root, "length", m.length, "segments", len(m.filenames))
	return m, nil
}

func (m *Map[V]) loadSegment(name string) (map[string]V, error) {
	data, err := m.store.ReadSegment(name)
	if err != nil {
		return nil, err
	}
	seg := make(map[string]V)
	if err := codec.Unmarshal(data, &seg); err != nil {
		return nil, err
	}
	return seg, nil
}

func (m *Map[V]) storeSegment(name string, seg map[string]V) error {
	data, err := codec.Marshal(seg)
	if err != nil {
		return err
	}
	return m.store.WriteSegment(name, data)
}

// Len returns the number of entries.
func (m *Map[V]) Len() int { return m.length }

// chunkAt returns a mutable handle to segment i.
func (m *Map[V]) chunkAt(i int) (map[string]V, error) {
	return m.cache.Touch(m.filenames[i])
}

// bisect returns the number of mins entries that do not exceed p.
func (m *Map[V]) bisect(p hashkey.Pair) int {
	return sort.Search(len(m.mins), func(i int) bool {
		return hashkey.Less(p, m.mins[i])
	})
}

// keyNotFound builds the lookup failure for a missing key.
func keyNotFound(key, op string) error {
	return errors.NewLookupError(
		errors.ErrorCodeKeyNotFound, "Key not found",
	).WithKey(key).WithOperation(op)
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, error) {
	var zero V
	idx := m.bisect(hashkey.Of(key))
	if idx == 0 {
		return zero, keyNotFound(key, "get")
	}
	seg, err := m.chunkAt(idx - 1)
	if err != nil {
		return zero, err
	}
	v, ok := seg[key]
	if !ok {
		return zero, keyNotFound(key, "get")
	}
	return v, nil
}

// Contains reports whether key has an entry.
func (m *Map[V]) Contains(key string) (bool, error) {
	idx := m.bisect(hashkey.Of(key))
	if idx == 0 {
		return false, nil
	}
	seg, err := m.chunkAt(idx - 1)
	if err != nil {
		return false, err
	}
	_, ok := seg[key]
	return ok, nil
}

// Set stores value under key, replacing any previous entry.
func (m *Map[V]) Set(key string, value V) error {
	p := hashkey.Of(key)
	idx := m.bisect(p)
	if idx > 0 {
		idx--
	}
	if m.length == 0 {
		empty, err := codec.Marshal(map[string]V{})
		if err != nil {
			return err
		}
		name, err := m.store.Mint(len(m.filenames), empty)
		if err != nil {
			return err
		}
		m.filenames = append(m.filenames, name)
		if err := m.cache.Put(name, make(map[string]V)); err != nil {
			return err
		}
		m.lens = append(m.lens, 0)
		m.mins = append(m.mins, p)
		idx = len(m.filenames) - 1
	}
	seg, err := m.chunkAt(idx)
	if err != nil {
		return err
	}
	before := len(seg)
	seg[key] = value
	delta := len(seg) - before
	m.lens[idx] += delta
	m.length += delta
	if hashkey.Less(p, m.mins[idx]) {
		m.mins[idx] = p
	}
	if delta == 0 {
		return nil
	}
	return m.balance(idx)
}

// Delete removes the entry under key.
func (m *Map[V]) Delete(key string) error {
	p := hashkey.Of(key)
	idx := m.bisect(p)
	if idx == 0 {
		return keyNotFound(key, "delete")
	}
	idx--
	seg, err := m.chunkAt(idx)
	if err != nil {
		return err
	}
	if _, ok := seg[key]; !ok {
		return keyNotFound(key, "delete")
	}
	delete(seg, key)
	m.lens[idx]--
	m.length--
	if m.lens[idx] == 0 {
		return m.delChunk(idx)
	}
	if key == m.mins[idx].Key {
		m.mins[idx] = minPair(seg)
	}
	return m.balance(idx)
}

// delChunk destroys segment i.
func (m *Map[V]) delChunk(i int) error {
	name := m.filenames[i]
	if err := m.store.DeleteSegment(name); err != nil {
		return err
	}
	m.cache.Drop(name)
	m.length -= m.lens[i]
	m.filenames = append(m.filenames[:i], m.filenames[i+1:]...)
	m.lens = append(m.lens[:i], m.lens[i+1:]...)
	m.mins = append(m.mins[:i], m.mins[i+1:]...)
	return nil
}

// popChunk removes segment i and returns its entries without writing them
// back.
func (m *Map[V]) popChunk(i int) (map[string]V, error) {
	seg, err := m.cache.Take(m.filenames[i])
	if err != nil {
		return nil, err
	}
	if err := m.delChunk(i); err != nil {
		return nil, err
	}
	return seg, nil
}

// Clear removes every entry and segment file and rewinds the id counter.
func (m *Map[V]) Clear() error {
	for _, name := range m.filenames {
		if err := m.store.DeleteSegment(name); err != nil {
			return err
		}
	}
	m.cache.Clear()
	m.filenames = m.filenames[:0]
	m.lens = m.lens[:0]
	m.mins = m.mins[:0]
	m.length = 0
	if err := m.store.ResetCounter(); err != nil {
		return err
	}
	return m.Flush()
}

// Flush writes every resident segment back, then persists the metadata
// vectors, so metadata can only lag segments if the flush fails partway.
func (m *Map[V]) Flush() error {
	if err := m.cache.FlushAll(); err != nil {
		return err
	}
	if err := segment.WriteMeta(m.store, segment.FilenamesFile, m.filenames); err != nil {
		return err
	}
	if err := segment.WriteMeta(m.store, segment.LensFile, m.lens); err != nil {
		return err
	}
	return segment.WriteMeta(m.store, segment.MinsFile, m.mins)
}

// Close flushes and marks the dict closed. Closing twice is a no-op.
func (m *Map[V]) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	err := m.Flush()
	m.log.Infow("Closed big dict", "length", m.length, "segments", len(m.filenames))
	return err
}

// SegmentLens returns a copy of the per-segment lengths. Exposed for
// integrity checks and tests.
func (m *Map[V]) SegmentLens() []int {
	out := make([]int, len(m.lens))
	copy(out, m.lens)
	return out
}

// minPair scans a segment for its smallest (hash, key) pair.
func minPair[V any](seg map[string]V) hashkey.Pair {
	var best hashkey.Pair
	first := true
	for k := range seg {
		p := hashkey.Of(k)
		if first || hashkey.Less(p, best) {
			best = p
			first = false
		}
	}
	return best
}
