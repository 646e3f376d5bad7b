// Package segcore is the shared engine under the sequence containers. It
// owns the shadow arrays (filenames, lens, and optionally mins), the
// in-memory length, the lazily built Fenwick tree, and the LRU segment
// cache, and it executes the balancing moves over slice-shaped segments.
//
// BigList runs the core without min tracking; the sorted list runs it with
// min tracking so that every structural move keeps mins[i] equal to the
// first element of segment i. BigDict has its own map-shaped executor and
// shares only the decision table, the store, and the cache.
package segcore

import (
	"slices"

	"go.uber.org/zap"

	"github.com/iamNilotpal/bigcoll/internal/balance"
	"github.com/iamNilotpal/bigcoll/internal/cache"
	"github.com/iamNilotpal/bigcoll/internal/codec"
	"github.com/iamNilotpal/bigcoll/internal/fenwick"
	"github.com/iamNilotpal/bigcoll/internal/segment"
	"github.com/iamNilotpal/bigcoll/pkg/errors"
)

// Config carries what the core needs to open.
type Config struct {
	Store         *segment.Store
	ChunkSize     int
	CacheCapacity int
	TrackMins     bool // maintain mins[i] == first element of segment i
	Log           *zap.SugaredLogger
}

// Core is the engine state for one slice-segmented container.
type Core[T any] struct {
	store *segment.Store
	cache *cache.Cache[*[]T]
	fen   *fenwick.Tree // nil marks the tree for lazy rebuild

	filenames []string
	lens      []int
	mins      []T
	length    int

	chunk     int
	trackMins bool
	log       *zap.SugaredLogger
}

// Open loads the shadow arrays from the store's metadata and validates their
// structural consistency.
func Open[T any](cfg Config) (*Core[T], error) {
	c := &Core[T]{
		store:     cfg.Store,
		chunk:     cfg.ChunkSize,
		trackMins: cfg.TrackMins,
		log:       cfg.Log,
	}
	c.cache = cache.New(cfg.CacheCapacity, c.loadSegment, c.storeSegment, cfg.Log)

	var err error
	if c.filenames, err = segment.ReadMeta(cfg.Store, segment.FilenamesFile, []string{}); err != nil {
		return nil, err
	}
	if c.lens, err = segment.ReadMeta(cfg.Store, segment.LensFile, []int{}); err != nil {
		return nil, err
	}
	if cfg.TrackMins {
		if c.mins, err = segment.ReadMeta(cfg.Store, segment.MinsFile, []T{}); err != nil {
			return nil, err
		}
	}
	if len(c.filenames) != len(c.lens) || (cfg.TrackMins && len(c.mins) != len(c.filenames)) {
		return nil, errors.NewStorageError(
			nil, errors.ErrorCodeCorruptDatabase, "Metadata vectors disagree in length",
		).WithDetail("filenames", len(c.filenames)).
			WithDetail("lens", len(c.lens)).
			WithDetail("mins", len(c.mins))
	}
	for _, n := range c.lens {
		c.length += n
	}
	return c, nil
}

func (c *Core[T]) loadSegment(name string) (*[]T, error) {
	data, err := c.store.ReadSegment(name)
	if err != nil {
		return nil, err
	}
	var seg []T
	if err := codec.Unmarshal(data, &seg); err != nil {
		return nil, err
	}
	return &seg, nil
}

func (c *Core[T]) storeSegment(name string, seg *[]T) error {
	data, err := codec.Marshal(*seg)
	if err != nil {
		return err
	}
	return c.store.WriteSegment(name, data)
}

// Len returns the total number of elements.
func (c *Core[T]) Len() int { return c.length }

// Segments returns the number of segments.
func (c *Core[T]) Segments() int { return len(c.lens) }

// ChunkSize returns the target segment size.
func (c *Core[T]) ChunkSize() int { return c.chunk }

// SegLen returns the length of segment i.
func (c *Core[T]) SegLen(i int) int { return c.lens[i] }

// Lens returns a copy of the per-segment lengths.
func (c *Core[T]) Lens() []int { return slices.Clone(c.lens) }

// Mins returns the summary keys. Callers must treat the slice as read-only.
func (c *Core[T]) Mins() []T { return c.mins }

// SetMin overwrites the summary key of segment i.
func (c *Core[T]) SetMin(i int, v T) { c.mins[i] = v }

// IncLen adjusts the cached total length.
func (c *Core[T]) IncLen(delta int) { c.length += delta }

// Chunk returns a mutable handle to segment i, loading it through the cache.
// The handle stays valid until the next cache operation on a different
// segment; mutate through it immediately after the call.
func (c *Core[T]) Chunk(i int) (*[]T, error) {
	return c.cache.Touch(c.filenames[i])
}

// Mint allocates a fresh segment file holding an empty payload and returns
// its name. The persisted id counter advances before the name is visible.
func (c *Core[T]) Mint() (string, error) {
	empty, err := codec.Marshal(make([]T, 0))
	if err != nil {
		return "", err
	}
	return c.store.Mint(len(c.filenames), empty)
}

// DelChunk destroys segment i: the file is removed, the shadow arrays
// contract, and the Fenwick tree is patched when the removal is at the tail
// or invalidated otherwise.
func (c *Core[T]) DelChunk(i int) error {
	name := c.filenames[i]
	if err := c.store.DeleteSegment(name); err != nil {
		return err
	}
	c.cache.Drop(name)
	wasTail := i == len(c.lens)-1
	c.length -= c.lens[i]
	c.filenames = slices.Delete(c.filenames, i, i+1)
	c.lens = slices.Delete(c.lens, i, i+1)
	if c.fen == nil || !wasTail {
		c.fen = nil
	} else {
		c.fen.RemoveLast()
	}
	if c.trackMins {
		c.mins = slices.Delete(c.mins, i, i+1)
	}
	return nil
}

// PopChunk removes segment i and returns its elements without writing them
// back. The caller owns the returned slice.
func (c *Core[T]) PopChunk(i int) ([]T, error) {
	seg, err := c.cache.Take(c.filenames[i])
	if err != nil {
		return nil, err
	}
	if err := c.DelChunk(i); err != nil {
		return nil, err
	}
	return *seg, nil
}

// AppendSegment mints a new tail segment holding values.
func (c *Core[T]) AppendSegment(values []T) error {
	name, err := c.Mint()
	if err != nil {
		return err
	}
	c.filenames = append(c.filenames, name)
	if err := c.cache.Put(name, &values); err != nil {
		return err
	}
	c.FenwickAppend(len(values))
	c.length += len(values)
	if c.trackMins {
		c.mins = append(c.mins, values[0])
	}
	return nil
}

// FenwickIndex translates a global rank into (segment, offset), rebuilding
// the tree first when it was invalidated.
func (c *Core[T]) FenwickIndex(rank int) (int, int) {
	if c.fen == nil {
		c.fen = fenwick.Build(c.lens)
	}
	return c.fen.Locate(rank)
}

// PrefixLen returns the number of elements in segments before i, rebuilding
// the tree first when it was invalidated.
func (c *Core[T]) PrefixLen(i int) int {
	if c.fen == nil {
		c.fen = fenwick.Build(c.lens)
	}
	return c.fen.PrefixSum(i)
}

// FenwickUpdate adds delta to segment i's length and patches the tree if it
// is live.
func (c *Core[T]) FenwickUpdate(i, delta int) {
	if delta == 0 {
		return
	}
	c.lens[i] += delta
	if c.fen != nil {
		c.fen.Update(i, delta)
	}
}

// FenwickAppend grows the shadow arrays by one tail segment of the given
// length, patching the tree incrementally if it is live.
func (c *Core[T]) FenwickAppend(length int) {
	c.lens = append(c.lens, length)
	if c.fen != nil {
		c.fen.Append(length)
	}
}

// InvalidateFenwick marks the tree for lazy rebuild.
func (c *Core[T]) InvalidateFenwick() { c.fen = nil }

// FenwickLive reports whether the tree is currently built. Test hook for the
// lazy-rebuild behaviour.
func (c *Core[T]) FenwickLive() bool { return c.fen != nil }

// Commit writes every resident segment back, then persists the shadow
// arrays. Segments go first: if the flush fails the error propagates after
// every segment got its write attempt, and metadata lags segments rather
// than describing blobs that were never written. Committing twice without
// intervening mutation produces identical bytes.
func (c *Core[T]) Commit() error {
	if err := c.cache.FlushAll(); err != nil {
		return err
	}
	if err := segment.WriteMeta(c.store, segment.FilenamesFile, c.filenames); err != nil {
		return err
	}
	if err := segment.WriteMeta(c.store, segment.LensFile, c.lens); err != nil {
		return err
	}
	if c.trackMins {
		return segment.WriteMeta(c.store, segment.MinsFile, c.mins)
	}
	return nil
}

// Clear destroys every segment, resets the id counter, and persists the
// emptied metadata.
func (c *Core[T]) Clear() error {
	for _, name := range c.filenames {
		if err := c.store.DeleteSegment(name); err != nil {
			return err
		}
	}
	c.cache.Clear()
	c.filenames = c.filenames[:0]
	c.lens = c.lens[:0]
	if c.trackMins {
		c.mins = c.mins[:0]
	}
	c.length = 0
	c.fen = nil
	if err := c.store.ResetCounter(); err != nil {
		return err
	}
	return c.Commit()
}

// ReverseInPlace reverses every segment's contents and the segment order
// itself. Only meaningful without min tracking.
func (c *Core[T]) ReverseInPlace() error {
	for i := range c.filenames {
		seg, err := c.Chunk(i)
		if err != nil {
			return err
		}
		slices.Reverse(*seg)
	}
	slices.Reverse(c.filenames)
	slices.Reverse(c.lens)
	c.fen = nil
	return nil
}

// Balance restores the segment-size invariant around segment i, executing
// the move the decision table picks for the window of lengths.
func (c *Core[T]) Balance(i int) error {
	d := balance.Plan(c.lens, i, c.chunk)
	switch d.Action {
	case balance.ActionNone:
		return nil
	case balance.ActionSplitSingle:
		return c.splitSingle()
	case balance.ActionMergePair:
		return c.MergePair(d.Lo)
	case balance.ActionSplitPairThree:
		return c.splitPairThree(d.Lo)
	case balance.ActionRedistributePair:
		return c.redistributePair(d.Lo)
	case balance.ActionMergeTrioTwo:
		return c.mergeTrioTwo(d.Lo)
	case balance.ActionSplitTrioFour:
		return c.splitTrioFour(d.Lo)
	default:
		return c.redistributeTrio(d.Lo)
	}
}
