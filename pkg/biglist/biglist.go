// Package biglist provides a random-access mutable sequence whose elements
// are partitioned into on-disk segments, for lengths far exceeding RAM.
//
// Positional access, insertion, and deletion run in O(log N) segment lookups
// plus O(CHUNK) in-segment work. The first and last segments are dispatched
// by fast path without consulting the Fenwick tree, so appends and edge reads
// stay cheap. Segment sizes are kept within [CHUNK/2, 2*CHUNK] by the
// balancing engine.
//
// A list owns its root directory (or directories — see OpenStriped)
// exclusively. Access is single-threaded cooperative: no operation spawns
// goroutines, and two instances must never share a root.
package biglist

import (
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/iamNilotpal/bigcoll/internal/segcore"
	"github.com/iamNilotpal/bigcoll/internal/segment"
	"github.com/iamNilotpal/bigcoll/pkg/errors"
	"github.com/iamNilotpal/bigcoll/pkg/options"
)

// listDir is the subdirectory of each root the list's files nest under.
const listDir = "list"

// List is an out-of-core positional sequence of T.
type List[T any] struct {
	core   *segcore.Core[T]
	store  *segment.Store
	opts   *options.Options
	log    *zap.SugaredLogger
	closed bool
}

// Open opens (creating if necessary) a big list rooted at a single directory.
func Open[T any](root string, opts ...options.OptionFunc) (*List[T], error) {
	return OpenStriped[T]([]string{root}, opts...)
}

// OpenStriped opens a big list striped over several root directories.
// Segment files are minted across the roots under a growth schedule; every
// root records the full root set and opening fails with
// INCONSISTENT_ROOT_SET when the sets disagree.
func OpenStriped[T any](roots []string, opts ...options.OptionFunc) (*List[T], error) {
	o, err := options.New(options.DefaultListChunkSize, opts...)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "At least one root is required",
		).WithField("roots").WithRule("required")
	}
	nested := make([]string, len(roots))
	for i, root := range roots {
		if err := options.ValidateRoot(root); err != nil {
			return nil, err
		}
		nested[i] = filepath.Join(root, listDir)
	}

	store, err := segment.Open(segment.Config{Fs: o.Fs, Roots: nested, Log: o.Logger})
	if err != nil {
		return nil, err
	}
	core, err := segcore.Open[T](segcore.Config{
		Store:         store,
		ChunkSize:     o.ChunkSize,
		CacheCapacity: o.CacheCapacity,
		Log:           o.Logger,
	})
	if err != nil {
		return nil, err
	}

	l := &List[T]{core: core, store: store, opts: o, log: o.Logger}
	l.log.Infow("Opened big list", "roots", roots, "length", core.Len(), "segments", core.Segments())
	return l, nil
}

// Len returns the number of elements.
func (l *List[T]) Len() int { return l.core.Len() }

// resolve maps a possibly negative rank into [0, N) or fails with
// INDEX_OUT_OF_RANGE.
func (l *List[T]) resolve(r int, op string) (int, error) {
	n := l.core.Len()
	idx := r
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return 0, errors.NewLookupError(
			errors.ErrorCodeIndexOutOfRange, "Rank out of range",
		).WithRank(r, n).WithOperation(op)
	}
	return idx, nil
}

// locate dispatches a rank to (segment, offset). The first and last segments
// are resolved by fast path; everything else goes through the Fenwick tree.
func (l *List[T]) locate(r int) (int, int) {
	m := l.core.Segments()
	if r < l.core.SegLen(0) {
		return 0, r
	}
	if r+l.core.SegLen(m-1) >= l.core.Len() {
		return m - 1, r - l.core.Len() + l.core.SegLen(m-1)
	}
	return l.core.FenwickIndex(r)
}

// Get returns the element at rank r. Negative ranks count from the end.
func (l *List[T]) Get(r int) (T, error) {
	var zero T
	idx, err := l.resolve(r, "get")
	if err != nil {
		return zero, err
	}
	i, j := l.locate(idx)
	seg, err := l.core.Chunk(i)
	if err != nil {
		return zero, err
	}
	return (*seg)[j], nil
}

// Set replaces the element at rank r.
func (l *List[T]) Set(r int, v T) error {
	idx, err := l.resolve(r, "set")
	if err != nil {
		return err
	}
	i, j := l.locate(idx)
	seg, err := l.core.Chunk(i)
	if err != nil {
		return err
	}
	(*seg)[j] = v
	return nil
}

// Append adds v after the last element.
func (l *List[T]) Append(v T) error {
	if l.core.Len() == 0 {
		l.core.InvalidateFenwick()
		return l.core.AppendSegment([]T{v})
	}
	m := l.core.Segments()
	seg, err := l.core.Chunk(m - 1)
	if err != nil {
		return err
	}
	*seg = append(*seg, v)
	l.core.FenwickUpdate(m-1, 1)
	l.core.IncLen(1)
	return l.core.Balance(m - 1)
}

// Insert places v before rank r. The rank is clamped to [0, N]; inserting at
// N appends.
func (l *List[T]) Insert(r int, v T) error {
	n := l.core.Len()
	if n == 0 {
		l.core.InvalidateFenwick()
		return l.core.AppendSegment([]T{v})
	}
	if r < 0 {
		r += n
		if r < 0 {
			r = 0
		}
	}
	if r >= n {
		return l.Append(v)
	}

	var i, j int
	m := l.core.Segments()
	switch {
	case r <= l.core.SegLen(0):
		i, j = 0, r
	case r+l.core.SegLen(m-1) >= n:
		i, j = m-1, r-n+l.core.SegLen(m-1)
	default:
		i, j = l.core.FenwickIndex(r)
	}
	seg, err := l.core.Chunk(i)
	if err != nil {
		return err
	}
	*seg = slices.Insert(*seg, j, v)
	l.core.FenwickUpdate(i, 1)
	l.core.IncLen(1)
	return l.core.Balance(i)
}

// Delete removes the element at rank r. A segment emptied by the deletion is
// destroyed; otherwise the touched segment is rebalanced.
func (l *List[T]) Delete(r int) error {
	idx, err := l.resolve(r, "delete")
	if err != nil {
		return err
	}
	if l.core.Len() == 1 {
		l.core.InvalidateFenwick()
		return l.core.DelChunk(0)
	}
	i, j := l.locate(idx)
	seg, err := l.core.Chunk(i)
	if err != nil {
		return err
	}
	*seg = slices.Delete(*seg, j, j+1)
	if len(*seg) == 0 {
		return l.core.DelChunk(i)
	}
	l.core.FenwickUpdate(i, -1)
	l.core.IncLen(-1)
	return l.core.Balance(i)
}

// Reverse reverses the list in place: every segment's contents and the
// segment order itself. The positional index is rebuilt lazily afterwards.
func (l *List[T]) Reverse() error {
	return l.core.ReverseInPlace()
}

// Clear removes every element and segment file and rewinds the id counter.
func (l *List[T]) Clear() error {
	return l.core.Clear()
}

// Flush persists the metadata vectors and writes every resident segment
// back. Flushing twice with no intervening mutation is a no-op on disk.
func (l *List[T]) Flush() error {
	return l.core.Commit()
}

// Close flushes and marks the list closed. Safe to defer; closing twice is a
// no-op.
func (l *List[T]) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	err := l.core.Commit()
	l.log.Infow("Closed big list", "length", l.core.Len(), "segments", l.core.Segments())
	return err
}

// SegmentLens returns a copy of the per-segment lengths. Exposed for
// integrity checks and tests.
func (l *List[T]) SegmentLens() []int { return l.core.Lens() }
