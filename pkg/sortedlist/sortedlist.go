// Package sortedlist provides mutable sequences maintained in total order:
// List, partitioned into on-disk segments for lengths far exceeding RAM, and
// MemList, the same segmented layout held in memory.
//
// Dispatch goes through the per-segment minimum rather than the positional
// index: the segment whose range covers a value is found by binary search
// over mins, so membership tests and ordered inserts cost O(log m) plus the
// in-segment bisect. Positional reads and deletes use the Fenwick tree with
// the same edge fast-paths as a big list. Duplicate elements are allowed.
package sortedlist

import (
	"cmp"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/iamNilotpal/bigcoll/internal/segcore"
	"github.com/iamNilotpal/bigcoll/internal/segment"
	"github.com/iamNilotpal/bigcoll/pkg/errors"
	"github.com/iamNilotpal/bigcoll/pkg/options"
)

// IndexMode selects the search behaviour of Index.
type IndexMode int

const (
	// IndexLeft finds the smallest rank r with list[r] >= v.
	IndexLeft IndexMode = iota
	// IndexRight finds the smallest rank r with list[r] > v.
	IndexRight
	// IndexExact finds the leftmost rank holding exactly v, or fails with
	// NOT_FOUND.
	IndexExact
)

// List is an out-of-core ordered sequence of T.
type List[T cmp.Ordered] struct {
	core   *segcore.Core[T]
	store  *segment.Store
	opts   *options.Options
	log    *zap.SugaredLogger
	closed bool
}

// Open opens (creating if necessary) a sorted list rooted at a directory.
func Open[T cmp.Ordered](root string, opts ...options.OptionFunc) (*List[T], error) {
	o, err := options.New(options.DefaultSortedChunkSize, opts...)
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
	core, err := segcore.Open[T](segcore.Config{
		Store:         store,
		ChunkSize:     o.ChunkSize,
		CacheCapacity: o.CacheCapacity,
		TrackMins:     true,
		Log:           o.Logger,
	})
	if err != nil {
		return nil, err
	}

	l := &List[T]{core: core, store: store, opts: o, log: o.Logger}
	l.log.Infow("Opened sorted list", "root", root, "length", core.Len(), "segments", core.Segments())
	return l, nil
}

// Len returns the number of elements.
func (l *List[T]) Len() int { return l.core.Len() }

// bisectRight returns the number of elements in seg not exceeding x.
func bisectRight[T cmp.Ordered](seg []T, x T) int {
	return sort.Search(len(seg), func(i int) bool { return seg[i] > x })
}

// bisectLeft returns the number of elements in seg strictly below x.
func bisectLeft[T cmp.Ordered](seg []T, x T) int {
	return sort.Search(len(seg), func(i int) bool { return seg[i] >= x })
}

// target picks the segment whose range covers x: the front segment for
// values below every min, the tail segment for values at or above the last
// min, and otherwise the bisected interior segment.
func (l *List[T]) target(x T) int {
	mins := l.core.Mins()
	m := len(mins)
	switch {
	case x < mins[0]:
		return 0
	case x >= mins[m-1]:
		return m - 1
	default:
		i := sort.Search(m-2, func(k int) bool { return mins[k+1] > x })
		return i
	}
}

// Add inserts x at its ordered position, keeping duplicates.
func (l *List[T]) Add(x T) error {
	if l.core.Len() == 0 {
		l.core.InvalidateFenwick()
		return l.core.AppendSegment([]T{x})
	}
	i := l.target(x)

	// Pre-split an oversized segment so the insert cannot push it past
	// 2*chunk; the insert then goes into whichever half brackets x.
	if l.core.SegLen(i) >= 2*l.core.ChunkSize() {
		if err := l.core.SplitChunk(i); err != nil {
			return err
		}
		if x >= l.core.Mins()[i+1] {
			i++
		}
	}

	seg, err := l.core.Chunk(i)
	if err != nil {
		return err
	}
	j := bisectRight(*seg, x)
	*seg = slices.Insert(*seg, j, x)
	if j == 0 {
		l.core.SetMin(i, x)
	}
	l.core.FenwickUpdate(i, 1)
	l.core.IncLen(1)
	return nil
}

// Discard removes one occurrence of x. Absence is silent; the return
// reports whether an element was removed.
func (l *List[T]) Discard(x T) (bool, error) {
	if l.core.Len() == 0 {
		return false, nil
	}
	mins := l.core.Mins()
	if x < mins[0] {
		return false, nil
	}
	i := l.target(x)
	seg, err := l.core.Chunk(i)
	if err != nil {
		return false, err
	}
	j := bisectRight(*seg, x) - 1
	if j < 0 || (*seg)[j] != x {
		return false, nil
	}
	*seg = slices.Delete(*seg, j, j+1)
	if len(*seg) == 0 {
		if err := l.core.DelChunk(i); err != nil {
			return false, err
		}
		return true, nil
	}
	if j == 0 {
		l.core.SetMin(i, (*seg)[0])
	}
	l.core.FenwickUpdate(i, -1)
	l.core.IncLen(-1)
	if err := l.core.Balance(i); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether x occurs in the list.
func (l *List[T]) Contains(x T) (bool, error) {
	if l.core.Len() == 0 {
		return false, nil
	}
	if x < l.core.Mins()[0] {
		return false, nil
	}
	seg, err := l.core.Chunk(l.target(x))
	if err != nil {
		return false, err
	}
	j := bisectRight(*seg, x)
	return j > 0 && (*seg)[j-1] == x, nil
}

// resolve maps a possibly negative rank into [0, N).
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

// locate dispatches a rank to (segment, offset) with the same edge fast
// paths as a big list.
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

// Set is not supported: assigning through a rank would break the order.
func (l *List[T]) Set(r int, v T) error {
	return errors.NewLookupError(
		errors.ErrorCodeUnsupported, "Sorted lists do not support indexed assignment",
	).WithRank(r, l.core.Len()).WithOperation("set")
}

// Delete removes the element at rank r.
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
	if j == 0 {
		l.core.SetMin(i, (*seg)[0])
	}
	l.core.FenwickUpdate(i, -1)
	l.core.IncLen(-1)
	return l.core.Balance(i)
}

// Index searches for v and returns a rank according to mode.
func (l *List[T]) Index(v T, mode IndexMode) (int, error) {
	n := l.core.Len()
	if n == 0 {
		if mode == IndexExact {
			return 0, notFound(v)
		}
		return 0, nil
	}
	mins := l.core.Mins()

	if mode == IndexRight {
		i := sort.Search(len(mins), func(k int) bool { return mins[k] > v })
		if i > 0 {
			i--
		}
		seg, err := l.core.Chunk(i)
		if err != nil {
			return 0, err
		}
		return l.core.PrefixLen(i) + bisectRight(*seg, v), nil
	}

	i := sort.Search(len(mins), func(k int) bool { return mins[k] >= v })
	if i > 0 {
		i--
	}
	seg, err := l.core.Chunk(i)
	if err != nil {
		return 0, err
	}
	j := bisectLeft(*seg, v)
	rank := l.core.PrefixLen(i) + j
	if mode == IndexLeft {
		return rank, nil
	}
	if rank < n {
		got, err := l.Get(rank)
		if err != nil {
			return 0, err
		}
		if got == v {
			return rank, nil
		}
	}
	return 0, notFound(v)
}

func notFound(v any) error {
	return errors.NewLookupError(
		errors.ErrorCodeNotFound, "Value not found",
	).WithValue(v).WithOperation("index")
}

// Clear removes every element and segment file and rewinds the id counter.
func (l *List[T]) Clear() error {
	return l.core.Clear()
}

// Flush persists the metadata vectors and writes every resident segment back.
func (l *List[T]) Flush() error {
	return l.core.Commit()
}

// Close flushes and marks the list closed. Closing twice is a no-op.
func (l *List[T]) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	err := l.core.Commit()
	l.log.Infow("Closed sorted list", "length", l.core.Len(), "segments", l.core.Segments())
	return err
}

// SegmentLens returns a copy of the per-segment lengths. Exposed for
// integrity checks and tests.
func (l *List[T]) SegmentLens() []int { return l.core.Lens() }
