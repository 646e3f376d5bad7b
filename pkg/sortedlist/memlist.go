package sortedlist

import (
	"cmp"
	"iter"
	"slices"
	"sort"

	"github.com/iamNilotpal/bigcoll/internal/fenwick"
	"github.com/iamNilotpal/bigcoll/pkg/errors"
)

// memChunkSize is the target segment size for in-memory sorted lists.
const memChunkSize = 1024

// MemList is the in-memory counterpart of List: the same segmented layout,
// per-segment mins, and Fenwick positional index, without the disk. Useful
// when the data fits in RAM but the O(N) insert cost of one flat slice
// does not.
type MemList[T cmp.Ordered] struct {
	data   [][]T
	mins   []T
	fen    *fenwick.Tree // nil marks the tree for lazy rebuild
	length int
	chunk  int
}

// NewMemList builds a sorted list from the given items.
func NewMemList[T cmp.Ordered](items ...T) *MemList[T] {
	l := &MemList[T]{chunk: memChunkSize}
	if len(items) > 0 {
		sorted := slices.Clone(items)
		slices.Sort(sorted)
		l.rebuild(sorted)
	}
	return l
}

// Len returns the number of elements.
func (l *MemList[T]) Len() int { return l.length }

// rebuild replaces the contents with already sorted data, folding a short
// tail segment into its neighbour.
func (l *MemList[T]) rebuild(sorted []T) {
	l.data = l.data[:0]
	l.mins = l.mins[:0]
	l.fen = nil
	l.length = len(sorted)
	for i := 0; i < len(sorted); i += l.chunk {
		end := min(i+l.chunk, len(sorted))
		l.data = append(l.data, slices.Clone(sorted[i:end]))
		l.mins = append(l.mins, sorted[i])
	}
	if m := len(l.data); m > 1 && len(l.data[m-1]) < l.chunk/2 {
		l.data[m-2] = append(l.data[m-2], l.data[m-1]...)
		l.data = l.data[:m-1]
		l.mins = l.mins[:m-1]
	}
}

// target picks the segment whose range covers x.
func (l *MemList[T]) target(x T) int {
	m := len(l.mins)
	switch {
	case x < l.mins[0]:
		return 0
	case x >= l.mins[m-1]:
		return m - 1
	default:
		return sort.Search(m-2, func(k int) bool { return l.mins[k+1] > x })
	}
}

// update adjusts segment i's recorded length by delta.
func (l *MemList[T]) update(i, delta int) {
	if l.fen != nil {
		l.fen.Update(i, delta)
	}
}

// locate translates a rank into (segment, offset), with edge fast paths.
func (l *MemList[T]) locate(r int) (int, int) {
	m := len(l.data)
	if r < len(l.data[0]) {
		return 0, r
	}
	if r+len(l.data[m-1]) >= l.length {
		return m - 1, r - l.length + len(l.data[m-1])
	}
	if l.fen == nil {
		lens := make([]int, m)
		for i, seg := range l.data {
			lens[i] = len(seg)
		}
		l.fen = fenwick.Build(lens)
	}
	return l.fen.Locate(r)
}

// splitSeg halves segment i, inserting the new half at i+1.
func (l *MemList[T]) splitSeg(i int) {
	seg := l.data[i]
	half := len(seg) / 2
	tail := slices.Clone(seg[half:])
	l.data[i] = seg[:half]
	l.data = slices.Insert(l.data, i+1, tail)
	l.mins = slices.Insert(l.mins, i+1, tail[0])
	l.fen = nil
}

// Add inserts x at its ordered position, keeping duplicates.
func (l *MemList[T]) Add(x T) {
	if l.length == 0 {
		l.data = append(l.data, []T{x})
		l.mins = append(l.mins, x)
		l.fen = nil
		l.length = 1
		return
	}
	i := l.target(x)
	if len(l.data[i]) >= 2*l.chunk {
		l.splitSeg(i)
		if x >= l.mins[i+1] {
			i++
		}
	}
	seg := l.data[i]
	j := bisectRight(seg, x)
	l.data[i] = slices.Insert(seg, j, x)
	if j == 0 {
		l.mins[i] = x
	}
	l.update(i, 1)
	l.length++
}

// Discard removes one occurrence of x, reporting whether anything was
// removed. Absence is silent.
func (l *MemList[T]) Discard(x T) bool {
	if l.length == 0 || x < l.mins[0] {
		return false
	}
	i := l.target(x)
	seg := l.data[i]
	j := bisectRight(seg, x) - 1
	if j < 0 || seg[j] != x {
		return false
	}
	l.data[i] = slices.Delete(seg, j, j+1)
	l.length--
	if len(l.data[i]) == 0 {
		l.removeSeg(i)
		return true
	}
	if j == 0 {
		l.mins[i] = l.data[i][0]
	}
	l.update(i, -1)
	if len(l.data) > 1 && len(l.data[i]) < l.chunk/2 {
		l.mergeShort(i)
	}
	return true
}

// removeSeg drops an emptied segment.
func (l *MemList[T]) removeSeg(i int) {
	wasTail := i == len(l.data)-1
	l.data = slices.Delete(l.data, i, i+1)
	l.mins = slices.Delete(l.mins, i, i+1)
	if l.fen == nil || !wasTail {
		l.fen = nil
	} else {
		l.fen.RemoveLast()
	}
}

// mergeShort folds an undersized segment into its smaller neighbour, then
// re-splits if the merge overshot.
func (l *MemList[T]) mergeShort(i int) {
	nbr := i + 1
	if i == len(l.data)-1 || (i > 0 && len(l.data[i-1]) < len(l.data[i+1])) {
		nbr = i - 1
	}
	lo := min(i, nbr)
	l.data[lo] = append(l.data[lo], l.data[lo+1]...)
	l.data = slices.Delete(l.data, lo+1, lo+2)
	l.mins = slices.Delete(l.mins, lo+1, lo+2)
	l.fen = nil
	if len(l.data[lo]) > 2*l.chunk {
		l.splitSeg(lo)
	}
}

// Contains reports whether x occurs in the list.
func (l *MemList[T]) Contains(x T) bool {
	if l.length == 0 || x < l.mins[0] {
		return false
	}
	seg := l.data[l.target(x)]
	j := bisectRight(seg, x)
	return j > 0 && seg[j-1] == x
}

// Get returns the element at rank r. Negative ranks count from the end.
func (l *MemList[T]) Get(r int) (T, error) {
	var zero T
	idx := r
	if idx < 0 {
		idx += l.length
	}
	if idx < 0 || idx >= l.length {
		return zero, errors.NewLookupError(
			errors.ErrorCodeIndexOutOfRange, "Rank out of range",
		).WithRank(r, l.length).WithOperation("get")
	}
	i, j := l.locate(idx)
	return l.data[i][j], nil
}

// Delete removes the element at rank r.
func (l *MemList[T]) Delete(r int) error {
	idx := r
	if idx < 0 {
		idx += l.length
	}
	if idx < 0 || idx >= l.length {
		return errors.NewLookupError(
			errors.ErrorCodeIndexOutOfRange, "Rank out of range",
		).WithRank(r, l.length).WithOperation("delete")
	}
	i, j := l.locate(idx)
	l.data[i] = slices.Delete(l.data[i], j, j+1)
	l.length--
	if len(l.data[i]) == 0 {
		l.removeSeg(i)
		return nil
	}
	if j == 0 {
		l.mins[i] = l.data[i][0]
	}
	l.update(i, -1)
	if len(l.data) > 1 && len(l.data[i]) < l.chunk/2 {
		l.mergeShort(i)
	}
	return nil
}

// Index searches for v and returns a rank according to mode.
func (l *MemList[T]) Index(v T, mode IndexMode) (int, error) {
	if l.length == 0 {
		if mode == IndexExact {
			return 0, notFound(v)
		}
		return 0, nil
	}

	prefix := func(i int) int {
		total := 0
		for k := 0; k < i; k++ {
			total += len(l.data[k])
		}
		return total
	}

	if mode == IndexRight {
		i := sort.Search(len(l.mins), func(k int) bool { return l.mins[k] > v })
		if i > 0 {
			i--
		}
		return prefix(i) + bisectRight(l.data[i], v), nil
	}

	i := sort.Search(len(l.mins), func(k int) bool { return l.mins[k] >= v })
	if i > 0 {
		i--
	}
	j := bisectLeft(l.data[i], v)
	rank := prefix(i) + j
	if mode == IndexLeft {
		return rank, nil
	}
	if rank < l.length {
		got, err := l.Get(rank)
		if err == nil && got == v {
			return rank, nil
		}
	}
	return 0, notFound(v)
}

// Extend inserts every element of values. Small additions degrade to
// repeated adds; large ones merge with the existing data and re-segment.
func (l *MemList[T]) Extend(values []T) {
	if len(values) == 0 {
		return
	}
	if len(values) < l.length/8 {
		for _, v := range values {
			l.Add(v)
		}
		return
	}
	merged := make([]T, 0, l.length+len(values))
	for _, seg := range l.data {
		merged = append(merged, seg...)
	}
	merged = append(merged, values...)
	slices.Sort(merged)
	l.rebuild(merged)
}

// Clear removes every element.
func (l *MemList[T]) Clear() {
	l.data = l.data[:0]
	l.mins = l.mins[:0]
	l.fen = nil
	l.length = 0
}

// All walks the list in ascending order.
func (l *MemList[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seg := range l.data {
			for _, v := range seg {
				if !yield(v) {
					return
				}
			}
		}
	}
}
