package sortedlist

import (
	"iter"
	"slices"
)

// All walks the list in ascending order, segment by segment. The second
// value of each pair is the load error, if any; iteration stops after
// yielding one.
func (l *List[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for i := 0; i < l.core.Segments(); i++ {
			seg, err := l.core.Chunk(i)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, v := range *seg {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}

// Extend inserts every element of values. Small additions relative to the
// current length degrade to repeated adds; large ones are merge-sorted with
// the existing data and re-segmented in one pass.
func (l *List[T]) Extend(values []T) error {
	if len(values) == 0 {
		return nil
	}
	if len(values) < l.core.Len()/8 {
		for _, v := range values {
			if err := l.Add(v); err != nil {
				return err
			}
		}
		return nil
	}

	incoming := slices.Clone(values)
	slices.Sort(incoming)

	merged := make([]T, 0, l.core.Len()+len(incoming))
	k := 0
	for v, err := range l.All() {
		if err != nil {
			return err
		}
		for k < len(incoming) && incoming[k] <= v {
			merged = append(merged, incoming[k])
			k++
		}
		merged = append(merged, v)
	}
	merged = append(merged, incoming[k:]...)

	return l.rebuild(merged)
}

// rebuild replaces the container's contents with the already sorted data,
// segmented at the chunk size. A short tail segment is folded into its
// neighbour so the size invariant holds on return.
func (l *List[T]) rebuild(data []T) error {
	if err := l.core.Clear(); err != nil {
		return err
	}
	chunk := l.core.ChunkSize()
	for i := 0; i < len(data); i += chunk {
		end := min(i+chunk, len(data))
		if err := l.core.AppendSegment(slices.Clone(data[i:end])); err != nil {
			return err
		}
	}
	if m := l.core.Segments(); m > 1 && l.core.SegLen(m-1) < chunk/2 {
		return l.core.MergePair(m - 2)
	}
	return nil
}
