package biglist

import "iter"

// All walks the list in rank order, segment by segment. The second value of
// each pair is the load error, if any; iteration stops after yielding one.
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

// Backward walks the list in reverse rank order.
func (l *List[T]) Backward() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for i := l.core.Segments() - 1; i >= 0; i-- {
			seg, err := l.core.Chunk(i)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for j := len(*seg) - 1; j >= 0; j-- {
				if !yield((*seg)[j], nil) {
					return
				}
			}
		}
	}
}

// Slice lazily yields the elements selected by start, stop, and step, with
// the same index semantics as DeleteRange. Unit steps walk segments in
// order; larger steps skip within the walk; negative steps resolve rank by
// rank.
func (l *List[T]) Slice(start, stop, step int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if step == 0 {
			return
		}
		n := l.core.Len()
		first, size, abs := normalizeRange(n, start, stop, step)
		if size == 0 {
			return
		}
		if step < 0 {
			for k := 0; k < size; k++ {
				v, err := l.Get(first + (size-1-k)*abs)
				if !yield(v, err) || err != nil {
					return
				}
			}
			return
		}

		i, j := l.locate(first)
		skip := 0
		yielded := 0
		for ; i < l.core.Segments() && yielded < size; i++ {
			seg, err := l.core.Chunk(i)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for ; j < len(*seg) && yielded < size; j++ {
				if skip > 0 {
					skip--
					continue
				}
				if !yield((*seg)[j], nil) {
					return
				}
				yielded++
				skip = abs - 1
			}
			j = 0
		}
	}
}
