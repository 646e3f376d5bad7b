package biglist

import (
	"slices"

	"github.com/iamNilotpal/bigcoll/pkg/errors"
)

// DeleteRange removes the elements selected by start, stop, and step.
// Negative indices count from the end, out-of-range bounds are clamped, and
// a negative step walks backwards from start down to (but not including)
// stop.
//
// Unit steps are specialised: whole segments are dropped first from the
// touched end, then the edge segments are trimmed, then the touched segment
// is rebalanced. Other steps degrade to element-wise deletion in reverse
// order.
func (l *List[T]) DeleteRange(start, stop, step int) error {
	if step == 0 {
		return errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Range step cannot be zero",
		).WithField("step").WithRule("nonzero").WithProvided(step)
	}
	n := l.core.Len()
	first, size, abs := normalizeRange(n, start, stop, step)
	switch {
	case size == 0:
		return nil
	case size == n:
		return l.Clear()
	case abs != 1:
		for k := size - 1; k >= 0; k-- {
			if err := l.Delete(first + k*abs); err != nil {
				return err
			}
		}
		return nil
	}

	lo, hi := first, first+size
	if lo == 0 {
		return l.deletePrefix(size)
	}
	if hi == n {
		return l.deleteSuffix(size)
	}
	return l.deleteInterior(lo, hi, size)
}

// deletePrefix removes the first size elements.
func (l *List[T]) deletePrefix(size int) error {
	for l.core.Segments() > 0 && size >= l.core.SegLen(0) {
		size -= l.core.SegLen(0)
		if err := l.core.DelChunk(0); err != nil {
			return err
		}
	}
	if size == 0 {
		return nil
	}
	seg, err := l.core.Chunk(0)
	if err != nil {
		return err
	}
	*seg = slices.Delete(*seg, 0, size)
	l.core.FenwickUpdate(0, -size)
	l.core.IncLen(-size)
	return l.core.Balance(0)
}

// deleteSuffix removes the last size elements.
func (l *List[T]) deleteSuffix(size int) error {
	for l.core.Segments() > 0 && size >= l.core.SegLen(l.core.Segments()-1) {
		size -= l.core.SegLen(l.core.Segments() - 1)
		if err := l.core.DelChunk(l.core.Segments() - 1); err != nil {
			return err
		}
	}
	if size == 0 {
		return nil
	}
	m := l.core.Segments()
	seg, err := l.core.Chunk(m - 1)
	if err != nil {
		return err
	}
	*seg = (*seg)[:len(*seg)-size]
	l.core.FenwickUpdate(m-1, -size)
	l.core.IncLen(-size)
	return l.core.Balance(m - 1)
}

// deleteInterior removes the contiguous ranks [lo, hi) where neither edge
// touches the ends of the list.
func (l *List[T]) deleteInterior(lo, hi, size int) error {
	si, sj := l.core.FenwickIndex(lo)
	ti, tj := l.core.FenwickIndex(hi)

	// Range confined to one segment (or ending exactly on a boundary).
	if si == ti || (si+1 == ti && tj == 0) {
		seg, err := l.core.Chunk(si)
		if err != nil {
			return err
		}
		*seg = slices.Delete(*seg, sj, sj+size)
		if len(*seg) == 0 {
			return l.core.DelChunk(si)
		}
		l.core.FenwickUpdate(si, -size)
		l.core.IncLen(-size)
		return l.core.Balance(si)
	}

	// Drop the wholly covered segments between the edges.
	for i := ti - 1; i > si; i-- {
		if err := l.core.DelChunk(i); err != nil {
			return err
		}
	}
	l.core.InvalidateFenwick()

	// Trim the tail of the left edge segment.
	segA, err := l.core.Chunk(si)
	if err != nil {
		return err
	}
	removedA := len(*segA) - sj
	*segA = (*segA)[:sj]
	l.core.FenwickUpdate(si, -removedA)
	l.core.IncLen(-removedA)

	// Trim the head of the right edge segment, now adjacent.
	segB, err := l.core.Chunk(si + 1)
	if err != nil {
		return err
	}
	*segB = slices.Delete(*segB, 0, tj)
	l.core.FenwickUpdate(si+1, -tj)
	l.core.IncLen(-tj)

	return l.core.Balance(si)
}

// normalizeRange converts the range parameters into an ascending
// (first, count, absStep) triple over [0, n).
func normalizeRange(n, start, stop, step int) (first, size, abs int) {
	if step > 0 {
		lo, hi := start, stop
		if lo < 0 {
			lo += n
			if lo < 0 {
				lo = 0
			}
		} else if lo > n {
			lo = n
		}
		if hi < 0 {
			hi += n
			if hi < 0 {
				hi = 0
			}
		} else if hi > n {
			hi = n
		}
		if lo >= hi {
			return 0, 0, step
		}
		return lo, (hi - lo + step - 1) / step, step
	}

	abs = -step
	s, e := start, stop
	if s < 0 {
		s += n
	}
	if s > n-1 {
		s = n - 1
	}
	if s < 0 {
		return 0, 0, abs
	}
	if e < 0 {
		e += n
		if e < -1 {
			e = -1
		}
	}
	if s <= e {
		return 0, 0, abs
	}
	size = (s - e + abs - 1) / abs
	return s - (size-1)*abs, size, abs
}
