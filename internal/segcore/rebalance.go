package segcore

import "slices"

// concat copies the contents of segments lo..lo+count-1 into a fresh slice.
// Contents are copied immediately after each cache touch so later evictions
// in the same window cannot invalidate them.
func (c *Core[T]) concat(lo, count int) ([]T, error) {
	total := 0
	for i := lo; i < lo+count; i++ {
		total += c.lens[i]
	}
	all := make([]T, 0, total)
	for i := lo; i < lo+count; i++ {
		seg, err := c.Chunk(i)
		if err != nil {
			return nil, err
		}
		all = append(all, *seg...)
	}
	return all, nil
}

// setChunk replaces segment i's contents with a freshly owned copy of vals.
func (c *Core[T]) setChunk(i int, vals []T) error {
	seg, err := c.Chunk(i)
	if err != nil {
		return err
	}
	*seg = slices.Clone(vals)
	return nil
}

// splitSingle splits the only segment into two roughly equal halves, keeping
// the first half in place and minting a new tail segment for the second.
func (c *Core[T]) splitSingle() error {
	seg, err := c.Chunk(0)
	if err != nil {
		return err
	}
	half := len(*seg) / 2
	tail := slices.Clone((*seg)[half:])
	*seg = (*seg)[:half]

	name, err := c.Mint()
	if err != nil {
		return err
	}
	c.filenames = append(c.filenames, name)
	if err := c.cache.Put(name, &tail); err != nil {
		return err
	}
	c.fen = nil
	c.lens[0] = half
	c.lens = append(c.lens, len(tail))
	if c.trackMins {
		c.mins = append(c.mins, tail[0])
	}
	c.log.Debugw("Split single segment", "left", half, "right", len(tail))
	return nil
}

// MergePair folds segment lo+1 into segment lo. Balancing uses it for
// undersized boundary windows; the sorted list also calls it directly when
// re-segmenting a bulk extend leaves a short tail.
func (c *Core[T]) MergePair(lo int) error {
	right, err := c.PopChunk(lo + 1)
	if err != nil {
		return err
	}
	left, err := c.Chunk(lo)
	if err != nil {
		return err
	}
	*left = append(*left, right...)
	c.FenwickUpdate(lo, len(right))
	c.length += len(right)
	c.log.Debugw("Merged segment pair", "index", lo, "size", c.lens[lo])
	return nil
}

// SplitChunk splits segment i into two roughly equal halves, inserting the
// new segment at i+1. The sorted list uses it to pre-split an oversized
// segment before a bisected insert.
func (c *Core[T]) SplitChunk(i int) error {
	seg, err := c.Chunk(i)
	if err != nil {
		return err
	}
	half := len(*seg) / 2
	tail := slices.Clone((*seg)[half:])
	*seg = (*seg)[:half]

	name, err := c.Mint()
	if err != nil {
		return err
	}
	pos := i + 1
	c.filenames = slices.Insert(c.filenames, pos, name)
	if err := c.cache.Put(name, &tail); err != nil {
		return err
	}
	if pos == len(c.lens) {
		c.FenwickUpdate(i, half-c.lens[i])
		c.FenwickAppend(len(tail))
	} else {
		c.fen = nil
		c.lens[i] = half
		c.lens = slices.Insert(c.lens, pos, len(tail))
	}
	if c.trackMins {
		c.mins = slices.Insert(c.mins, pos, tail[0])
	}
	return nil
}

// splitPairThree concatenates segments lo and lo+1 and partitions the result
// into three equal-ish segments, minting one new segment after the pair.
func (c *Core[T]) splitPairThree(lo int) error {
	all, err := c.concat(lo, 2)
	if err != nil {
		return err
	}
	n := len(all)
	t1, t2 := n/3, 2*n/3
	if err := c.setChunk(lo, all[:t1]); err != nil {
		return err
	}
	if err := c.setChunk(lo+1, all[t1:t2]); err != nil {
		return err
	}
	tail := slices.Clone(all[t2:])

	name, err := c.Mint()
	if err != nil {
		return err
	}
	pos := lo + 2
	c.filenames = slices.Insert(c.filenames, pos, name)
	if err := c.cache.Put(name, &tail); err != nil {
		return err
	}
	if pos == len(c.lens) {
		c.FenwickUpdate(lo, t1-c.lens[lo])
		c.FenwickUpdate(lo+1, (t2-t1)-c.lens[lo+1])
		c.FenwickAppend(len(tail))
	} else {
		c.fen = nil
		c.lens[lo] = t1
		c.lens[lo+1] = t2 - t1
		c.lens = slices.Insert(c.lens, pos, len(tail))
	}
	if c.trackMins {
		c.mins[lo] = all[0]
		c.mins[lo+1] = all[t1]
		c.mins = slices.Insert(c.mins, pos, all[t2])
	}
	return nil
}

// redistributePair moves floor(diff/2) elements from the larger segment of
// the pair to the smaller one.
func (c *Core[T]) redistributePair(lo int) error {
	diff := c.lens[lo] - c.lens[lo+1]
	if diff > 0 {
		k := diff / 2
		if k == 0 {
			return nil
		}
		left, err := c.Chunk(lo)
		if err != nil {
			return err
		}
		moved := slices.Clone((*left)[len(*left)-k:])
		*left = (*left)[:len(*left)-k]
		right, err := c.Chunk(lo + 1)
		if err != nil {
			return err
		}
		*right = slices.Insert(*right, 0, moved...)
		c.FenwickUpdate(lo, -k)
		c.FenwickUpdate(lo+1, k)
		if c.trackMins {
			c.mins[lo+1] = moved[0]
		}
		return nil
	}

	k := -diff / 2
	if k == 0 {
		return nil
	}
	right, err := c.Chunk(lo + 1)
	if err != nil {
		return err
	}
	moved := slices.Clone((*right)[:k])
	*right = slices.Delete(*right, 0, k)
	newRightMin := (*right)[0]
	left, err := c.Chunk(lo)
	if err != nil {
		return err
	}
	*left = append(*left, moved...)
	c.FenwickUpdate(lo, k)
	c.FenwickUpdate(lo+1, -k)
	if c.trackMins {
		c.mins[lo+1] = newRightMin
	}
	return nil
}

// mergeTrioTwo concatenates an interior window of three segments and
// partitions it into two halves, destroying the window's last segment.
func (c *Core[T]) mergeTrioTwo(lo int) error {
	third, err := c.PopChunk(lo + 2)
	if err != nil {
		return err
	}
	all, err := c.concat(lo, 2)
	if err != nil {
		return err
	}
	all = append(all, third...)
	half := len(all) / 2
	if err := c.setChunk(lo, all[:half]); err != nil {
		return err
	}
	if err := c.setChunk(lo+1, all[half:]); err != nil {
		return err
	}
	c.FenwickUpdate(lo, half-c.lens[lo])
	c.FenwickUpdate(lo+1, (len(all)-half)-c.lens[lo+1])
	c.length += len(third)
	if c.trackMins {
		c.mins[lo] = all[0]
		c.mins[lo+1] = all[half]
	}
	c.log.Debugw("Merged three segments into two", "index", lo)
	return nil
}

// splitTrioFour concatenates an interior window of three segments and
// partitions it into four equal-ish segments, minting one new segment after
// the window.
func (c *Core[T]) splitTrioFour(lo int) error {
	all, err := c.concat(lo, 3)
	if err != nil {
		return err
	}
	n := len(all)
	q1, q2, q3 := n/4, n/2, 3*n/4
	if err := c.setChunk(lo, all[:q1]); err != nil {
		return err
	}
	if err := c.setChunk(lo+1, all[q1:q2]); err != nil {
		return err
	}
	if err := c.setChunk(lo+2, all[q2:q3]); err != nil {
		return err
	}
	tail := slices.Clone(all[q3:])

	name, err := c.Mint()
	if err != nil {
		return err
	}
	pos := lo + 3
	c.filenames = slices.Insert(c.filenames, pos, name)
	if err := c.cache.Put(name, &tail); err != nil {
		return err
	}
	if pos == len(c.lens) {
		c.FenwickUpdate(lo, q1-c.lens[lo])
		c.FenwickUpdate(lo+1, (q2-q1)-c.lens[lo+1])
		c.FenwickUpdate(lo+2, (q3-q2)-c.lens[lo+2])
		c.FenwickAppend(len(tail))
	} else {
		c.fen = nil
		c.lens[lo] = q1
		c.lens[lo+1] = q2 - q1
		c.lens[lo+2] = q3 - q2
		c.lens = slices.Insert(c.lens, pos, len(tail))
	}
	if c.trackMins {
		c.mins[lo] = all[0]
		c.mins[lo+1] = all[q1]
		c.mins[lo+2] = all[q2]
		c.mins = slices.Insert(c.mins, pos, all[q3])
	}
	return nil
}

// redistributeTrio concatenates an interior window of three segments and
// partitions it back into three equal-ish segments.
func (c *Core[T]) redistributeTrio(lo int) error {
	all, err := c.concat(lo, 3)
	if err != nil {
		return err
	}
	n := len(all)
	t1, t2 := n/3, 2*n/3
	if err := c.setChunk(lo, all[:t1]); err != nil {
		return err
	}
	if err := c.setChunk(lo+1, all[t1:t2]); err != nil {
		return err
	}
	if err := c.setChunk(lo+2, all[t2:]); err != nil {
		return err
	}
	c.FenwickUpdate(lo, t1-c.lens[lo])
	c.FenwickUpdate(lo+1, (t2-t1)-c.lens[lo+1])
	c.FenwickUpdate(lo+2, (n-t2)-c.lens[lo+2])
	if c.trackMins {
		c.mins[lo] = all[0]
		c.mins[lo+1] = all[t1]
		c.mins[lo+2] = all[t2]
	}
	return nil
}
