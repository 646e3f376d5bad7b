package bigdict

import (
	"maps"
	"slices"

	"github.com/iamNilotpal/bigcoll/internal/balance"
	"github.com/iamNilotpal/bigcoll/internal/codec"
	"github.com/iamNilotpal/bigcoll/internal/hashkey"
)

// balance restores the segment-size invariant around segment i. The decision
// comes from the shared table; execution rebuilds the window's segments from
// the sorted (hash, key) order so no pair ever crosses a split boundary out
// of order.
func (m *Map[V]) balance(i int) error {
	d := balance.Plan(m.lens, i, m.chunk)
	switch d.Action {
	case balance.ActionNone:
		return nil
	case balance.ActionSplitSingle:
		return m.splitSingle()
	case balance.ActionMergePair:
		return m.mergePair(d.Lo)
	case balance.ActionSplitPairThree:
		return m.repartition(d.Lo, 2, 3)
	case balance.ActionRedistributePair:
		return m.redistributePair(d.Lo)
	case balance.ActionMergeTrioTwo:
		return m.mergeTrioTwo(d.Lo)
	case balance.ActionSplitTrioFour:
		return m.repartition(d.Lo, 3, 4)
	default:
		return m.repartition(d.Lo, 3, 3)
	}
}

// sortedPairs returns the segment's (hash, key) pairs in dispatch order.
func sortedPairs[V any](seg map[string]V) []hashkey.Pair {
	pairs := make([]hashkey.Pair, 0, len(seg))
	for k := range seg {
		pairs = append(pairs, hashkey.Of(k))
	}
	slices.SortFunc(pairs, hashkey.Compare)
	return pairs
}

// fillRange rebuilds dst to hold exactly the entries of pairs[from:to],
// taking values from src.
func fillRange[V any](dst, src map[string]V, pairs []hashkey.Pair, from, to int) {
	clear(dst)
	for _, p := range pairs[from:to] {
		dst[p.Key] = src[p.Key]
	}
}

// mergeWindow copies the entries of segments lo..lo+count-1 into one map.
// Contents are copied immediately after each cache touch so later evictions
// in the same window cannot lose entries.
func (m *Map[V]) mergeWindow(lo, count int) (map[string]V, error) {
	total := 0
	for i := lo; i < lo+count; i++ {
		total += m.lens[i]
	}
	merged := make(map[string]V, total)
	for i := lo; i < lo+count; i++ {
		seg, err := m.chunkAt(i)
		if err != nil {
			return nil, err
		}
		maps.Copy(merged, seg)
	}
	return merged, nil
}

// splitSingle splits the only segment in half by dispatch order, keeping the
// smaller pairs in place and minting a new tail segment for the larger.
func (m *Map[V]) splitSingle() error {
	seg, err := m.chunkAt(0)
	if err != nil {
		return err
	}
	pairs := sortedPairs(seg)
	half := len(pairs) / 2
	tail := make(map[string]V, len(pairs)-half)
	for _, p := range pairs[half:] {
		tail[p.Key] = seg[p.Key]
		delete(seg, p.Key)
	}

	empty, err := codec.Marshal(map[string]V{})
	if err != nil {
		return err
	}
	name, err := m.store.Mint(len(m.filenames), empty)
	if err != nil {
		return err
	}
	m.filenames = append(m.filenames, name)
	if err := m.cache.Put(name, tail); err != nil {
		return err
	}
	m.lens[0] = half
	m.lens = append(m.lens, len(pairs)-half)
	m.mins[0] = pairs[0]
	m.mins = append(m.mins, pairs[half])
	m.log.Debugw("Split single segment", "left", half, "right", len(pairs)-half)
	return nil
}

// mergePair folds segment lo+1 into segment lo.
func (m *Map[V]) mergePair(lo int) error {
	right, err := m.popChunk(lo + 1)
	if err != nil {
		return err
	}
	left, err := m.chunkAt(lo)
	if err != nil {
		return err
	}
	maps.Copy(left, right)
	m.lens[lo] += len(right)
	m.length += len(right)
	return nil
}

// mergeTrioTwo concatenates an interior window of three segments and
// rebuilds it as two halves, destroying the window's last segment.
func (m *Map[V]) mergeTrioTwo(lo int) error {
	third, err := m.popChunk(lo + 2)
	if err != nil {
		return err
	}
	merged, err := m.mergeWindow(lo, 2)
	if err != nil {
		return err
	}
	maps.Copy(merged, third)
	m.length += len(third)

	pairs := sortedPairs(merged)
	half := len(pairs) / 2

	left, err := m.chunkAt(lo)
	if err != nil {
		return err
	}
	fillRange(left, merged, pairs, 0, half)
	right, err := m.chunkAt(lo + 1)
	if err != nil {
		return err
	}
	fillRange(right, merged, pairs, half, len(pairs))

	m.lens[lo] = half
	m.lens[lo+1] = len(pairs) - half
	m.mins[lo] = pairs[0]
	m.mins[lo+1] = pairs[half]
	return nil
}

// redistributePair rebuilds a boundary pair so the larger segment hands
// floor(diff/2) pairs to the smaller one.
func (m *Map[V]) redistributePair(lo int) error {
	// Truncating division keeps the magnitude at floor(|diff|/2) for either
	// sign, so the shift always runs from the larger segment to the smaller.
	shift := (m.lens[lo] - m.lens[lo+1]) / 2
	if shift == 0 {
		return nil
	}
	merged, err := m.mergeWindow(lo, 2)
	if err != nil {
		return err
	}
	pairs := sortedPairs(merged)
	newLeft := m.lens[lo] - shift

	left, err := m.chunkAt(lo)
	if err != nil {
		return err
	}
	fillRange(left, merged, pairs, 0, newLeft)
	right, err := m.chunkAt(lo + 1)
	if err != nil {
		return err
	}
	fillRange(right, merged, pairs, newLeft, len(pairs))

	m.lens[lo] = newLeft
	m.lens[lo+1] = len(pairs) - newLeft
	m.mins[lo] = pairs[0]
	m.mins[lo+1] = pairs[newLeft]
	return nil
}

// repartition concatenates a window of count segments and rebuilds it as
// parts equal-ish segments, minting one new segment when parts > count.
func (m *Map[V]) repartition(lo, count, parts int) error {
	merged, err := m.mergeWindow(lo, count)
	if err != nil {
		return err
	}
	pairs := sortedPairs(merged)
	n := len(pairs)

	bounds := make([]int, parts+1)
	for p := 0; p <= parts; p++ {
		bounds[p] = p * n / parts
	}

	for p := 0; p < count; p++ {
		seg, err := m.chunkAt(lo + p)
		if err != nil {
			return err
		}
		fillRange(seg, merged, pairs, bounds[p], bounds[p+1])
		m.lens[lo+p] = bounds[p+1] - bounds[p]
		m.mins[lo+p] = pairs[bounds[p]]
	}

	if parts > count {
		tail := make(map[string]V, bounds[parts]-bounds[parts-1])
		for _, p := range pairs[bounds[parts-1]:] {
			tail[p.Key] = merged[p.Key]
		}
		empty, err := codec.Marshal(map[string]V{})
		if err != nil {
			return err
		}
		name, err := m.store.Mint(len(m.filenames), empty)
		if err != nil {
			return err
		}
		pos := lo + count
		m.filenames = slices.Insert(m.filenames, pos, name)
		if err := m.cache.Put(name, tail); err != nil {
			return err
		}
		m.lens = slices.Insert(m.lens, pos, bounds[parts]-bounds[parts-1])
		m.mins = slices.Insert(m.mins, pos, pairs[bounds[parts-1]])
	}
	return nil
}
