package sortedlist

import (
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/bigcoll/pkg/errors"
)

func memContents(l *MemList[int]) []int {
	out := make([]int, 0, l.Len())
	for v := range l.All() {
		out = append(out, v)
	}
	return out
}

func TestMemListBasics(t *testing.T) {
	l := NewMemList[int]()
	for _, v := range []int{5, 3, 9, 3, 1, 7, 3} {
		l.Add(v)
	}
	require.Equal(t, 7, l.Len())
	require.Equal(t, []int{1, 3, 3, 3, 5, 7, 9}, memContents(l))

	require.True(t, l.Discard(3))
	require.Equal(t, []int{1, 3, 3, 5, 7, 9}, memContents(l))
	require.False(t, l.Discard(4))

	r, err := l.Index(3, IndexExact)
	require.NoError(t, err)
	require.Equal(t, 1, r)
	r, err = l.Index(3, IndexRight)
	require.NoError(t, err)
	require.Equal(t, 3, r)
	r, err = l.Index(4, IndexLeft)
	require.NoError(t, err)
	require.Equal(t, 3, r)
}

func TestMemListConstructorSorts(t *testing.T) {
	l := NewMemList(4, 2, 9, 2, 0)
	require.Equal(t, []int{0, 2, 2, 4, 9}, memContents(l))
	require.True(t, l.Contains(9))
	require.False(t, l.Contains(3))
}

func TestMemListPositional(t *testing.T) {
	l := NewMemList[int]()
	const n = 5000 // several segments at the in-memory chunk size
	for i := n - 1; i >= 0; i-- {
		l.Add(i)
	}
	for _, r := range []int{0, 1, n / 2, n - 1} {
		v, err := l.Get(r)
		require.NoError(t, err)
		require.Equal(t, r, v)
	}
	v, err := l.Get(-1)
	require.NoError(t, err)
	require.Equal(t, n-1, v)

	_, err = l.Get(n)
	require.True(t, errors.IsIndexOutOfRange(err))

	require.NoError(t, l.Delete(0))
	require.Equal(t, n-1, l.Len())
	v, err = l.Get(0)
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestMemListRandomizedAgainstReference(t *testing.T) {
	l := NewMemList[int]()
	rng := rand.New(rand.NewSource(21))
	var ref []int

	for step := 0; step < 20000; step++ {
		v := rng.Intn(3000)
		if rng.Intn(3) != 0 {
			l.Add(v)
			at := sort.SearchInts(ref, v+1)
			ref = slices.Insert(ref, at, v)
		} else {
			removed := l.Discard(v)
			at := sort.SearchInts(ref, v)
			if at < len(ref) && ref[at] == v {
				require.True(t, removed)
				ref = slices.Delete(ref, at, at+1)
			} else {
				require.False(t, removed)
			}
		}
	}
	require.Equal(t, len(ref), l.Len())
	require.Equal(t, ref, memContents(l))
}

func TestMemListExtend(t *testing.T) {
	l := NewMemList[int]()
	big := make([]int, 4000)
	for i := range big {
		big[i] = 3999 - i
	}
	l.Extend(big)
	require.Equal(t, 4000, l.Len())
	require.True(t, slices.IsSorted(memContents(l)))

	l.Extend([]int{-1, 9999})
	require.Equal(t, 4002, l.Len())
	got := memContents(l)
	require.Equal(t, -1, got[0])
	require.Equal(t, 9999, got[4001])
}

func TestMemListClear(t *testing.T) {
	l := NewMemList(1, 2, 3)
	l.Clear()
	require.Equal(t, 0, l.Len())
	require.False(t, l.Contains(1))
	l.Add(5)
	require.Equal(t, []int{5}, memContents(l))
}
