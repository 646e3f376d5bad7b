package sortedlist

import (
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/bigcoll/pkg/errors"
	"github.com/iamNilotpal/bigcoll/pkg/options"
)

const testChunk = 8

func openTestSorted(t *testing.T, fs afero.Fs, root string) *List[int] {
	t.Helper()
	l, err := Open[int](root,
		options.WithFilesystem(fs),
		options.WithChunkSize(testChunk),
	)
	require.NoError(t, err)
	return l
}

func collectSorted(t *testing.T, l *List[int]) []int {
	t.Helper()
	out := make([]int, 0, l.Len())
	for v, err := range l.All() {
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestAddDiscardIndexScenario(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := openTestSorted(t, fs, "/db")

	for _, v := range []int{5, 3, 9, 3, 1, 7, 3} {
		require.NoError(t, l.Add(v))
	}
	require.Equal(t, []int{1, 3, 3, 3, 5, 7, 9}, collectSorted(t, l))

	removed, err := l.Discard(3)
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, []int{1, 3, 3, 5, 7, 9}, collectSorted(t, l))

	r, err := l.Index(3, IndexExact)
	require.NoError(t, err)
	require.Equal(t, 1, r)

	r, err = l.Index(3, IndexRight)
	require.NoError(t, err)
	require.Equal(t, 3, r)

	r, err = l.Index(4, IndexLeft)
	require.NoError(t, err)
	require.Equal(t, 3, r)

	_, err = l.Index(4, IndexExact)
	require.Error(t, err)
	require.True(t, errors.IsNotFound(err))
}

func TestDiscardAbsentIsSilent(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := openTestSorted(t, fs, "/db")
	require.NoError(t, l.Add(5))

	removed, err := l.Discard(4)
	require.NoError(t, err)
	require.False(t, removed)
	removed, err = l.Discard(6)
	require.NoError(t, err)
	require.False(t, removed)
	require.Equal(t, 1, l.Len())
}

func TestOrderingUnderRandomOps(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := openTestSorted(t, fs, "/db")
	rng := rand.New(rand.NewSource(3))
	var ref []int

	for step := 0; step < 3000; step++ {
		v := rng.Intn(200)
		if rng.Intn(3) != 0 {
			require.NoError(t, l.Add(v))
			at := sort.SearchInts(ref, v+1)
			ref = slices.Insert(ref, at, v)
		} else {
			removed, err := l.Discard(v)
			require.NoError(t, err)
			at := sort.SearchInts(ref, v)
			if at < len(ref) && ref[at] == v {
				require.True(t, removed)
				ref = slices.Delete(ref, at, at+1)
			} else {
				require.False(t, removed)
			}
		}
		require.Equal(t, len(ref), l.Len())
	}

	require.Equal(t, ref, collectSorted(t, l))
	lens := l.SegmentLens()
	if len(lens) >= 2 {
		for _, n := range lens {
			require.GreaterOrEqual(t, n, testChunk/2)
			require.LessOrEqual(t, n, 2*testChunk)
		}
	}
}

func TestPositionalAccess(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := openTestSorted(t, fs, "/db")
	const n = 500
	for i := n - 1; i >= 0; i-- {
		require.NoError(t, l.Add(i))
	}

	for _, r := range []int{0, 1, n / 2, n - 2, n - 1} {
		v, err := l.Get(r)
		require.NoError(t, err)
		require.Equal(t, r, v)
	}
	v, err := l.Get(-1)
	require.NoError(t, err)
	require.Equal(t, n-1, v)

	_, err = l.Get(n)
	require.True(t, errors.IsIndexOutOfRange(err))
}

func TestDeleteByRank(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := openTestSorted(t, fs, "/db")
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Add(i))
	}

	require.NoError(t, l.Delete(0))
	require.NoError(t, l.Delete(-1))
	require.NoError(t, l.Delete(40))
	require.Equal(t, 97, l.Len())

	got := collectSorted(t, l)
	require.NotContains(t, got, 0)
	require.NotContains(t, got, 99)
	require.NotContains(t, got, 41)
	require.True(t, slices.IsSorted(got))
}

func TestSetUnsupported(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := openTestSorted(t, fs, "/db")
	require.NoError(t, l.Add(1))

	err := l.Set(0, 2)
	require.Error(t, err)
	require.True(t, errors.IsUnsupported(err))
}

func TestContains(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := openTestSorted(t, fs, "/db")
	for i := 0; i < 100; i += 2 {
		require.NoError(t, l.Add(i))
	}
	for i := 0; i < 100; i++ {
		ok, err := l.Contains(i)
		require.NoError(t, err)
		require.Equal(t, i%2 == 0, ok, "value %d", i)
	}
}

func TestExtendSmallAndLarge(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := openTestSorted(t, fs, "/db")

	// Large relative addition: merge and re-segment.
	big := make([]int, 400)
	for i := range big {
		big[i] = 399 - i
	}
	require.NoError(t, l.Extend(big))
	require.Equal(t, 400, l.Len())
	got := collectSorted(t, l)
	require.True(t, slices.IsSorted(got))

	// Small addition degrades to repeated adds.
	require.NoError(t, l.Extend([]int{-5, 1000, 200}))
	require.Equal(t, 403, l.Len())
	got = collectSorted(t, l)
	require.True(t, slices.IsSorted(got))
	require.Equal(t, -5, got[0])
	require.Equal(t, 1000, got[402])
}

func TestReopenPreservesOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := openTestSorted(t, fs, "/db")
	rng := rand.New(rand.NewSource(9))
	var ref []int
	for i := 0; i < 1000; i++ {
		v := rng.Intn(10000)
		require.NoError(t, l.Add(v))
		ref = append(ref, v)
	}
	require.NoError(t, l.Close())
	slices.Sort(ref)

	l2 := openTestSorted(t, fs, "/db")
	require.Equal(t, ref, collectSorted(t, l2))

	// Dispatch keeps working against the reloaded mins.
	ok, err := l2.Contains(ref[500])
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, l2.Close())
}

func TestIndexModesOnBoundaries(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := openTestSorted(t, fs, "/db")
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Add(i / 2)) // 0,0,1,1,...,49,49
	}

	r, err := l.Index(0, IndexLeft)
	require.NoError(t, err)
	require.Equal(t, 0, r)

	r, err = l.Index(49, IndexRight)
	require.NoError(t, err)
	require.Equal(t, 100, r)

	r, err = l.Index(25, IndexLeft)
	require.NoError(t, err)
	require.Equal(t, 50, r)
	r, err = l.Index(25, IndexRight)
	require.NoError(t, err)
	require.Equal(t, 52, r)
	r, err = l.Index(25, IndexExact)
	require.NoError(t, err)
	require.Equal(t, 50, r)

	_, err = l.Index(-1, IndexExact)
	require.True(t, errors.IsNotFound(err))
	r, err = l.Index(-1, IndexLeft)
	require.NoError(t, err)
	require.Equal(t, 0, r)
}
