package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// backing simulates segment files with an in-memory map and counts I/O.
type backing struct {
	files  map[string][]int
	loads  int
	stores int
}

func newBacking() *backing {
	return &backing{files: map[string][]int{}}
}

func (b *backing) load(name string) (*[]int, error) {
	b.loads++
	seg := append([]int(nil), b.files[name]...)
	return &seg, nil
}

func (b *backing) store(name string, seg *[]int) error {
	b.stores++
	b.files[name] = append([]int(nil), (*seg)...)
	return nil
}

func newTestCache(capacity int, b *backing) *Cache[*[]int] {
	return New(capacity, b.load, b.store, zap.NewNop().Sugar())
}

func TestTouchLoadsOnceWhileResident(t *testing.T) {
	b := newBacking()
	b.files["0.seg"] = []int{1, 2, 3}
	c := newTestCache(4, b)

	seg, err := c.Touch("0.seg")
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, *seg)

	_, err = c.Touch("0.seg")
	require.NoError(t, err)
	require.Equal(t, 1, b.loads)
}

func TestEvictionWritesBackLRU(t *testing.T) {
	b := newBacking()
	for _, name := range []string{"0.seg", "1.seg", "2.seg"} {
		b.files[name] = []int{}
	}
	c := newTestCache(2, b)

	seg0, err := c.Touch("0.seg")
	require.NoError(t, err)
	*seg0 = append(*seg0, 42)

	_, err = c.Touch("1.seg")
	require.NoError(t, err)

	// Third touch must evict 0.seg, persisting the mutation.
	_, err = c.Touch("2.seg")
	require.NoError(t, err)

	require.False(t, c.Contains("0.seg"))
	require.Equal(t, []int{42}, b.files["0.seg"])
}

func TestTouchRefreshesRecency(t *testing.T) {
	b := newBacking()
	for _, name := range []string{"0.seg", "1.seg", "2.seg"} {
		b.files[name] = []int{}
	}
	c := newTestCache(2, b)

	_, err := c.Touch("0.seg")
	require.NoError(t, err)
	_, err = c.Touch("1.seg")
	require.NoError(t, err)
	_, err = c.Touch("0.seg") // 1.seg becomes LRU
	require.NoError(t, err)
	_, err = c.Touch("2.seg")
	require.NoError(t, err)

	require.True(t, c.Contains("0.seg"))
	require.False(t, c.Contains("1.seg"))
}

func TestNoDataLossAcrossEvictions(t *testing.T) {
	b := newBacking()
	names := []string{"0.seg", "1.seg", "2.seg", "3.seg", "4.seg", "5.seg"}
	for _, name := range names {
		b.files[name] = []int{}
	}
	c := newTestCache(4, b)

	// Round-robin mutation far past capacity.
	for round := 0; round < 5; round++ {
		for _, name := range names {
			seg, err := c.Touch(name)
			require.NoError(t, err)
			*seg = append(*seg, round)
		}
	}
	require.NoError(t, c.FlushAll())

	for _, name := range names {
		seg, err := c.Touch(name)
		require.NoError(t, err)
		require.Equal(t, []int{0, 1, 2, 3, 4}, *seg, name)
	}
}

func TestTakeSkipsWriteBack(t *testing.T) {
	b := newBacking()
	b.files["0.seg"] = []int{7}
	c := newTestCache(4, b)

	seg, err := c.Touch("0.seg")
	require.NoError(t, err)
	*seg = append(*seg, 8)

	taken, err := c.Take("0.seg")
	require.NoError(t, err)
	require.Equal(t, []int{7, 8}, *taken)
	require.False(t, c.Contains("0.seg"))
	// Nothing was written back.
	require.Equal(t, []int{7}, b.files["0.seg"])
}

func TestTakeLoadsWhenNotResident(t *testing.T) {
	b := newBacking()
	b.files["0.seg"] = []int{5}
	c := newTestCache(4, b)

	taken, err := c.Take("0.seg")
	require.NoError(t, err)
	require.Equal(t, []int{5}, *taken)
}

func TestPutAtCapacityEvicts(t *testing.T) {
	b := newBacking()
	for _, name := range []string{"0.seg", "1.seg"} {
		b.files[name] = []int{}
	}
	c := newTestCache(2, b)

	_, err := c.Touch("0.seg")
	require.NoError(t, err)
	_, err = c.Touch("1.seg")
	require.NoError(t, err)

	fresh := []int{9}
	require.NoError(t, c.Put("2.seg", &fresh))
	require.Equal(t, 2, c.Len())
	require.False(t, c.Contains("0.seg"))
}

func TestFlushAllKeepsResidency(t *testing.T) {
	b := newBacking()
	b.files["0.seg"] = []int{}
	c := newTestCache(4, b)

	seg, err := c.Touch("0.seg")
	require.NoError(t, err)
	*seg = append(*seg, 1)

	require.NoError(t, c.FlushAll())
	require.True(t, c.Contains("0.seg"))
	require.Equal(t, []int{1}, b.files["0.seg"])
}
