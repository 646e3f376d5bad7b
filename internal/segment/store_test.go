package segment

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamNilotpal/bigcoll/pkg/errors"
)

func openTestStore(t *testing.T, fs afero.Fs, roots ...string) *Store {
	t.Helper()
	s, err := Open(Config{Fs: fs, Roots: roots, Log: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return s
}

func TestMintAllocatesMonotoneIDs(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestStore(t, fs, "/db")

	a, err := s.Mint(0, []byte{0x90})
	require.NoError(t, err)
	b, err := s.Mint(1, []byte{0x90})
	require.NoError(t, err)
	require.Equal(t, "0.seg", a)
	require.Equal(t, "1.seg", b)
	require.EqualValues(t, 2, s.NextID())
}

func TestCounterSurvivesReopen(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestStore(t, fs, "/db")
	_, err := s.Mint(0, []byte{0x90})
	require.NoError(t, err)
	_, err = s.Mint(1, []byte{0x90})
	require.NoError(t, err)

	// Ids are never reused, even across reopen.
	s2 := openTestStore(t, fs, "/db")
	name, err := s2.Mint(2, []byte{0x90})
	require.NoError(t, err)
	require.Equal(t, "2.seg", name)
}

func TestReadMetaBootstrapsDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestStore(t, fs, "/db")

	lens, err := ReadMeta(s, LensFile, []int{})
	require.NoError(t, err)
	require.Empty(t, lens)

	// The default must have been written so a second read sees a file.
	ok, err := afero.Exists(fs, filepath.Join("/db", LensFile))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMetaRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestStore(t, fs, "/db")

	require.NoError(t, WriteMeta(s, LensFile, []int{3, 1, 4}))
	lens, err := ReadMeta(s, LensFile, []int{})
	require.NoError(t, err)
	require.Equal(t, []int{3, 1, 4}, lens)
}

func TestSegmentRoundTripAndDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestStore(t, fs, "/db")

	name, err := s.Mint(0, []byte{0x90})
	require.NoError(t, err)
	require.NoError(t, s.WriteSegment(name, []byte{1, 2, 3}))

	data, err := s.ReadSegment(name)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)

	require.NoError(t, s.DeleteSegment(name))
	_, err = s.ReadSegment(name)
	require.Error(t, err)
	require.True(t, errors.IsCorruptDatabase(err))
}

func TestStripedMintSpreadsAcrossRoots(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestStore(t, fs, "/a", "/b")

	total := 0
	for i := 0; i < 40; i++ {
		_, err := s.Mint(total, []byte{0x90})
		require.NoError(t, err)
		total++
	}

	countIn := func(root string) int {
		infos, err := afero.ReadDir(fs, root)
		require.NoError(t, err)
		n := 0
		for _, info := range infos {
			if filepath.Ext(info.Name()) == ".seg" {
				n++
			}
		}
		return n
	}
	require.Positive(t, countIn("/a"))
	require.Positive(t, countIn("/b"))
	require.Equal(t, 40, countIn("/a")+countIn("/b"))
}

func TestStripedReopenWithPermutedRoots(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestStore(t, fs, "/a", "/b")
	name, err := s.Mint(0, []byte{0x90})
	require.NoError(t, err)

	// Same set, different order: the persisted order stays canonical.
	s2 := openTestStore(t, fs, "/b", "/a")
	require.Equal(t, []string{"/a", "/b"}, s2.Roots())
	_, err = s2.ReadSegment(name)
	require.NoError(t, err)
}

func TestInconsistentRootSetRejected(t *testing.T) {
	fs := afero.NewMemMapFs()
	openTestStore(t, fs, "/a", "/b")

	_, err := Open(Config{Fs: fs, Roots: []string{"/a", "/c"}, Log: zap.NewNop().Sugar()})
	require.Error(t, err)
	require.True(t, errors.IsInconsistentRootSet(err))
}

func TestResetCounter(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := openTestStore(t, fs, "/db")
	_, err := s.Mint(0, []byte{0x90})
	require.NoError(t, err)
	require.NoError(t, s.DeleteSegment("0.seg"))

	require.NoError(t, s.ResetCounter())
	name, err := s.Mint(0, []byte{0x90})
	require.NoError(t, err)
	require.Equal(t, "0.seg", name)
}
