// Package segment manages the on-disk layout of a container: the segment
// blobs, the fixed-name metadata files, and the persisted id counter that
// mints fresh segment filenames.
//
// A container root is a directory holding `counter`, `filenames`, `lens`,
// optionally `mins` and `paths`, and one `<id>.seg` file per segment. A store
// may span several roots (striped big lists); segment files are then minted
// across roots under a growth schedule while the metadata lives in the
// canonical first root.
package segment

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/iamNilotpal/bigcoll/internal/codec"
	"github.com/iamNilotpal/bigcoll/pkg/errors"
	"github.com/iamNilotpal/bigcoll/pkg/filesys"
)

// Fixed metadata file names within a container root.
const (
	CounterFile   = "counter"
	FilenamesFile = "filenames"
	LensFile      = "lens"
	MinsFile      = "mins"
	PathsFile     = "paths"

	segmentExt = ".seg"
)

// Config carries the parameters needed to open a Store.
type Config struct {
	Fs    afero.Fs
	Roots []string // one or more container roots; order matters on first creation
	Log   *zap.SugaredLogger
}

// Store allocates segment ids, resolves segment filenames to roots, and
// reads and writes the segment blobs and metadata files.
type Store struct {
	fs    afero.Fs
	roots []string // canonical order: as persisted in paths, or as given
	log   *zap.SugaredLogger

	next uint64 // next id the allocator will mint

	// Striping state: segments are minted into roots[rootIdx] until
	// rootCount² exceeds the total segment count, then the next root
	// becomes current.
	rootIdx   int
	rootCount int

	locations map[string]string // segment filename -> root directory
}

// Open prepares a store over the given roots, creating directories and
// bootstrapping the counter and (for multi-root stores) the paths file.
func Open(cfg Config) (*Store, error) {
	if len(cfg.Roots) == 0 {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Store requires at least one root",
		).WithField("Roots").WithRule("required")
	}

	s := &Store{
		fs:        cfg.Fs,
		roots:     append([]string(nil), cfg.Roots...),
		log:       cfg.Log,
		locations: make(map[string]string),
	}

	for _, root := range s.roots {
		if err := filesys.CreateDir(s.fs, root, 0o755); err != nil {
			return nil, errors.ClassifyFileError(err, "create_root", "", root)
		}
	}

	if err := s.resolveRootSet(); err != nil {
		return nil, err
	}

	next, err := ReadMeta(s, CounterFile, uint64(0))
	if err != nil {
		return nil, err
	}
	s.next = next

	s.log.Debugw("Segment store opened", "roots", s.roots, "nextID", s.next)
	return s, nil
}

// resolveRootSet reconciles the provided roots with the persisted paths
// files. The persisted order is canonical so that reopening with a permuted
// root set finds the metadata in the same place.
func (s *Store) resolveRootSet() error {
	var persisted []string
	for _, root := range s.roots {
		p := filepath.Join(root, PathsFile)
		ok, err := filesys.Exists(s.fs, p)
		if err != nil {
			return errors.ClassifyFileError(err, "stat_paths", PathsFile, root)
		}
		if !ok {
			continue
		}
		data, err := filesys.ReadFile(s.fs, p)
		if err != nil {
			return errors.ClassifyFileError(err, "read_paths", PathsFile, root)
		}
		var roots []string
		if err := codec.Unmarshal(data, &roots); err != nil {
			return err
		}
		if persisted != nil && !sameSet(persisted, roots) {
			return errors.NewStorageError(
				nil, errors.ErrorCodeInconsistentRootSet, "Roots disagree on the striped root set",
			).WithRoot(root)
		}
		persisted = roots
	}

	switch {
	case persisted != nil:
		if !sameSet(persisted, s.roots) {
			return errors.NewStorageError(
				nil, errors.ErrorCodeInconsistentRootSet, "Open root set does not match the persisted one",
			).WithDetail("provided", s.roots).WithDetail("persisted", persisted)
		}
		s.roots = persisted
	case len(s.roots) > 1:
		data, err := codec.Marshal(s.roots)
		if err != nil {
			return err
		}
		for _, root := range s.roots {
			p := filepath.Join(root, PathsFile)
			if err := filesys.WriteFile(s.fs, p, 0o644, data); err != nil {
				return errors.ClassifyFileError(err, "write_paths", PathsFile, root)
			}
		}
	}
	return nil
}

// NextID returns the next id the allocator will mint.
func (s *Store) NextID() uint64 {
	return s.next
}

// Roots returns the canonical root order.
func (s *Store) Roots() []string {
	return s.roots
}

// Mint allocates a never-reused segment id, persists the advanced counter
// before the id becomes externally visible, writes the given empty payload
// as the segment's initial blob, and returns the new segment's filename.
// totalSegments drives the multi-root growth schedule.
func (s *Store) Mint(totalSegments int, empty []byte) (string, error) {
	id := s.next
	if err := WriteMeta(s, CounterFile, id+1); err != nil {
		return "", err
	}
	s.next = id + 1

	root := s.pickRoot(totalSegments)
	name := fmt.Sprintf("%d%s", id, segmentExt)
	if err := filesys.WriteFile(s.fs, filepath.Join(root, name), 0o644, empty); err != nil {
		return "", errors.ClassifyFileError(err, "mint_segment", name, root)
	}
	s.locations[name] = root
	s.log.Debugw("Minted segment", "file", name, "root", root)
	return name, nil
}

// pickRoot advances the striping schedule and returns the root the next
// segment file should live in. Single-root stores always return the root.
func (s *Store) pickRoot(totalSegments int) string {
	if len(s.roots) == 1 {
		return s.roots[0]
	}
	if s.rootCount*s.rootCount > totalSegments {
		s.rootIdx = (s.rootIdx + 1) % len(s.roots)
		s.rootCount = 0
	}
	s.rootCount++
	return s.roots[s.rootIdx]
}

// resolve finds which root holds the named segment file.
func (s *Store) resolve(name string) (string, error) {
	if root, ok := s.locations[name]; ok {
		return root, nil
	}
	for _, root := range s.roots {
		ok, err := filesys.Exists(s.fs, filepath.Join(root, name))
		if err != nil {
			return "", errors.ClassifyFileError(err, "stat_segment", name, root)
		}
		if ok {
			s.locations[name] = root
			return root, nil
		}
	}
	return "", errors.NewStorageError(
		nil, errors.ErrorCodeCorruptDatabase, "Segment file missing from every root",
	).WithFileName(name)
}

// ReadSegment returns the raw blob of the named segment.
func (s *Store) ReadSegment(name string) ([]byte, error) {
	root, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := filesys.ReadFile(s.fs, filepath.Join(root, name))
	if err != nil {
		return nil, errors.ClassifyFileError(err, "read_segment", name, root)
	}
	return data, nil
}

// WriteSegment replaces the named segment's blob whole.
func (s *Store) WriteSegment(name string, data []byte) error {
	root, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := filesys.WriteFile(s.fs, filepath.Join(root, name), 0o644, data); err != nil {
		return errors.ClassifyFileError(err, "write_segment", name, root)
	}
	return nil
}

// DeleteSegment removes the named segment's file.
func (s *Store) DeleteSegment(name string) error {
	root, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := filesys.DeleteFile(s.fs, filepath.Join(root, name)); err != nil {
		return errors.ClassifyFileError(err, "delete_segment", name, root)
	}
	delete(s.locations, name)
	return nil
}

// ResetCounter rewinds the id allocator to zero. Only used by clear, after
// every segment file has been deleted.
func (s *Store) ResetCounter() error {
	if err := WriteMeta(s, CounterFile, uint64(0)); err != nil {
		return err
	}
	s.next = 0
	s.rootIdx = 0
	s.rootCount = 0
	return nil
}

// ReadMeta returns the persisted value of the named metadata file. If the
// file is absent it is created holding def, and def is returned. This is the
// only way metadata is bootstrapped.
func ReadMeta[T any](s *Store, name string, def T) (T, error) {
	p := filepath.Join(s.roots[0], name)
	ok, err := filesys.Exists(s.fs, p)
	if err != nil {
		return def, errors.ClassifyFileError(err, "stat_meta", name, s.roots[0])
	}
	if !ok {
		if err := WriteMeta(s, name, def); err != nil {
			return def, err
		}
		return def, nil
	}
	data, err := filesys.ReadFile(s.fs, p)
	if err != nil {
		return def, errors.ClassifyFileError(err, "read_meta", name, s.roots[0])
	}
	out := def
	if err := codec.Unmarshal(data, &out); err != nil {
		return def, err
	}
	return out, nil
}

// WriteMeta persists a metadata value under its fixed name in the canonical
// root.
func WriteMeta[T any](s *Store, name string, v T) error {
	data, err := codec.Marshal(v)
	if err != nil {
		return err
	}
	p := filepath.Join(s.roots[0], name)
	if err := filesys.WriteFile(s.fs, p, 0o644, data); err != nil {
		return errors.ClassifyFileError(err, "write_meta", name, s.roots[0])
	}
	return nil
}

// sameSet reports whether two root lists name the same set of directories.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
