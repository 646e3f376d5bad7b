// Package options provides data structures and functions for configuring
// the bigcoll containers. It defines the parameters that control segment
// sizing and cache residency, such as chunk size and LRU capacity, plus
// logger and filesystem injection. Roots are passed to each container's Open
// (or biglist.OpenStriped) and checked by ValidateRoot.
package options

import (
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/iamNilotpal/bigcoll/pkg/errors"
)

// Options defines the open-time configuration for a container.
// It provides control over segment sizing, cache behavior and placement.
type Options struct {
	// ChunkSize is the target segment size. Balancing keeps every segment
	// within [ChunkSize/2, 2*ChunkSize] once a container has two or more
	// segments. Zero means the container's default. The value is not
	// persisted with the container: every open, including a reopen of an
	// existing root, uses the size it is given (or the default).
	//
	//  - Minimum: 4
	ChunkSize int `json:"chunkSize"`

	// CacheCapacity is the number of segments kept resident in the LRU
	// cache. Zero means the default.
	//
	//  - Default: 4
	//  - Minimum: 2
	CacheCapacity int `json:"cacheCapacity"`

	// Logger receives structured operational logging. A nop logger is
	// installed when nil.
	Logger *zap.SugaredLogger `json:"-"`

	// Fs is the filesystem the container persists to. Defaults to the
	// operating system filesystem; tests inject an in-memory one.
	Fs afero.Fs `json:"-"`
}

// OptionFunc is a function type that modifies a container's configuration.
type OptionFunc func(*Options)

// WithChunkSize overrides the container's default target segment size for
// this open. The size is not stored on disk, so an existing root reopened
// with a different size is balanced with the new one.
func WithChunkSize(size int) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.ChunkSize = size
		}
	}
}

// WithCacheCapacity overrides the default LRU segment cache capacity.
func WithCacheCapacity(capacity int) OptionFunc {
	return func(o *Options) {
		if capacity > 0 {
			o.CacheCapacity = capacity
		}
	}
}

// WithLogger sets the structured logger used for operational visibility.
func WithLogger(log *zap.SugaredLogger) OptionFunc {
	return func(o *Options) {
		if log != nil {
			o.Logger = log
		}
	}
}

// WithFilesystem sets the filesystem the container persists to.
func WithFilesystem(fs afero.Fs) OptionFunc {
	return func(o *Options) {
		if fs != nil {
			o.Fs = fs
		}
	}
}

// New builds an Options value from the given default chunk size and the
// provided overrides, then validates it.
func New(defaultChunk int, opts ...OptionFunc) (*Options, error) {
	o := &Options{
		ChunkSize:     defaultChunk,
		CacheCapacity: DefaultCacheCapacity,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the option values against their documented bounds.
func (o *Options) Validate() error {
	if o.ChunkSize < MinChunkSize {
		return errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Chunk size below minimum",
		).WithField("ChunkSize").WithRule("min").WithProvided(o.ChunkSize).WithExpected(MinChunkSize)
	}
	if o.CacheCapacity < MinCacheCapacity {
		return errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Cache capacity below minimum",
		).WithField("CacheCapacity").WithRule("min").WithProvided(o.CacheCapacity).WithExpected(MinCacheCapacity)
	}
	return nil
}

// ValidateRoot checks that a root path is usable.
func ValidateRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "Container root is required",
		).WithField("root").WithRule("required").WithProvided(root)
	}
	return nil
}
