package options

const (
	// DefaultCacheCapacity is the number of segments the LRU cache keeps
	// resident when no override is given.
	DefaultCacheCapacity = 4

	// MinCacheCapacity is the smallest usable cache: balancing touches a
	// segment and one neighbour at a time.
	MinCacheCapacity = 2

	// MinChunkSize is the smallest target segment size. Below this the
	// balancing thresholds collapse into each other.
	MinChunkSize = 4

	// DefaultListChunkSize is the target segment size for big lists.
	DefaultListChunkSize = 8192

	// DefaultDictChunkSize is the target segment size for big dicts.
	DefaultDictChunkSize = 4096

	// DefaultSortedChunkSize is the target segment size for sorted lists.
	DefaultSortedChunkSize = 1024
)
