package cache

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/born-ml/contract/internal/schema"
)

// ErrEntryTooLarge is returned by Store when an output exceeds MaxBytes.
var ErrEntryTooLarge = errors.New("cache: entry exceeds byte budget")

// Entry is a stored prediction. Only the hit count changes after creation.
type Entry struct {
	// Output is the validated prediction. It must not be modified.
	Output schema.ValidatedArray

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time

	hits atomic.Int64
}

// Hits returns how many lookups this entry has served.
func (e *Entry) Hits() int64 {
	return e.hits.Load()
}

func (e *Entry) size() int64 {
	return int64(e.Output.ByteSize())
}

// Result is the outcome of GetOrCompute.
type Result struct {
	// Output is the prediction, shared with the cache. Callers must clone it
	// before handing it to code that may mutate it.
	Output schema.ValidatedArray

	// Hit is true when Output came from a stored entry.
	Hit bool

	// Shared is true when the computation served more than one caller.
	Shared bool
}

// Stats contains statistics about the cache.
type Stats struct {
	// Hits is the number of lookups served from a stored entry.
	Hits int64

	// Misses is the number of lookups that found no stored entry.
	Misses int64

	// Shared is the number of callers that received a result of a
	// computation shared with other callers.
	Shared int64

	// Evictions is the number of entries evicted by the entry or byte bound.
	Evictions int64

	// StoreFailures is the number of outputs that could not be stored.
	StoreFailures int64

	// Entries is the number of stored entries.
	Entries int

	// Bytes is the summed output size of stored entries.
	Bytes int64

	// InFlight is the number of computations currently running.
	InFlight int
}

// HitRate returns hits / (hits + misses), or 0 when there were no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
