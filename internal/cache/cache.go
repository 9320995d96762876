// Package cache memoizes validated predictions by input fingerprint.
//
// A Cache is a bounded LRU of outputs with per-fingerprint single-flight:
// concurrent callers presenting the same fingerprint share one computation.
// Failed computations are never stored.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/born-ml/contract/internal/fingerprint"
	"github.com/born-ml/contract/internal/logging"
	"github.com/born-ml/contract/internal/schema"
)

// ComputeFunc produces the output for a missed fingerprint. The context is
// cancelled only when every caller waiting on the computation has gone.
type ComputeFunc func(ctx context.Context) (schema.ValidatedArray, error)

// Cache is a fingerprint-keyed store of validated outputs.
//
// Thread Safety:
//
//	Safe for concurrent use. No lock is held while computing.
type Cache struct {
	opts    Options
	logger  *slog.Logger
	entries *lru.Cache[fingerprint.Fingerprint, *Entry]
	shards  []*shard

	bytes         atomic.Int64
	hits          atomic.Int64
	misses        atomic.Int64
	shared        atomic.Int64
	evictions     atomic.Int64
	storeFailures atomic.Int64
}

// New creates a cache.
func New(opts ...Option) (*Cache, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if err := options.validate(); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	c := &Cache{
		opts:   options,
		logger: options.Logger,
		shards: make([]*shard, options.Shards),
	}
	if c.logger == nil {
		c.logger = logging.New("cache")
	}
	for i := range c.shards {
		c.shards[i] = newShard()
	}

	entries, err := lru.NewWithEvict(options.MaxEntries, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// onEvict runs for every entry leaving the LRU, whether by capacity, Remove
// or Purge.
func (c *Cache) onEvict(_ fingerprint.Fingerprint, e *Entry) {
	c.bytes.Add(-e.size())
}

// Options returns the effective configuration.
func (c *Cache) Options() Options {
	return c.opts
}

// GetOrCompute returns the stored output for fp, or runs compute once for all
// concurrent callers presenting fp and stores its result.
//
// If ctx ends before the result is available, GetOrCompute returns ctx.Err().
// The computation keeps running while other callers still wait on it.
func (c *Cache) GetOrCompute(ctx context.Context, fp fingerprint.Fingerprint, compute ComputeFunc) (Result, error) {
	if e, ok := c.entries.Get(fp); ok {
		e.hits.Add(1)
		c.hits.Add(1)
		return Result{Output: e.Output, Hit: true}, nil
	}
	c.misses.Add(1)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	sh := c.shardFor(fp)
	fl := sh.join(ctx, fp)
	ch := sh.group.DoChan(fl.key, func() (any, error) {
		// A flight that finished between our lookup and join already stored it.
		if e, ok := c.entries.Peek(fp); ok {
			return e.Output, nil
		}
		out, err := runCompute(fl.ctx, compute)
		if err != nil {
			return nil, err
		}
		if err := c.Store(fp, out); err != nil {
			c.logger.Warn("prediction not cached",
				slog.String("fingerprint", fp.Short()),
				slog.Int("bytes", out.ByteSize()),
				slog.String("error", err.Error()))
		}
		return out, nil
	})

	select {
	case res := <-ch:
		sh.leave(fl, false)
		if res.Shared {
			c.shared.Add(1)
		}
		if res.Err != nil {
			return Result{}, res.Err
		}
		return Result{Output: res.Val.(schema.ValidatedArray), Shared: res.Shared}, nil
	case <-ctx.Done():
		sh.leave(fl, true)
		return Result{}, ctx.Err()
	}
}

// runCompute converts a panic in compute into an error. DoChan would
// otherwise re-panic on its own goroutine and take the process down.
func runCompute(ctx context.Context, compute ComputeFunc) (out schema.ValidatedArray, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache: compute panicked: %v", r)
		}
	}()
	return compute(ctx)
}

// Get returns the stored output for fp and counts the lookup.
func (c *Cache) Get(fp fingerprint.Fingerprint) (schema.ValidatedArray, bool) {
	e, ok := c.entries.Get(fp)
	if !ok {
		c.misses.Add(1)
		return schema.ValidatedArray{}, false
	}
	e.hits.Add(1)
	c.hits.Add(1)
	return e.Output, true
}

// Store records out under fp. An existing entry for fp is kept.
// Outputs larger than MaxBytes are rejected with ErrEntryTooLarge.
func (c *Cache) Store(fp fingerprint.Fingerprint, out schema.ValidatedArray) error {
	if out.IsZero() {
		return fmt.Errorf("cache: store %s: empty output", fp.Short())
	}
	e := &Entry{Output: out, CreatedAt: time.Now()}
	size := e.size()
	if c.opts.MaxBytes > 0 && size > c.opts.MaxBytes {
		c.storeFailures.Add(1)
		return fmt.Errorf("%w: %d > %d bytes", ErrEntryTooLarge, size, c.opts.MaxBytes)
	}

	c.bytes.Add(size)
	present, evicted := c.entries.ContainsOrAdd(fp, e)
	if present {
		c.bytes.Add(-size)
		return nil
	}
	if evicted {
		c.evictions.Add(1)
	}

	for c.opts.MaxBytes > 0 && c.bytes.Load() > c.opts.MaxBytes {
		if _, _, ok := c.entries.RemoveOldest(); !ok {
			break
		}
		c.evictions.Add(1)
	}
	return nil
}

// Peek returns the stored entry for fp without counting a lookup or
// refreshing its recency.
func (c *Cache) Peek(fp fingerprint.Fingerprint) (*Entry, bool) {
	return c.entries.Peek(fp)
}

// Contains reports whether fp has a stored entry.
func (c *Cache) Contains(fp fingerprint.Fingerprint) bool {
	return c.entries.Contains(fp)
}

// Remove drops the entry for fp and reports whether one existed.
func (c *Cache) Remove(fp fingerprint.Fingerprint) bool {
	return c.entries.Remove(fp)
}

// Purge drops every stored entry. Counters are kept.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	inFlight := 0
	for _, sh := range c.shards {
		inFlight += sh.inFlight()
	}
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Shared:        c.shared.Load(),
		Evictions:     c.evictions.Load(),
		StoreFailures: c.storeFailures.Load(),
		Entries:       c.entries.Len(),
		Bytes:         c.bytes.Load(),
		InFlight:      inFlight,
	}
}

func (c *Cache) shardFor(fp fingerprint.Fingerprint) *shard {
	return c.shards[int(fp[0])%len(c.shards)]
}
