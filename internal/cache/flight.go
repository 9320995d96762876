package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/born-ml/contract/internal/fingerprint"
)

// shard deduplicates concurrent computations for the fingerprints it owns.
//
// The singleflight group guarantees one computation per key. The call table
// tracks how many callers still wait on it so the computation can be
// cancelled once nobody does.
type shard struct {
	group singleflight.Group

	mu    sync.Mutex
	calls map[fingerprint.Fingerprint]*call
}

type call struct {
	fp      fingerprint.Fingerprint
	key     string
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func newShard() *shard {
	return &shard{calls: make(map[fingerprint.Fingerprint]*call)}
}

// join registers a waiter on the computation for fp, creating it if needed.
// The computation context keeps the values of the first caller but none of
// its cancellation.
func (s *shard) join(parent context.Context, fp fingerprint.Fingerprint) *call {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.calls[fp]
	if !ok {
		ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
		c = &call{fp: fp, key: fp.String(), ctx: ctx, cancel: cancel}
		s.calls[fp] = c
	}
	c.waiters++
	return c
}

// leave removes a waiter. The last waiter out cancels the computation; if it
// leaves before the result arrived the flight is forgotten so the next caller
// starts a fresh one.
func (s *shard) leave(c *call, abandoned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.waiters--
	if c.waiters > 0 {
		return
	}
	if s.calls[c.fp] == c {
		delete(s.calls, c.fp)
	}
	if abandoned {
		s.group.Forget(c.key)
	}
	c.cancel()
}

func (s *shard) inFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
