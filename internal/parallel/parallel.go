// Package parallel splits row-wise backend work across goroutines.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Upper bound on concurrent chunks.
	MinRows    int  // Minimum rows per chunk.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinRows:    64,
	}
}

// Rows calls f on disjoint half-open ranges [lo, hi) covering [0, n).
// Small inputs or a disabled config run as a single range on the caller's
// goroutine. Chunks not yet started are skipped once ctx is done, and Rows
// then returns ctx.Err().
func Rows(ctx context.Context, n int, cfg Config, f func(lo, hi int)) error {
	if n <= 0 {
		return ctx.Err()
	}
	minRows := max(cfg.MinRows, 1)
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*minRows {
		if err := ctx.Err(); err != nil {
			return err
		}
		f(0, n)
		return nil
	}

	chunk := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, minRows)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.NumWorkers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f(lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
