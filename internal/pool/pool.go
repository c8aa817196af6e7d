// Package pool provides the parallelism collaborator used by key generation
// and verification: map an index range over a bounded set of workers,
// preserving index order in the results. The contract is sequential
// equivalence; the worker count changes wall-clock time, never bytes.
package pool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers returns the worker count used when the caller passes 0.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Map runs fn(i) for every i in [0, n) on at most workers goroutines and
// returns the first error. fn writes its result into caller-owned storage at
// index i, so ordering is preserved by construction. Small jobs run inline.
func Map(ctx context.Context, n, workers int, fn func(i int) error) error {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if n <= 1 || workers == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		i := i
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}
