// Package parallel runs independent per-series work on a bounded pool.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers resolves a configured worker count; n <= 0 means GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Map applies fn to every item using at most workers goroutines.
// Results keep the input order. The first error is returned and the
// remaining results are discarded.
func Map[T, R any](items []T, workers int, fn func(T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(Workers(workers))

	for i, item := range items {
		g.Go(func() error {
			r, err := fn(item)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
