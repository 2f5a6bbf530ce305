package dynamo

import (
	"context"
	"runtime"
	"sync"
)

// Ensemble runs independent simulations concurrently. Every job must own its
// system, forcing and diagnostics; nothing is shared between jobs.
type Ensemble struct {
	workers int
}

func NewEnsemble(workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Ensemble{workers: workers}
}

// Run calls fn for every index in [0, n) and returns the per-index errors in
// order. A canceled context stops jobs that have not started yet.
func (e *Ensemble) Run(ctx context.Context, n int, fn func(ctx context.Context, idx int) error) []error {
	errs := make([]error, n)
	sem := make(chan struct{}, e.workers)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[idx] = fn(ctx, idx)
		}(i)
	}

	wg.Wait()
	return errs
}
