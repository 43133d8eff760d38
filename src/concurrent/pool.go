// Package concurrent bounds CPU-heavy work (embedding computation) so it
// cannot starve the I/O-bound request handlers sharing the process.
package concurrent

import (
	"context"
	"sync"
)

// WorkerPool is a counting semaphore over a fixed number of workers.
type WorkerPool struct {
	sem chan struct{}
}

// NewWorkerPool creates a pool with the given parallelism (default 4).
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &WorkerPool{sem: make(chan struct{}, maxWorkers)}
}

// Do runs fn once a worker slot is free, or returns early when ctx is done.
func (wp *WorkerPool) Do(ctx context.Context, fn func() error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.sem <- struct{}{}:
		defer func() { <-wp.sem }()
		return fn()
	}
}

// ParallelMap applies fn to every item through the pool's worker slots,
// preserving input order in the results. The pool is shared: concurrent
// callers contend for the same slots. The first error wins; remaining work
// still drains before returning. A nil pool gets the default parallelism.
func ParallelMap[T, R any](ctx context.Context, pool *WorkerPool, items []T, fn func(T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if pool == nil {
		pool = NewWorkerPool(0)
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(idx int, val T) {
			defer wg.Done()
			errs[idx] = pool.Do(ctx, func() error {
				var err error
				results[idx], err = fn(val)
				return err
			})
		}(i, item)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
