package utils

import (
	"context"
	"sync"
)

// Worker represents a worker function that processes one item.
type Worker[T any, R any] func(ctx context.Context, index int, item T) (R, error)

// WorkerPool processes items with a fixed number of workers pulling from a
// shared queue. As soon as a worker finishes an item it takes the next queued
// one, so at most numWorkers items are in flight at any time.
//
// Goroutine Lifecycle:
//   - Worker goroutines are created when ProcessItems is called
//   - Workers read indices from an internal channel until it is drained
//   - ProcessItems blocks until all workers complete via WaitGroup
//   - Panics in workers are recovered and converted to PanicError for that item
//
// Each worker writes only the result and error slots of the items it took,
// so the returned slices correspond to items by index regardless of
// completion order.
//
// Cancellation is forward-only: once ctx is done, items not yet started
// resolve to ctx.Err(), items in flight observe the cancelled ctx, and
// finished items are kept.
//
// Example:
//
//	pool := NewWorkerPool(4, func(ctx context.Context, i int, item string) (int, error) {
//	    return len(item), nil
//	})
//	results, errors := pool.ProcessItems(ctx, []string{"a", "bb", "ccc"})
type WorkerPool[T any, R any] struct {
	numWorkers int
	worker     Worker[T, R]
}

// NewWorkerPool creates a new worker pool. A non-positive numWorkers uses
// GetSemaphoreLimit.
func NewWorkerPool[T any, R any](numWorkers int, worker Worker[T, R]) *WorkerPool[T, R] {
	if numWorkers <= 0 {
		numWorkers = GetSemaphoreLimit()
	}
	return &WorkerPool[T, R]{
		numWorkers: numWorkers,
		worker:     worker,
	}
}

// NumWorkers returns the concurrency limit of the pool.
func (wp *WorkerPool[T, R]) NumWorkers() int {
	return wp.numWorkers
}

// ProcessItems processes items using the worker pool and returns one result
// and one error per item.
func (wp *WorkerPool[T, R]) ProcessItems(ctx context.Context, items []T) ([]R, []error) {
	if len(items) == 0 {
		return nil, nil
	}

	indices := make(chan int, len(items))
	for i := range items {
		indices <- i
	}
	close(indices)

	results := make([]R, len(items))
	errs := make([]error, len(items))

	workers := wp.numWorkers
	if workers > len(items) {
		workers = len(items)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indices {
				if err := ctx.Err(); err != nil {
					errs[index] = err
					continue
				}
				wp.run(ctx, index, items[index], results, errs)
			}
		}()
	}

	wg.Wait()
	return results, errs
}

func (wp *WorkerPool[T, R]) run(ctx context.Context, index int, item T, results []R, errs []error) {
	defer RecoverWithCallback(func(err error) {
		errs[index] = err
	})
	results[index], errs[index] = wp.worker(ctx, index, item)
}
