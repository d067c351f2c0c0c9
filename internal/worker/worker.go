// Package worker provides the bounded pools used to parallelize per-candidate
// external calls without unbounded concurrency.
package worker

import (
	"context"
	"sync"
	"time"
)

// Pool runs independent per-index jobs on a fixed number of workers. Each job
// writes into its own result slot, so callers need no locking.
type Pool struct {
	workers int
	timeout time.Duration
}

// NewPool creates a pool of the given size. perJobTimeout bounds each job's
// context; zero means jobs inherit the caller's deadline unchanged.
func NewPool(workers int, perJobTimeout time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		timeout: perJobTimeout,
	}
}

// ForEach runs fn for every index in [0, n) with bounded concurrency and
// returns once all started jobs have finished. When ctx is cancelled, indexes
// not yet handed to a worker are dropped; in-flight jobs see the cancellation
// through their own context.
func (p *Pool) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > n {
		workers = n
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p.runOne(ctx, i, fn)
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
}

func (p *Pool) runOne(ctx context.Context, i int, fn func(ctx context.Context, i int)) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	fn(ctx, i)
}
