package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPool_ProcessesAllIndexes(t *testing.T) {
	var processed atomic.Int64
	seen := make([]atomic.Bool, 50)

	pool := NewPool(4, 0)
	pool.ForEach(context.Background(), 50, func(ctx context.Context, i int) {
		seen[i].Store(true)
		processed.Add(1)
	})

	if processed.Load() != 50 {
		t.Errorf("expected 50 jobs processed, got %d", processed.Load())
	}
	for i := range seen {
		if !seen[i].Load() {
			t.Errorf("index %d never processed", i)
		}
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	var current, peak atomic.Int64

	pool := NewPool(3, 0)
	pool.ForEach(context.Background(), 30, func(ctx context.Context, i int) {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		current.Add(-1)
	})

	if peak.Load() > 3 {
		t.Errorf("concurrency peaked at %d, limit is 3", peak.Load())
	}
}

func TestPool_PerJobTimeout(t *testing.T) {
	var timedOut atomic.Int64

	pool := NewPool(2, 20*time.Millisecond)
	pool.ForEach(context.Background(), 4, func(ctx context.Context, i int) {
		select {
		case <-ctx.Done():
			timedOut.Add(1)
		case <-time.After(time.Second):
		}
	})

	if timedOut.Load() != 4 {
		t.Errorf("expected all 4 jobs to hit the per-job timeout, got %d", timedOut.Load())
	}
}

func TestPool_CancellationDropsQueuedJobs(t *testing.T) {
	var started atomic.Int64

	ctx, cancel := context.WithCancel(context.Background())

	pool := NewPool(1, 0)
	pool.ForEach(ctx, 100, func(jobCtx context.Context, i int) {
		started.Add(1)
		if i == 0 {
			cancel()
		}
	})

	if started.Load() == 100 {
		t.Error("cancellation should drop queued jobs")
	}
}

func TestPool_MoreWorkersThanJobs(t *testing.T) {
	var processed atomic.Int64

	pool := NewPool(16, 0)
	pool.ForEach(context.Background(), 3, func(ctx context.Context, i int) {
		processed.Add(1)
	})

	if processed.Load() != 3 {
		t.Errorf("expected 3 jobs processed, got %d", processed.Load())
	}
}

func TestPool_ZeroJobs(t *testing.T) {
	pool := NewPool(4, 0)
	pool.ForEach(context.Background(), 0, func(ctx context.Context, i int) {
		t.Error("no jobs should run")
	})
}
