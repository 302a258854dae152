package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func countingJob(n *atomic.Int64) Job {
	return Job{Name: "count", Run: func(ctx context.Context) error {
		n.Add(1)
		return nil
	}}
}

func TestWorkerPool_StartStop(t *testing.T) {
	var processed atomic.Int64
	pool := NewWorkerPool(2, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		if err := pool.Submit(countingJob(&processed)); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	pool.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 jobs processed, got %d", processed.Load())
	}
}

func TestWorkerPool_ConcurrentSubmit(t *testing.T) {
	var processed atomic.Int64
	pool := NewWorkerPool(4, 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	done := make(chan struct{})
	for i := 0; i < 100; i++ {
		go func() {
			pool.Submit(countingJob(&processed))
			done <- struct{}{}
		}()
	}
	for i := 0; i < 100; i++ {
		<-done
	}

	pool.Stop()

	if processed.Load() != 100 {
		t.Errorf("expected 100 jobs processed, got %d", processed.Load())
	}
}

func TestWorkerPool_SubmitFullQueue(t *testing.T) {
	pool := NewWorkerPool(1, 1)

	// Not started, so the single slot stays occupied.
	if err := pool.Submit(Job{Name: "a", Run: func(context.Context) error { return nil }}); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	err := pool.Submit(Job{Name: "b", Run: func(context.Context) error { return nil }})
	if !errors.Is(err, ErrPoolFull) {
		t.Errorf("expected ErrPoolFull, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	pool.Stop()
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	pool.Stop()
	pool.Stop() // idempotent

	err := pool.Submit(Job{Name: "late", Run: func(context.Context) error { return nil }})
	if !errors.Is(err, ErrPoolStopped) {
		t.Errorf("expected ErrPoolStopped, got %v", err)
	}
}

func TestWorkerPool_FailingJobDoesNotStopWorker(t *testing.T) {
	var processed atomic.Int64
	pool := NewWorkerPool(1, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	pool.Submit(Job{Name: "fail", Run: func(context.Context) error { return errors.New("boom") }})
	pool.Submit(countingJob(&processed))
	pool.Stop()

	if processed.Load() != 1 {
		t.Errorf("expected the job after a failure to run, got %d", processed.Load())
	}
}

func TestWorkerPool_GracefulShutdown(t *testing.T) {
	var processed atomic.Int64
	pool := NewWorkerPool(2, 50)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 20; i++ {
		pool.Submit(Job{Name: "slow", Run: func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			processed.Add(1)
			return nil
		}})
	}

	cancel()

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool.Stop() timed out")
	}

	t.Logf("processed %d jobs before shutdown", processed.Load())
}
