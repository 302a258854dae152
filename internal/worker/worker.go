package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrPoolFull    = errors.New("worker pool queue is full")
	ErrPoolStopped = errors.New("worker pool is stopped")
)

// Job is one unit of background work, such as notifying the server of a
// dismissal.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type WorkerPool struct {
	numWorkers int
	jobs       chan Job
	wg         sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

func NewWorkerPool(numWorkers int, bufferSize int) *WorkerPool {
	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, bufferSize),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			if err := job.Run(ctx); err != nil {
				slog.Error("job failed", "job", job.Name, "worker", id, "error", err)
			}
		}
	}
}

// Submit queues a job without blocking the caller.
func (wp *WorkerPool) Submit(job Job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		return ErrPoolStopped
	}
	select {
	case wp.jobs <- job:
		return nil
	default:
		return ErrPoolFull
	}
}

// Stop stops accepting jobs, lets workers drain the queue and waits for them.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return
	}
	wp.stopped = true
	close(wp.jobs)
	wp.mu.Unlock()

	wp.wg.Wait()
}
