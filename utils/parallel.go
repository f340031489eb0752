package utils

import (
	"context"
	"sync"
)

// WorkerPool manages a fixed set of workers for parallel ticker processing.
type WorkerPool struct {
	maxWorkers int
	jobCh      chan func()
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a worker pool with maxWorkers goroutines.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	wp := &WorkerPool{
		maxWorkers: maxWorkers,
		jobCh:      make(chan func(), maxWorkers*2),
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < maxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job := <-wp.jobCh:
			if job != nil {
				job()
			}
		case <-wp.ctx.Done():
			return
		}
	}
}

// Submit queues a job. It is a no-op after Close.
func (wp *WorkerPool) Submit(job func()) {
	select {
	case wp.jobCh <- job:
	case <-wp.ctx.Done():
	}
}

// Close stops the pool and waits for running jobs to finish.
func (wp *WorkerPool) Close() {
	close(wp.jobCh)
	wp.cancel()
	wp.wg.Wait()
}
