package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Submit once the pool is stopping
var ErrPoolClosed = errors.New("worker pool closed")

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context)
}

// JobFunc adapts a function to Job
type JobFunc func(ctx context.Context)

// Execute calls f
func (f JobFunc) Execute(ctx context.Context) { f(ctx) }

// Pool is a long-lived set of workers executing submitted jobs concurrently
type Pool struct {
	workers    int
	jobQueue   chan Job
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	startOnce  sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2), // Buffered to prevent blocking
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Workers returns the pool size
func (p *Pool) Workers() int {
	return p.workers
}

// Start starts the worker pool. Calling it more than once is a no-op.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			job.Execute(p.ctx)
		}
	}
}

// Submit queues a job. It blocks while the queue is full, until ctx is done.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return ErrPoolClosed
	case p.jobQueue <- job:
		return nil
	}
}

// Stop stops accepting jobs, waits for queued jobs to finish and for
// every worker to exit
func (p *Pool) Stop() {
	if !p.close() {
		return
	}
	p.Start()
	p.wg.Wait()
	p.cancelFunc()
}

// Shutdown shuts down the worker pool immediately; queued jobs are dropped
// and running jobs see a cancelled context
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.close()
	p.wg.Wait()
}

func (p *Pool) close() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.closed = true
	close(p.jobQueue)
	return true
}
