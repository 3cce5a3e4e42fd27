// Package workerpool runs background jobs such as model retraining on a
// bounded set of goroutines. When all workers are busy and the queue is full,
// Submit returns ErrPoolFull immediately so the caller can reject the request.
package workerpool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shashiranjanraj/propelyu/pkg/logger"
)

var (
	ErrPoolFull   = errors.New("workerpool: pool is full")
	ErrPoolClosed = errors.New("workerpool: pool is closed")
)

// Task receives a context that is cancelled on Shutdown.
type Task func(ctx context.Context)

type job struct {
	name string
	run  Task
}

// Pool is a bounded goroutine pool.
type Pool struct {
	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New starts size workers with a queue of 2×size.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:   make(chan job, size*2),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(name string, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job{name: name, run: task}:
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown stops accepting tasks, cancels the task context and waits for
// the workers to drain. If ctx expires first it returns ctx.Err() and
// leaves tasks that ignore cancellation to finish on their own. Safe to
// call more than once.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		p.run(j)
	}
}

// run recovers panics so a bad task doesn't kill the worker.
func (p *Pool) run(j job) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("workerpool: task panicked", "task", j.name, "panic", rec)
			return
		}
		logger.Debug("workerpool: task done", "task", j.name, "duration", time.Since(start))
	}()
	j.run(p.ctx)
}
