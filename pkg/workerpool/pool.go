// Package workerpool runs tasks on a bounded set of goroutines. The
// injection engine uses it to fan parameters out and the orchestrator to run
// modules side by side.
package workerpool

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// PanicHandler receives the value of a panicking task.
type PanicHandler func(recovered any)

// Pool manages up to a fixed number of worker goroutines. Workers start
// lazily on Submit and survive panicking tasks.
type Pool struct {
	workers int32
	running atomic.Int32
	closed  atomic.Bool
	tasks   chan func()
	wg      sync.WaitGroup
	onPanic PanicHandler
	mu      sync.Mutex // serialises Submit against Close
}

// New creates a pool with the given number of workers (minimum 1).
func New(workers int, onPanic PanicHandler) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: int32(workers),
		tasks:   make(chan func(), workers*4),
		onPanic: onPanic,
	}
}

// Submit queues task. It blocks while the queue is full and returns false
// once the pool is closed.
func (p *Pool) Submit(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed.Load() {
		return false
	}
	if n := p.running.Load(); n < p.workers {
		p.running.Add(1)
		p.wg.Add(1)
		go p.worker()
	}
	p.tasks <- task
	return true
}

func (p *Pool) worker() {
	defer func() {
		p.running.Add(-1)
		p.wg.Done()
	}()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil && p.onPanic != nil {
			p.onPanic(r)
		}
	}()
	if task != nil {
		task()
	}
}

// Cap returns the worker limit.
func (p *Pool) Cap() int {
	return int(p.workers)
}

// Close waits for queued tasks to finish and stops the workers.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed.Swap(true) {
		p.mu.Unlock()
		return
	}
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}

// Map applies fn to every item with at most workers goroutines and returns
// the results in input order. A panicking fn yields the zero R for that item
// and an error describing the panic at the same index.
func Map[T, R any](workers int, items []T, fn func(int, T) R) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return results, errs
	}

	p := New(workers, nil)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic: %v", r)
				}
			}()
			results[i] = fn(i, item)
		})
	}
	wg.Wait()
	p.Close()
	return results, errs
}
