package pipeline

import (
	"context"
	"sync"
)

// Task is one unit of pipeline work. The returned Result carries only the
// outcome; side effects (DB writes, tallies) happen inside the task.
type Task func(ctx context.Context) Result

type Result struct {
	Skipped bool
	Err     error
}

// WorkerPool fans tasks out over a fixed number of goroutines. Stages
// create a pool per run, submit their batch, close it, and drain Results.
type WorkerPool struct {
	tasks   chan Task
	results chan Result
	wg      sync.WaitGroup
	workers int
}

func NewWorkerPool(workers, buffer int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &WorkerPool{
		tasks:   make(chan Task, buffer),
		results: make(chan Result, buffer),
		workers: workers,
	}
}

// Run starts the workers. It returns immediately; callers drain Results()
// until it closes.
func (p *WorkerPool) Run(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				select {
				case <-ctx.Done():
					p.results <- Result{Err: ctx.Err()}
					continue
				default:
				}
				p.results <- task(ctx)
			}
		}()
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

func (p *WorkerPool) Submit(t Task) {
	p.tasks <- t
}

// Close signals no further tasks. Results() closes once in-flight tasks
// finish.
func (p *WorkerPool) Close() {
	close(p.tasks)
}

func (p *WorkerPool) Results() <-chan Result {
	return p.results
}
