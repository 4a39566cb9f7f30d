package executor

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultPoolSize is the number of workers used when no size is configured.
const DefaultPoolSize = 10

// WorkerPool is a fixed set of goroutines draining a shared task queue.
// The pool is owned by the caller: create it before a run and Close it
// once all results have been collected. There is no package-level pool.
type WorkerPool struct {
	size      int
	tasks     chan func()
	group     errgroup.Group
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewWorkerPool starts a pool of size workers. size <= 0 uses DefaultPoolSize.
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = DefaultPoolSize
	}

	p := &WorkerPool{
		size:  size,
		tasks: make(chan func(), size),
	}

	for i := 0; i < size; i++ {
		p.group.Go(func() error {
			for task := range p.tasks {
				task()
			}
			return nil
		})
	}

	return p
}

// Size returns the number of workers.
func (p *WorkerPool) Size() int {
	return p.size
}

// Submit queues task for execution by the next free worker. It blocks while
// the queue is full and returns ctx.Err() if ctx is done first, or
// ErrPoolClosed after Close.
func (p *WorkerPool) Submit(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks, lets the workers finish what is queued and
// waits for them to exit. It is safe to call more than once.
func (p *WorkerPool) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
	})
	return p.group.Wait()
}
