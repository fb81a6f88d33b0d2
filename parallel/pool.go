package parallel

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Workers is the requested pool size, as given on the command line.
type Workers int

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool) error
	CancelFunc func()
)

// PanicError is returned by Wait when a task panicked.
type PanicError struct {
	Value  any
	Stack  []byte
	Others int // panics recovered after the first one
}

func (e *PanicError) Error() string {
	if e.Others > 0 {
		return fmt.Sprintf("worker panic: %v (and %d more)", e.Value, e.Others)
	}
	return fmt.Sprintf("worker panic: %v", e.Value)
}

// Pool runs submitted tasks on a fixed set of goroutines. A pool is used
// once: Wait(true) closes it.
type Pool struct {
	wg      sync.WaitGroup
	workers int

	mu    sync.Mutex
	fault *PanicError

	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{workers: numWorkers}
	pool.Do = pool.run
	pool.Wait = func(bool) error { return pool.err() }
	pool.Cancel = func() {}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for f := range workChan {
					pool.run(f)
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) error {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
			return pool.err()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

func (p *Pool) Workers() int {
	return p.workers
}

func (p *Pool) run(f func()) {
	defer func() {
		if v := recover(); v != nil {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.fault == nil {
				p.fault = &PanicError{Value: v, Stack: debug.Stack()}
			} else {
				p.fault.Others++
			}
		}
	}()
	f()
}

func (p *Pool) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fault == nil {
		return nil
	}
	return p.fault
}
