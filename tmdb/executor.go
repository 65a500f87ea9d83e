package tmdb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrExecutorStopped is returned when work is submitted to a stopped executor
var ErrExecutorStopped = errors.New("completion executor is stopped")

// Executor runs completion callbacks on a designated execution context
type Executor interface {
	// Submit schedules work; it never runs work inline on the caller
	Submit(work func()) error

	// Stop drains queued work and stops the executor
	Stop(ctx context.Context) error
}

// serialExecutor runs every submitted function on a single goroutine in
// submission order.
type serialExecutor struct {
	mu       sync.Mutex
	queue    []func()
	wake     chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool
	done     chan struct{}
}

// NewSerialExecutor creates and starts an executor backed by one goroutine
func NewSerialExecutor() Executor {
	e := &serialExecutor{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *serialExecutor) run() {
	defer close(e.done)

	for {
		e.mu.Lock()
		batch := e.queue
		e.queue = nil
		stopped := e.stopped.Load()
		e.mu.Unlock()

		for _, work := range batch {
			if work != nil {
				work()
			}
		}

		if len(batch) > 0 {
			continue
		}
		if stopped {
			return
		}
		<-e.wake
	}
}

// Submit queues work for the executor goroutine
func (e *serialExecutor) Submit(work func()) error {
	e.mu.Lock()
	if e.stopped.Load() {
		e.mu.Unlock()
		return ErrExecutorStopped
	}
	e.queue = append(e.queue, work)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
	return nil
}

// Stop refuses new work, runs what is queued and waits for the goroutine
func (e *serialExecutor) Stop(ctx context.Context) error {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		e.stopped.Store(true)
		e.mu.Unlock()

		select {
		case e.wake <- struct{}{}:
		default:
		}
	})

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call is the handle of an asynchronous operation
type Call[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	value  T
	err    error
}

// Cancel aborts the in-flight request. The completion still runs, with a
// TransportError wrapping context.Canceled.
func (c *Call[T]) Cancel() {
	c.cancel()
}

// Done is closed once the result is available and the completion has run
func (c *Call[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call finishes or ctx is done
func (c *Call[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.value, c.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go runs fn on its own goroutine and delivers its result to completion on
// exec. completion may be nil. If exec has been stopped the result is still
// available through the returned Call but completion is skipped.
func Go[T any](ctx context.Context, exec Executor, fn func(context.Context) (T, error), completion func(T, error)) *Call[T] {
	ctx, cancel := context.WithCancel(ctx)
	call := &Call[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer cancel()

		value, err := fn(ctx)
		call.value, call.err = value, err

		finish := func() {
			if completion != nil {
				completion(value, err)
			}
			close(call.done)
		}
		if submitErr := exec.Submit(finish); submitErr != nil {
			close(call.done)
		}
	}()

	return call
}
