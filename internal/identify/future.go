// Package identify runs one-shot background lookups whose result the caller
// waits for with a deadline.
package identify

import (
	"context"
	"time"
)

// DefaultTimeout bounds how long Wait blocks when no timeout is given
const DefaultTimeout = 5 * time.Second

// Future is the pending result of a single background call
type Future[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	value  T
	err    error
}

// Go starts fn on its own goroutine. fn receives a context that is cancelled
// after timeout, when ctx is done, or when Cancel is called.
func Go[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) *Future[T] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	fctx, cancel := context.WithTimeout(ctx, timeout)
	f := &Future[T]{
		ctx:    fctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(f.done)
		f.value, f.err = fn(fctx)
	}()

	return f
}

// Wait blocks until fn returns or the future's context ends, whichever is
// first. A call that ignores its context cannot hold Wait past the deadline.
func (f *Future[T]) Wait() (T, error) {
	defer f.cancel()

	select {
	case <-f.done:
		return f.value, f.err
	case <-f.ctx.Done():
		// fn may have finished at the same instant
		select {
		case <-f.done:
			return f.value, f.err
		default:
		}
		var zero T
		return zero, f.ctx.Err()
	}
}

// Cancel abandons the call
func (f *Future[T]) Cancel() {
	f.cancel()
}

// Done is closed once fn has returned
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
