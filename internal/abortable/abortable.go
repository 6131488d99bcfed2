// Package abortable races blocking work against context cancellation.
package abortable

import (
	"context"
	"sync"

	"github.com/sakif/easing-playground/internal/apperror"
)

// Do runs fn and returns its outcome, or an apperror.ErrCancelled error as
// soon as ctx is done. fn may register an abort callback through onAbort;
// the callback runs once if ctx is cancelled while fn is still running, and
// never after Do has returned.
//
// A ctx that is already done fails immediately without calling fn.
func Do[R any](ctx context.Context, fn func(onAbort func(func())) (R, error)) (R, error) {
	var zero R
	if ctx.Err() != nil {
		return zero, apperror.Cancelled(context.Cause(ctx))
	}

	var (
		mu      sync.Mutex
		abort   func()
		settled bool
	)
	onAbort := func(f func()) {
		mu.Lock()
		abort = f
		mu.Unlock()
	}

	type outcome struct {
		val R
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		val, err := fn(onAbort)
		done <- outcome{val: val, err: err}
	}()

	aborted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		mu.Lock()
		f := abort
		skip := settled
		mu.Unlock()
		if f != nil && !skip {
			f()
		}
		close(aborted)
	})

	select {
	case o := <-done:
		mu.Lock()
		settled = true
		mu.Unlock()
		stop()
		return o.val, o.err
	case <-aborted:
		return zero, apperror.Cancelled(context.Cause(ctx))
	}
}
