package service

import (
	"context"
	"errors"
	"time"
)

var errTimedOut = errors.New("timed out")

// withTimeout runs fn and a timer side by side. Whichever finishes first
// wins; fn's context is cancelled when withTimeout returns so a losing call
// stops and its late result is dropped.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.v, r.err
	case <-timer.C:
		return zero, errTimedOut
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
