package providers

import (
	"context"
	"time"
)

// CallWithTimeout races fn against a wall-clock deadline. On expiry the
// caller gets a KindTimeout error immediately; the vendor call keeps its
// derived context cancelled so in-flight work is abandoned as far as the
// vendor API allows.
func CallWithTimeout[T any](ctx context.Context, provider string, d time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() == context.DeadlineExceeded {
			var zero T
			return zero, timeoutError(provider, d)
		}
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		if ctx.Err() == context.DeadlineExceeded {
			return zero, timeoutError(provider, d)
		}
		return zero, WrapError(KindInternal, provider, ctx.Err())
	}
}

func timeoutError(provider string, d time.Duration) *Error {
	return NewError(KindTimeout, provider, "operation timed out after "+d.String())
}
