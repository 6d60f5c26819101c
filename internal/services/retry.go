package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// CallPolicy bounds one external call: each attempt gets Timeout, and a
// failed attempt is tried once more after Delay.
type CallPolicy struct {
	Timeout time.Duration
	Delay   time.Duration
}

const defaultRetryDelay = 500 * time.Millisecond

// Call runs fn with a per-attempt timeout and a single retry. Attempts that
// exceed their timeout surface as ErrTimeout; errors classified as permanent
// are returned without retrying. Cancellation of ctx stops immediately.
func Call[T any](ctx context.Context, policy CallPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	delay := policy.Delay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	operation := func() (T, error) {
		attemptCtx := ctx
		cancel := func() {}
		if policy.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		}
		defer cancel()

		result, err := fn(attemptCtx)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return result, backoff.Permanent(ctx.Err())
		}
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			err = errors.Join(ErrTimeout, err)
		}
		if Permanent(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	}
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(delay)),
		backoff.WithMaxTries(2),
	)
}
