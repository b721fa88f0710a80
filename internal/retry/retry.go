// Package retry wraps fallible operations in a bounded, fixed-delay retry policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy retries an operation up to MaxAttempts times, sleeping Delay between
// attempts. There is no jitter.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration

	// OnRetry is called after a failed attempt that will be retried.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Fixed returns a policy with a constant delay.
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: attempts, Delay: delay}
}

// ErrExhausted is wrapped by Do when every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Permanent marks an error that must not be retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a permanent error, the context is
// done, or the attempt budget is spent. The returned error wraps the last
// operation error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(p.Delay)
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	var lastErr error
	operation := func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		lastErr = op(ctx, attempt)
		return lastErr
	}
	notify := func(err error, wait time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
	}

	err := backoff.RetryNotify(operation, b, notify)
	if err == nil {
		return nil
	}

	var permanent *backoff.PermanentError
	if errors.As(lastErr, &permanent) {
		return permanent.Err
	}
	if lastErr == nil {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ctxErr, lastErr)
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, lastErr)
}
