package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a remote backend that did not answer.
var ErrUnavailable = errors.New("backend unavailable")

// Backoff controls how connecting to a remote backend is retried.
type Backoff struct {
	Attempts int           // total calls, at least one
	Delay    time.Duration // wait before the second call; doubles after each failure
}

// DefaultBackoff is used by the redis cache and the redis and mongo stores.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

type retryable struct{ err error }

func (e *retryable) Error() string { return e.err.Error() }
func (e *retryable) Unwrap() error { return e.err }

// Retryable marks err as transient so [Backoff.Retry] calls again.
// A nil error stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryable{err: err}
}

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool {
	var r *retryable
	return errors.As(err, &r)
}

// Retry calls fn until it succeeds, fails with an error not marked
// [Retryable], or has been called b.Attempts times. It returns ctx.Err() if
// ctx ends while waiting between calls.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for i := range max(b.Attempts, 1) {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

// RetryWithBackoff is DefaultBackoff.Retry.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}
