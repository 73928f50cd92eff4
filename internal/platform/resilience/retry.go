package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAttemptTimeout is reported for an attempt that did not finish before its deadline.
var ErrAttemptTimeout = errors.New("attempt deadline exceeded")

// Policy bounds a single logical call: how many times it may run and how long each run may take.
type Policy struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	// OnRetry is called after each failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy is 1 first attempt + 2 retries, 500ms each.
var DefaultPolicy = Policy{
	MaxAttempts:    3,
	AttemptTimeout: 500 * time.Millisecond,
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error as is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type result[T any] struct {
	val T
	err error
}

// Do runs op until it succeeds, returns a Permanent error, or the policy runs out of attempts.
//
// Every attempt gets a fresh deadline derived from ctx without its cancellation, so an attempt
// that has started runs to completion or to its own deadline even if the caller goes away.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	base := context.WithoutCancel(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		val, err := runAttempt(base, p.AttemptTimeout, op)
		if err == nil {
			return val, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}

		lastErr = err
		if attempt < maxAttempts && p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
	}
	return zero, &ExhaustedError{Attempts: maxAttempts, Err: lastErr}
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if timeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		val, err := op(attemptCtx)
		done <- result[T]{val: val, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			var perm *permanentError
			if !errors.As(res.err, &perm) {
				return zero, fmt.Errorf("%w: %v", ErrAttemptTimeout, res.err)
			}
		}
		return res.val, res.err
	case <-attemptCtx.Done():
		return zero, ErrAttemptTimeout
	}
}
