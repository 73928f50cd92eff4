package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	var calls int32
	val, err := Do(context.Background(), DefaultPolicy, func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	var calls int32
	var retried []int
	p := Policy{
		MaxAttempts:    3,
		AttemptTimeout: time.Second,
		OnRetry:        func(attempt int, err error) { retried = append(retried, attempt) },
	}

	val, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return 0, errors.New("connection refused")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	notFound := errors.New("not found")
	var calls int32

	_, err := Do(context.Background(), DefaultPolicy, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, Permanent(notFound)
	})

	assert.Equal(t, notFound, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDo_ExhaustsAfterMaxAttempts(t *testing.T) {
	boom := errors.New("boom")
	var calls int32

	_, err := Do(context.Background(), DefaultPolicy, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, boom
	})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDo_EachAttemptBoundedByDeadline(t *testing.T) {
	const timeout = 40 * time.Millisecond
	var calls int32
	p := Policy{MaxAttempts: 3, AttemptTimeout: timeout}

	start := time.Now()
	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	elapsed := time.Since(start)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.ErrorIs(t, err, ErrAttemptTimeout)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.GreaterOrEqual(t, elapsed, 3*timeout)
	assert.Less(t, elapsed, 3*timeout+time.Second)
}

func TestDo_DeadlineEnforcedWhenOpIgnoresContext(t *testing.T) {
	p := Policy{MaxAttempts: 2, AttemptTimeout: 20 * time.Millisecond}
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := Do(context.Background(), p, func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	})

	assert.ErrorIs(t, err, ErrAttemptTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_CallerCancellationDoesNotAbortAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	val, err := Do(ctx, DefaultPolicy, func(ctx context.Context) (string, error) {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", val)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	var calls int32
	_, err := Do(context.Background(), Policy{}, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, errors.New("fail")
	})

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 1, exhausted.Attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
