package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func TestDo_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retried []int
	p := Policy{
		MaxAttempts: 3,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			retried = append(retried, attempt)
		},
	}

	err := p.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if attempt < 3 {
			return errFlaky
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := Fixed(3, 0).Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return errFlaky
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, errFlaky)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	calls := 0
	err := Fixed(5, 0).Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return Permanent(errFlaky)
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, errFlaky)
	assert.NotErrorIs(t, err, ErrExhausted)
}

func TestDo_WaitsFixedDelay(t *testing.T) {
	start := time.Now()
	_ = Fixed(3, 20*time.Millisecond).Do(context.Background(), func(ctx context.Context, attempt int) error {
		return errFlaky
	})
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Fixed(3, 0).Do(ctx, func(ctx context.Context, attempt int) error {
		calls++
		return nil
	})

	assert.Equal(t, 0, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Policy{}.Do(context.Background(), func(ctx context.Context, attempt int) error {
		calls++
		return errFlaky
	})
	assert.Equal(t, 1, calls)
}
