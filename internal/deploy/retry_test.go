package deploy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(delays *[]time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		sleep:       func(d time.Duration) { *delays = append(*delays, d) },
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	var delays []time.Duration
	calls := 0

	err := testPolicy(&delays).Do("op", func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestRetryTransientBackoff(t *testing.T) {
	var delays []time.Duration
	calls := 0

	err := testPolicy(&delays).Do("op", func() error {
		calls++
		if calls < 3 {
			return errTransient()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	var delays []time.Duration
	calls := 0

	err := testPolicy(&delays).Do("op", func() error {
		calls++
		return errTransient()
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
}

func TestRetryNonTransientPropagatesImmediately(t *testing.T) {
	var delays []time.Duration
	calls := 0
	want := errPermanent()

	err := testPolicy(&delays).Do("op", func() error {
		calls++
		return want
	})

	require.ErrorIs(t, err, want)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestRetryContextCancellationNotRetried(t *testing.T) {
	var delays []time.Duration
	calls := 0

	err := testPolicy(&delays).Do("op", func() error {
		calls++
		return context.Canceled
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestRetryZeroAttemptsStillRunsOnce(t *testing.T) {
	calls := 0
	p := RetryPolicy{sleep: func(time.Duration) {}}

	err := p.Do("op", func() error {
		calls++
		return errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
