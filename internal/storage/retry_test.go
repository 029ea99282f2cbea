package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     maxAttempts,
		InitialInterval: time.Millisecond,
		Multiplier:      2,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestRetryPolicyTransientFailuresThenSuccess(t *testing.T) {
	failures := 2
	calls := 0

	attempts, err := testPolicy(3).Do(context.Background(), func() error {
		calls++
		if calls <= failures {
			return errors.New("connection reset")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, failures+1, attempts)
}

func TestRetryPolicyExhaustsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")

	attempts, err := testPolicy(3).Do(context.Background(), func() error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyPermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	denied := errors.New("access denied")

	attempts, err := testPolicy(3).Do(context.Background(), func() error {
		calls++
		return backoff.Permanent(denied)
	})

	require.ErrorIs(t, err, denied)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicyRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts, err := testPolicy(10).Do(ctx, func() error {
		cancel()
		return errors.New("transient")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}
