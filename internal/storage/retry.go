package storage

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how upload attempts are retried. It is injected into
// backend adapters at construction time rather than hard-coded inline.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
}

// DefaultRetryPolicy: 3 attempts with exponential backoff starting at 1s.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: time.Second,
	Multiplier:      2,
	MaxInterval:     30 * time.Second,
}

// Do runs op until it succeeds or the attempt budget is spent, backing off
// between attempts. It returns the number of attempts made and the last
// error. Wrap an error with backoff.Permanent inside op to stop retrying.
func (p RetryPolicy) Do(ctx context.Context, op func() error) (int, error) {
	attempts := 0
	wrapped := func() error {
		attempts++
		return op()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.Multiplier = p.Multiplier
	bo.MaxInterval = p.MaxInterval
	bo.MaxElapsedTime = 0

	maxRetries := uint64(0)
	if p.MaxAttempts > 1 {
		maxRetries = uint64(p.MaxAttempts - 1)
	}

	err := backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx))
	return attempts, err
}
