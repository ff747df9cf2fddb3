package common

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy is the shared retry-with-backoff policy for external HTTP
// calls. A call is retried only while the predicate reports the error as
// retryable (e.g. HTTP 429 / 5xx); other errors fail immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(error) bool
}

// NewRetryPolicy returns a policy with the given attempt cap and base delay.
// A nil predicate retries every error.
func NewRetryPolicy(maxAttempts int, baseDelay time.Duration, retryable func(error) bool) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: baseDelay, Retryable: retryable}
}

// Do runs op with exponential backoff until it succeeds, the attempt cap is
// reached, the error is non-retryable, or the context is cancelled.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.RandomizationFactor = 0.2

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	capped := backoff.WithMaxRetries(bo, uint64(p.MaxAttempts-1))
	return backoff.Retry(wrapped, backoff.WithContext(capped, ctx))
}
