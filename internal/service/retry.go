package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how provider calls are retried: exponential backoff
// between attempts, capped per-attempt delay, and an overall budget after
// which the last error is returned. Only transient errors are retried.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy is the budget applied to every provider call site.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 1 * time.Second,
		MaxInterval:     10 * time.Second,
		MaxElapsedTime:  120 * time.Second,
	}
}

// Execute runs op under the policy. Non-transient errors abort immediately;
// transient errors are retried until the elapsed budget is spent or the
// context is done.
func (p RetryPolicy) Execute(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval
	bo.MaxElapsedTime = p.MaxElapsedTime

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(bo, ctx))
}
