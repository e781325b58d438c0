// Package retry re-runs boundary operations that failed with a retryable kind.
//
// Boundaries never retry on their own. Whether a failure is worth another
// attempt is a caller decision, made here from the classification of the
// TranslatedError's kind: DEVICE_UNAVAILABLE, STORAGE_FAILURE and TIMEOUT are
// retried, everything else stops immediately.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmgilman/go/boundary/errors"
)

// OpRetry is the operation name attached to failures produced by the retry
// loop itself (context cancellation between attempts).
const OpRetry = "retry"

// Policy configures exponential backoff between attempts.
type Policy struct {
	// InitialInterval is the delay before the second attempt.
	InitialInterval time.Duration

	// MaxInterval caps the delay between attempts.
	MaxInterval time.Duration

	// Multiplier scales the delay after each attempt.
	Multiplier float64

	// MaxAttempts is the total number of attempts, including the first.
	// Zero means no limit other than MaxElapsedTime.
	MaxAttempts uint64

	// MaxElapsedTime stops retrying once this much time has passed.
	// Zero means no limit other than MaxAttempts.
	MaxElapsedTime time.Duration

	// Notify, if set, is called before each retry with the failure and the delay.
	Notify func(err error, next time.Duration)
}

// DefaultPolicy returns a policy of three attempts starting at 100ms.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
		MaxAttempts:     3,
		MaxElapsedTime:  30 * time.Second,
	}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		exp.Multiplier = p.Multiplier
	}
	exp.MaxElapsedTime = p.MaxElapsedTime
	exp.Reset()

	var b backoff.BackOff = exp
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, p.MaxAttempts-1)
	}
	return backoff.WithContext(b, ctx)
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// policy is exhausted. The last failure is returned unchanged.
//
// If ctx is done while waiting between attempts, Do returns a CANCELLED or
// TIMEOUT TranslatedError.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	_, err := DoValue(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoValue is like Do but returns the value produced by the successful attempt.
func DoValue[T any](ctx context.Context, policy Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	op := func() (T, error) {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !errors.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	var notify backoff.Notify
	if policy.Notify != nil {
		notify = func(err error, next time.Duration) { policy.Notify(err, next) }
	}

	v, err := backoff.RetryNotifyWithData(op, policy.backOff(ctx), notify)
	if err == nil {
		return v, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
		return v, errors.Translate(OpRetry, ctxErr)
	}
	return v, err
}
