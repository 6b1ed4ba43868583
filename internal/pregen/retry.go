package pregen

import (
	"context"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"github.com/stylrsa/seo-pregen/internal"
	"github.com/stylrsa/seo-pregen/internal/log"
	"time"
)

type RetryPolicy struct {
	// MaxAttempts counts the first try, 1 disables retries.
	MaxAttempts int
	// ConnectivityBase is multiplied by the attempt number after a
	// connectivity failure.
	ConnectivityBase time.Duration
	// TaskBase doubles with every attempt after any other failure, up to
	// MaxBackoff.
	TaskBase   time.Duration
	MaxBackoff time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      3,
		ConnectivityBase: 5 * time.Second,
		TaskBase:         1 * time.Second,
		MaxBackoff:       30 * time.Second,
	}
}

// Delay is the wait before the retry that follows failed attempt number
// attempt (1 based).
func (p RetryPolicy) Delay(attempt int, err error) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	if internal.IsConnectivity(err) {
		return p.ConnectivityBase * time.Duration(attempt)
	}

	d := p.TaskBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}

	return d
}

type Retrier struct {
	policy RetryPolicy
}

func NewRetrier(policy RetryPolicy) *Retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	return &Retrier{policy: policy}
}

func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

// Do runs fn until it succeeds or MaxAttempts attempts failed, and returns the
// last error. A canceled context stops the wait and returns the context error.
func (r *Retrier) Do(ctx context.Context, logger log.Logger, fn func(ctx context.Context) error) error {
	var lastErr error
	attempt := 0

	backoff := retry.WithMaxRetries(uint64(r.policy.MaxAttempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
		delay := r.policy.Delay(attempt, lastErr)

		if logger != nil {
			logger.WithFields(logrus.Fields{
				"Attempt":      attempt,
				"MaxAttempts":  r.policy.MaxAttempts,
				"Delay":        delay.String(),
				"Connectivity": internal.IsConnectivity(lastErr),
				"Error":        lastErr,
			}).Warn("attempt {Attempt}/{MaxAttempts} failed, retrying in {Delay}")
		}

		return delay, false
	}))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		if err := fn(ctx); err != nil {
			lastErr = err
			return retry.RetryableError(err)
		}

		return nil
	})
}
