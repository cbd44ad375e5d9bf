// Package oracle implements the consultation policy toward the
// external generative-model service: prompt construction, retry with
// exponential backoff, circuit breaking, and the degraded-result
// contract that shields the deterministic pipeline from oracle
// failures.
package oracle

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrSchema marks an oracle response that could not be parsed into the
// expected payload shape. Schema failures are terminal: retrying the
// same prompt will not fix a structurally wrong response.
var ErrSchema = errors.New("oracle response does not match expected schema")

// RetryPolicy describes the backoff behavior for transient oracle
// failures. The zero value is unusable; use DefaultRetryPolicy.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

// DefaultRetryPolicy is three attempts with delays of 1s then 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2.0,
		MaxDelay:     30 * time.Second,
	}
}

// Do runs op up to MaxAttempts times, sleeping between attempts with
// exponential backoff. retryable decides whether an error is worth
// another attempt; non-retryable errors return immediately. The number
// of attempts actually performed is always returned.
func (p RetryPolicy) Do(ctx context.Context, logger *zap.Logger, op func() error, retryable func(error) bool) (int, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.InitialDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil {
			return attempt, nil
		}
		if retryable != nil && !retryable(err) {
			return attempt, err
		}
		if attempt == attempts {
			return attempt, err
		}

		logger.Warn("Oracle call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return attempts, err
}
