package source

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryConfig configures retries of remote reads.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	// Default: 1 (no retries)
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 1s
	MaxDelay time.Duration

	// Multiplier grows the delay after each attempt.
	// Default: 2.0
	Multiplier float64

	// Jitter adds up to 25% randomness to each delay.
	Jitter bool
}

// retrier runs a read until it succeeds, fails permanently, or runs out of
// attempts. The caller's context bounds the whole sequence.
type retrier struct {
	config RetryConfig
}

func newRetrier(config RetryConfig) *retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	return &retrier{config: config}
}

func (r *retrier) do(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt >= r.config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(r.delay(attempt)):
		}
	}
	return lastErr
}

func (r *retrier) delay(attempt int) time.Duration {
	d := time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	if d > r.config.MaxDelay {
		d = r.config.MaxDelay
	}
	if r.config.Jitter && d >= 4 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		d += time.Duration(rand.Int64N(int64(d / 4)))
	}
	return d
}

// retryable reports whether a failed read may succeed when repeated.
// Timeouts are final: the deadline covers all attempts.
func retryable(err error) bool {
	var re *ReadError
	if !errors.As(err, &re) || re.Kind != FetchError {
		return false
	}
	if re.Status == 0 {
		return true
	}
	return re.Status >= http.StatusInternalServerError || re.Status == http.StatusTooManyRequests
}
