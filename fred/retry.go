package fred

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

var (
	// ErrRateLimit indicates that FRED answered 429.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries indicates that all retry attempts have been exhausted.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryOptions configures WithRetry.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryOptions returns the backoff used by NewClient.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:  4,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

func (o RetryOptions) withDefaults() RetryOptions {
	d := DefaultRetryOptions()
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 1
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = d.InitialDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = d.MaxDelay
	}
	if o.Multiplier < 1 {
		o.Multiplier = d.Multiplier
	}
	return o
}

// backoff is the wait after the given failed attempt, counting from 1.
// A rate limit waits the full MaxDelay.
func (o RetryOptions) backoff(attempt int, err error) time.Duration {
	if errors.Is(err, ErrRateLimit) {
		return o.MaxDelay
	}
	wait := float64(o.InitialDelay) * math.Pow(o.Multiplier, float64(attempt-1))
	if wait >= float64(o.MaxDelay) {
		return o.MaxDelay
	}
	return time.Duration(wait)
}

// retryable is false for cancellation and for API errors that would fail
// the same way again.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return true
}

// WithRetry calls op until it succeeds, fails with a non-retryable error, or
// has been tried opts.MaxAttempts times. The last error is wrapped in
// ErrMaxRetries.
func WithRetry(ctx context.Context, op func() error, opts RetryOptions) error {
	opts = opts.withDefaults()

	for attempt := 1; ; attempt++ {
		err := op()
		switch {
		case err == nil:
			return nil
		case !retryable(err):
			return err
		case attempt >= opts.MaxAttempts:
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		wait := opts.backoff(attempt, err)
		slog.Debug("Retrying FRED request", "attempt", attempt, "wait", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
