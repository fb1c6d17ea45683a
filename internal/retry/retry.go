// Package retry wraps transient upstream calls with capped exponential
// backoff. The formatting pipeline itself never retries; this utility belongs
// to the fetch layer that invokes it.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 1 * time.Second
	defaultMaxDelay   = 60 * time.Second
)

// Config controls the retry loop. Zero values fall back to the defaults
// (3 attempts, 1s base delay, 60s cap). A nil Retryable treats every error
// as retryable.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Retryable  func(error) bool
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	return c
}

// MaxRetriesError reports an operation that failed on every attempt. It
// carries the last underlying failure as its cause.
type MaxRetriesError struct {
	Func     string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Func, e.Attempts, e.Err)
}

// Unwrap exposes the last underlying failure.
func (e *MaxRetriesError) Unwrap() error {
	return e.Err
}

// IsMaxRetries reports whether err is a retries-exhausted failure.
func IsMaxRetries(err error) bool {
	var target *MaxRetriesError
	return errors.As(err, &target)
}

// Retrier serializes attempts of a single logical operation; retries of the
// same call never overlap.
type Retrier struct {
	cfg    Config
	logger *slog.Logger
}

// New builds a Retrier. The logger may be nil.
func New(cfg Config, logger *slog.Logger) *Retrier {
	return &Retrier{cfg: cfg.withDefaults(), logger: logger}
}

// Do runs op up to MaxRetries times, sleeping min(BaseDelay*2^(k-2), MaxDelay)
// before attempt k. Non-retryable errors propagate immediately without
// consuming a retry; context cancellation interrupts the wait.
func (r *Retrier) Do(ctx context.Context, name string, op func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			delay := backoffDelay(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt)
			r.warn("retrying after backoff",
				"function", name,
				"attempt", attempt,
				"max_retries", r.cfg.MaxRetries,
				"delay", delay,
				"error", lastErr)

			select {
			case <-ctx.Done():
				return fmt.Errorf("retry %s cancelled: %w", name, ctx.Err())
			case <-time.After(delay):
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if r.cfg.Retryable != nil && !r.cfg.Retryable(lastErr) {
			return lastErr
		}
	}

	r.warn("retries exhausted",
		"function", name,
		"attempts", r.cfg.MaxRetries,
		"error", lastErr)

	return &MaxRetriesError{Func: name, Attempts: r.cfg.MaxRetries, Err: lastErr}
}

// backoffDelay computes the wait before attempt k (k >= 2).
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	delay := base << (attempt - 2)
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}

func (r *Retrier) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
