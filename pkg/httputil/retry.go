package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient failure (connection error, 5xx) that
// [Policy.Retry] attempts again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped in a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy says how often a failed request is attempted again.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPolicy makes 3 attempts, waiting 1s then 2s.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Delay: time.Second}
}

// Retry calls fn until it succeeds, returns an error not wrapped in
// [RetryableError], or p.Attempts calls were made. The delay doubles after
// each failure. Cancelling ctx during a wait returns ctx.Err().
func (p Policy) Retry(ctx context.Context, fn func() error) error {
	attempts, delay := max(p.Attempts, 1), p.Delay
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
