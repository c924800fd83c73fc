package httputil

import (
	"context"
	"errors"
	"time"
)

// maxRetryDelay caps the doubling backoff between attempts.
const maxRetryDelay = 10 * time.Second

// RetryableError marks a transient failure, such as a reset connection or a
// 5xx response, that [Retry] attempts again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn until it succeeds, fails permanently or has been called
// attempts times (at least once). The wait starts at delay and doubles up to
// maxRetryDelay. The final transient error is returned without its
// [RetryableError] wrapper; ctx.Err() is returned if ctx ends during a wait.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	for n := 1; ; n++ {
		err := fn()
		var transient *RetryableError
		if err == nil || !errors.As(err, &transient) {
			return err
		}
		if n >= attempts {
			return transient.Err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(2*delay, maxRetryDelay)
	}
}
