package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNetwork means a remote backend did not answer.
	ErrNetwork = errors.New("cache backend unreachable")

	// ErrInvalidURL means a cache location could not be parsed.
	ErrInvalidURL = errors.New("invalid cache url")
)

// RetryableError marks a transient backend failure. Only these are retried.
type RetryableError struct{ Err error }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or anything it wraps, is transient.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

const retryAttempts = 3

// backoff is the delay before the second attempt. Later delays double.
var backoff = 100 * time.Millisecond

// RetryWithBackoff runs fn until it succeeds, fails permanently, or has
// failed retryAttempts times. Cancelling ctx stops the wait between attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	err := fn()
	for attempt, delay := 1, backoff; attempt < retryAttempts && IsRetryable(err); attempt, delay = attempt+1, delay*2 {
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		err = fn()
	}
	return err
}
