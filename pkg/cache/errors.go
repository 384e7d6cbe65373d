package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is returned by GetJSON when no usable entry exists.
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnavailable is returned when a remote cache cannot be reached.
	ErrUnavailable = errors.New("cache unavailable")
)

// transientError marks a failure worth retrying.
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as retryable. It returns nil for a nil err.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

// IsTransient reports whether err, or anything it wraps, was marked with
// [Transient].
func IsTransient(err error) bool {
	var te transientError
	return errors.As(err, &te)
}

// Backoff retries transient failures with doubling delays.
type Backoff struct {
	Attempts int           // total tries, including the first
	Delay    time.Duration // wait before the second try
	MaxDelay time.Duration // upper bound for a single wait; 0 means none
}

// DefaultBackoff is used by the Redis cache.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 100 * time.Millisecond, MaxDelay: time.Second}

// Do calls fn until it succeeds, returns a non-transient error, or the
// attempts run out. Waiting honors ctx.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if b.MaxDelay > 0 && delay > b.MaxDelay {
			delay = b.MaxDelay
		}
	}
	return err
}
