package ratelimit

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// RateLimitedError is returned by an operation when the provider signalled
// a rate limit. HasHint is false when the response carried no wait value.
type RateLimitedError struct {
	RetryAfter time.Duration
	HasHint    bool
}

func (e *RateLimitedError) Error() string {
	if !e.HasHint {
		return "rate limited (no retry hint)"
	}
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// RateLimitExceededError reports that retries were exhausted while the
// provider kept rate limiting. LastWait is the most recent wait hint.
type RateLimitExceededError struct {
	Attempts int
	LastWait time.Duration
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts (last retry hint %s)", e.Attempts, e.LastWait)
}

// TransientNetworkError reports that a retryable non-rate-limit failure
// persisted through every attempt.
type TransientNetworkError struct {
	Attempts int
	Err      error
}

func (e *TransientNetworkError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientNetworkError) Unwrap() error {
	return e.Err
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or anything it wraps, was marked with
// Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// IsGiveUp reports whether err means the requester exhausted its retries.
func IsGiveUp(err error) bool {
	var exceeded *RateLimitExceededError
	var transient *TransientNetworkError
	return errors.As(err, &exceeded) || errors.As(err, &transient)
}
