package queue

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by New for unusable queue parameters.
var ErrInvalidConfig = errors.New("invalid queue configuration")

// ErrClosed is returned for requests still waiting when the queue shuts down.
var ErrClosed = errors.New("request queue closed")

// QueueFullError is the backpressure signal: the pending queue is at capacity
// and the request was rejected without being enqueued. EstimatedWait gives the
// caller a human-readable retry hint.
type QueueFullError struct {
	QueueLength   int
	EstimatedWait time.Duration
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("request queue is full (%d waiting); try again in about %s",
		e.QueueLength, e.EstimatedWait.Round(time.Second))
}

// RateLimitError marks a provider 429. RetryAfter carries the provider's
// suggested delay and is honored verbatim for the next retry of the request.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("provider rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// ClientError marks a non-retryable provider 4xx; retrying cannot succeed, so
// the queue fails these immediately.
type ClientError struct {
	StatusCode int
	Err        error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("provider rejected request (status %d): %v", e.StatusCode, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

// ProviderError is the terminal failure after all retries are exhausted.
type ProviderError struct {
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider call failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
