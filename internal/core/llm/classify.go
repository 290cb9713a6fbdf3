package llm

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/DanielChahine0/Intern-Compass/internal/core/queue"
)

// classifyProviderError maps Gemini HTTP errors onto the queue's retry
// taxonomy: 429 with its Retry-After hint becomes a RateLimitError, any other
// 4xx a non-retryable ClientError, everything else stays transient.
func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch {
	case gerr.Code == http.StatusTooManyRequests:
		return &queue.RateLimitError{RetryAfter: retryAfterHint(gerr), Err: err}
	case gerr.Code >= 400 && gerr.Code < 500:
		return &queue.ClientError{StatusCode: gerr.Code, Err: err}
	}
	return err
}

// retryAfterHint reads the provider's Retry-After header, which may be either
// a delay in seconds or an HTTP date.
func retryAfterHint(gerr *googleapi.Error) time.Duration {
	v := gerr.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
