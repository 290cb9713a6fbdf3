package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/DanielChahine0/Intern-Compass/internal/core/queue"
)

func TestClassifyRateLimit(t *testing.T) {
	gerr := &googleapi.Error{Code: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"5"}}}

	err := classifyProviderError(fmt.Errorf("call: %w", gerr))
	var rl *queue.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 5*time.Second, rl.RetryAfter)
}

func TestClassifyRateLimitWithoutHint(t *testing.T) {
	err := classifyProviderError(&googleapi.Error{Code: 429, Header: http.Header{}})
	var rl *queue.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, time.Duration(0), rl.RetryAfter)
}

func TestClassifyClientError(t *testing.T) {
	err := classifyProviderError(&googleapi.Error{Code: 400, Header: http.Header{}})
	var ce *queue.ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 400, ce.StatusCode)
}

func TestClassifyServerErrorStaysTransient(t *testing.T) {
	gerr := &googleapi.Error{Code: 503, Header: http.Header{}}
	err := classifyProviderError(gerr)
	var rl *queue.RateLimitError
	var ce *queue.ClientError
	assert.False(t, errors.As(err, &rl))
	assert.False(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, error(gerr))
}

func TestClassifyNonHTTPError(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Equal(t, plain, classifyProviderError(plain))
	assert.NoError(t, classifyProviderError(nil))
}
