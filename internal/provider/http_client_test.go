package provider

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearBackoff(t *testing.T) {
	base := 500 * time.Millisecond
	max := 10 * time.Second

	// attemptNum is zero-based, so waits grow base, 2*base, 3*base.
	assert.Equal(t, 500*time.Millisecond, linearBackoff(base, max, 0, nil))
	assert.Equal(t, 1000*time.Millisecond, linearBackoff(base, max, 1, nil))
	assert.Equal(t, 1500*time.Millisecond, linearBackoff(base, max, 2, nil))

	// Capped at max.
	assert.Equal(t, max, linearBackoff(base, max, 100, nil))
}

func TestCustomRetryPolicy(t *testing.T) {
	policy := customRetryPolicy()
	ctx := context.Background()

	retry, _ := policy(ctx, &http.Response{StatusCode: 429}, nil)
	assert.True(t, retry)

	retry, _ = policy(ctx, &http.Response{StatusCode: 500}, nil)
	assert.True(t, retry)

	retry, _ = policy(ctx, nil, assert.AnError)
	assert.True(t, retry)

	retry, _ = policy(ctx, &http.Response{StatusCode: 200}, nil)
	assert.False(t, retry)

	retry, _ = policy(ctx, &http.Response{StatusCode: 404}, nil)
	assert.False(t, retry)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	retry, err := policy(cancelled, &http.Response{StatusCode: 500}, nil)
	assert.False(t, retry)
	assert.Error(t, err)
}

func TestRateLimitedHTTPClient_ServerErrorsReturnFinalResponse(t *testing.T) {
	var calls atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	client := testHTTPClient()
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Retries exhausted, the final response comes back so callers can map
	// the status code.
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRateLimitedHTTPClient_CircuitBreaker(t *testing.T) {
	client := NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           200 * time.Millisecond,
		MaxRetries:        0,
		RetryBaseWait:     1 * time.Millisecond,
		RetryWaitMax:      2 * time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 2,
	}, testLogger())

	// An unroutable address fails every attempt.
	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), "http://127.0.0.1:1")
		require.Error(t, err)
	}

	_, err := client.Get(context.Background(), "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}
