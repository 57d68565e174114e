package provider

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// testHTTPClient builds a client with fast retries and no effective rate
// limit so tests run quickly.
func testHTTPClient() *RateLimitedHTTPClient {
	return NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        2,
		RetryBaseWait:     1 * time.Millisecond,
		RetryWaitMax:      10 * time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 100,
	}, testLogger())
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}
