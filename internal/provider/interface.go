// Package provider contains the per-upstream adapters that fetch odds data
// and map each provider's JSON shape into the canonical normalized schema.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/odds-aggregator/internal/normalize"
)

// Provider defines the interface for fetching odds data from an upstream
// source. A provider returning zero events is valid output, not an error.
type Provider interface {
	// FetchOdds retrieves normalized events with bookmaker quotes for a
	// sport. limit <= 0 means no cap.
	FetchOdds(ctx context.Context, sportKey string, limit int) ([]normalize.Event, error)

	// FetchSports retrieves the provider's sport/league catalog.
	FetchSports(ctx context.Context) ([]normalize.Sport, error)

	// Name returns the stable name of the provider
	Name() string

	// IsEnabled returns whether this provider is currently enabled
	IsEnabled() bool
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "disabled"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrMissingCredential    = errors.New("missing API credential")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrProviderDisabled     = errors.New("provider disabled")
)

// maxErrorBody bounds how much of an upstream response body is kept on an
// error for diagnostics.
const maxErrorBody = 512

// Error represents a failure from a provider operation, carrying the HTTP
// status and a truncated raw body for diagnostics.
type Error struct {
	Source  string // provider name
	Code    string // error code (e.g. "rate_limit_exceeded")
	Status  int    // HTTP status, 0 if the request never completed
	Message string
	Body    string // truncated upstream response body
	Err     error  // underlying error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Source, e.Code, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new provider error
func NewError(source, code, message string, err error) *Error {
	return &Error{Source: source, Code: code, Message: message, Err: err}
}

// NewHTTPError creates a provider error for a non-2xx upstream response,
// truncating the body.
func NewHTTPError(source, code string, status int, body []byte) *Error {
	truncated := string(body)
	if len(truncated) > maxErrorBody {
		truncated = truncated[:maxErrorBody]
	}
	return &Error{
		Source:  source,
		Code:    code,
		Status:  status,
		Message: fmt.Sprintf("unexpected status %d", status),
		Body:    truncated,
	}
}

// IsAuthError reports whether err is an authentication failure. Auth
// failures are fatal for that provider until reconfigured.
func IsAuthError(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeAuthenticationFailed
	}
	return errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrMissingCredential)
}

// IsRateLimitError reports whether err is an exhausted-retries rate limit.
func IsRateLimitError(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeRateLimitExceeded
	}
	return errors.Is(err, ErrRateLimitExceeded)
}
