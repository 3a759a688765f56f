package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrProviderUnavailable is returned when a decorator has no inner provider.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrNotFound is returned when the upstream has no record for the request.
	ErrNotFound = errors.New("not found")
)

const maxErrorBody = 512

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// UpstreamError is a non-2xx response or a transport failure from a provider.
// StatusCode is zero for transport failures.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       []byte
	Err        error
}

// NewStatusError builds an UpstreamError from a response status and body,
// truncating the body to keep logs bounded.
func NewStatusError(provider string, status int, body []byte) *UpstreamError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &UpstreamError{Provider: provider, StatusCode: status, Body: body}
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, strings.TrimSpace(string(e.Body)))
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// AsUpstreamError attempts to unwrap an error into an UpstreamError.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr, true
	}
	return nil, false
}

// HTTPStatus returns the upstream status to surface to clients, or 500.
func HTTPStatus(err error) int {
	if upErr, ok := AsUpstreamError(err); ok && upErr.StatusCode >= 400 {
		return upErr.StatusCode
	}
	if rlErr, ok := AsRateLimitError(err); ok && rlErr.StatusCode >= 400 {
		return rlErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Details returns the upstream body as JSON when it parses, the raw text when
// it does not, and the error message otherwise.
func Details(err error) any {
	if err == nil {
		return nil
	}
	if upErr, ok := AsUpstreamError(err); ok && len(upErr.Body) > 0 {
		if json.Valid(upErr.Body) {
			return json.RawMessage(upErr.Body)
		}
		return strings.TrimSpace(string(upErr.Body))
	}
	return err.Error()
}

// Retryable reports whether another attempt could succeed: transport failures,
// rate limits and 5xx responses. Client errors and cancellation are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrProviderUnavailable) {
		return false
	}
	if _, ok := AsRateLimitError(err); ok {
		return true
	}
	if upErr, ok := AsUpstreamError(err); ok {
		if upErr.StatusCode == 0 {
			return true
		}
		return upErr.StatusCode >= 500
	}
	return false
}
