package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrEncoding is returned when caller data cannot be serialized into a request body
	ErrEncoding = errors.New("request encoding failed")

	// ErrInvalidRequest is returned when the endpoint address cannot be constructed
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTransport is returned when no HTTP response was obtained
	ErrTransport = errors.New("transport failure")

	// ErrServer is returned for non-2xx responses other than 429
	ErrServer = errors.New("server returned an error")

	// ErrRateLimited is returned when the backend answers 429
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrDecoding is returned when a 2xx body does not match the expected schema
	ErrDecoding = errors.New("response decoding failed")

	// ErrCandidateNotFound is returned when a selection key matches no candidate
	ErrCandidateNotFound = errors.New("candidate not found")
)

// EncodingError reports caller-supplied data that could not become a request body.
type EncodingError struct {
	Reason string
	Cause  error
}

func (e *EncodingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", ErrEncoding, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%v: %s", ErrEncoding, e.Reason)
}

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }
func (e *EncodingError) Unwrap() error        { return e.Cause }

// InvalidRequestError reports a malformed endpoint address. Unreachable with valid configuration.
type InvalidRequestError struct {
	Reason string
	Cause  error
}

func (e *InvalidRequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", ErrInvalidRequest, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidRequest, e.Reason)
}

func (e *InvalidRequestError) Is(target error) bool { return target == ErrInvalidRequest }
func (e *InvalidRequestError) Unwrap() error        { return e.Cause }

// TransportError reports a connection, DNS or timeout failure before any response arrived.
type TransportError struct {
	Method string
	URL    string
	Cause  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v: %s %s: %v", ErrTransport, e.Method, e.URL, e.Cause)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
func (e *TransportError) Unwrap() error        { return e.Cause }

// Timeout reports whether the failure was the transport's own bounded wait expiring.
func (e *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Cause, &t) && t.Timeout()
}

// ServerError is a non-2xx response decoded into a best-effort message.
type ServerError struct {
	StatusCode int
	Message    string
	Envelope   ErrorEnvelope
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", ErrServer, e.StatusCode, e.Message)
}

func (e *ServerError) Is(target error) bool { return target == ErrServer }

// Retryable reports whether the caller may retry; only 5xx responses are.
func (e *ServerError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// RateLimitError is a 429 response. RetryAfterSeconds is nil when the backend sent no hint.
type RateLimitError struct {
	Message           string
	RetryAfterSeconds *int
	Envelope          ErrorEnvelope
}

func (e *RateLimitError) Error() string {
	if e.RetryAfterSeconds != nil {
		return fmt.Sprintf("%v: %s (retry after %ds)", ErrRateLimited, e.Message, *e.RetryAfterSeconds)
	}
	return fmt.Sprintf("%v: %s", ErrRateLimited, e.Message)
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// RetryAfter returns the backend's hint as a duration, if any.
func (e *RateLimitError) RetryAfter() (time.Duration, bool) {
	if e.RetryAfterSeconds == nil {
		return 0, false
	}
	return time.Duration(*e.RetryAfterSeconds) * time.Second, true
}

// DecodingError is a 2xx response whose body violates the success schema.
type DecodingError struct {
	Endpoint string
	Detail   string
	Cause    error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrDecoding, e.Endpoint, e.Detail)
}

func (e *DecodingError) Is(target error) bool { return target == ErrDecoding }
func (e *DecodingError) Unwrap() error        { return e.Cause }
