package stemformatics

import (
	"fmt"
)

// ErrorCode classifies upstream failures for the API surface.
type ErrorCode string

const (
	// ErrCodeUpstreamStatus indicates the Stemformatics API answered
	// with a non-2xx status.
	ErrCodeUpstreamStatus ErrorCode = "UPSTREAM_STATUS"
	// ErrCodeUpstreamUnreachable indicates a transport-level failure.
	ErrCodeUpstreamUnreachable ErrorCode = "UPSTREAM_UNREACHABLE"
	// ErrCodeInvalidResponse indicates an unparseable upstream body.
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	// ErrCodeCanceled indicates the request context ended first.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// APIError is a structured upstream error. The cache layer neither
// produces nor suppresses these; they pass straight through to the
// caller.
type APIError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// UpstreamStatus creates an error for a non-2xx upstream response.
func UpstreamStatus(status int, body string) *APIError {
	return &APIError{
		Code:       ErrCodeUpstreamStatus,
		Message:    fmt.Sprintf("upstream returned status %d: %s", status, body),
		StatusCode: status,
	}
}

// UpstreamUnreachable creates an error for a failed network call.
func UpstreamUnreachable(cause error) *APIError {
	return &APIError{Code: ErrCodeUpstreamUnreachable, Message: "upstream request failed", Cause: cause}
}

// InvalidResponse creates an error for an undecodable upstream body.
func InvalidResponse(cause error) *APIError {
	return &APIError{Code: ErrCodeInvalidResponse, Message: "failed to decode upstream response", Cause: cause}
}

// Canceled creates an error for a context cancellation.
func Canceled(cause error) *APIError {
	return &APIError{Code: ErrCodeCanceled, Message: "request canceled", Cause: cause}
}

// IsCode checks if an error is an APIError with the given code.
func IsCode(err error, code ErrorCode) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Code == code
	}
	return false
}
