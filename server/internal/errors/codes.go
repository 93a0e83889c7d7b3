package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents a specific error type for gateway request handling.
type ErrorCode string

const (
	// ErrCodeUnknownTool indicates the requested tool does not exist.
	ErrCodeUnknownTool ErrorCode = "UNKNOWN_TOOL"
	// ErrCodeUnknownResource indicates the resource URI matched no template.
	ErrCodeUnknownResource ErrorCode = "UNKNOWN_RESOURCE"
	// ErrCodeInvalidArguments indicates invalid input parameters.
	ErrCodeInvalidArguments ErrorCode = "INVALID_ARGUMENTS"
	// ErrCodeRateLimited indicates the client exceeded the request limit.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeUpstream indicates the upstream API call failed.
	ErrCodeUpstream ErrorCode = "UPSTREAM_ERROR"
)

// RequestError represents a structured error for gateway operations.
type RequestError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code onto a response status.
func (e *RequestError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeUnknownTool:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// Convenience constructors for common error types.

// UnknownTool creates an unknown tool error.
func UnknownTool(name string) *RequestError {
	return &RequestError{Code: ErrCodeUnknownTool, Message: fmt.Sprintf("unknown tool: %s", name)}
}

// UnknownResource creates an unknown resource error.
func UnknownResource(uri string) *RequestError {
	return &RequestError{Code: ErrCodeUnknownResource, Message: fmt.Sprintf("unknown resource uri: %s", uri)}
}

// InvalidArguments creates an invalid arguments error.
func InvalidArguments(msg string, cause error) *RequestError {
	return &RequestError{Code: ErrCodeInvalidArguments, Message: msg, Cause: cause}
}

// RateLimited creates a rate limited error.
func RateLimited() *RequestError {
	return &RequestError{Code: ErrCodeRateLimited, Message: "rate limit exceeded"}
}

// Upstream wraps an upstream API failure.
func Upstream(cause error) *RequestError {
	return &RequestError{Code: ErrCodeUpstream, Message: "upstream request failed", Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if reqErr, ok := err.(*RequestError); ok {
		return reqErr.Code == code
	}
	return false
}
