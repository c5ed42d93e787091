package automater

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid automater configuration")
	// ErrInvalidRequest indicates a request that cannot be sent as built
	ErrInvalidRequest = errors.New("invalid automater request")
	// ErrUnauthorized indicates authentication failure
	ErrUnauthorized = errors.New("unauthorized: invalid API key")
	// ErrNotFound indicates resource not found or invalid params
	ErrNotFound = errors.New("not found")
	// ErrTooManyRequests indicates the account exceeded the API rate limit
	ErrTooManyRequests = errors.New("too many requests")
	// ErrTimeout indicates the request did not complete in time
	ErrTimeout = errors.New("request timed out")
)

// APIError represents an error reported by the Automater API, either through
// the HTTP status or through the "code" field of the response body.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("automater API error: status %d, code %d: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the error onto the matching sentinel so errors.Is works.
func (e *APIError) Unwrap() error {
	switch e.kind() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	}
	return nil
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.kind() == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.kind() == http.StatusUnauthorized || e.kind() == http.StatusForbidden
}

// IsTooManyRequests checks if the error indicates rate limiting
func (e *APIError) IsTooManyRequests() bool {
	return e.kind() == http.StatusTooManyRequests
}

// kind prefers the HTTP status when it signals failure; otherwise the body
// code decides.
func (e *APIError) kind() int {
	if e.StatusCode >= 400 {
		return e.StatusCode
	}
	return e.Code
}
