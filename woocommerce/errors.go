package woocommerce

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid woocommerce configuration")
	// ErrUnauthorized indicates the consumer key or secret was rejected
	ErrUnauthorized = errors.New("unauthorized: invalid consumer key")
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
)

// APIError represents a WooCommerce REST error
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("woocommerce API error: status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("woocommerce API error: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status onto the package sentinels
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// errorBody is the JSON error shape of the WordPress REST API
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
