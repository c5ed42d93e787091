package woocommerce

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout for store requests
	DefaultTimeout = 30 * time.Second
	// DefaultPageSize is the largest page WooCommerce serves
	DefaultPageSize = 100
	// MaxBatchSize is the item limit of batch endpoints
	MaxBatchSize = 100
)

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	timeout    time.Duration
	pageSize   int
	retries    int
	userAgent  string
	httpClient *http.Client
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithPageSize sets the page size used when listing.
func WithPageSize(size int) Option {
	return func(o *clientOptions) {
		if size > 0 && size <= DefaultPageSize {
			o.pageSize = size
		}
	}
}

// WithRetries sets how many times failed requests are retried.
func WithRetries(retries int) Option {
	return func(o *clientOptions) {
		if retries >= 0 {
			o.retries = retries
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}
