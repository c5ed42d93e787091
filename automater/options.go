package automater

import (
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Automater.pl REST endpoint
	DefaultBaseURL = "https://automater.pl/rest/api"
	// DefaultTimeout matches the timeout of the official SDK
	DefaultTimeout = 10 * time.Second
	// DefaultRateLimit is the number of requests per second sent to the API
	DefaultRateLimit = 5.0
	// DefaultMaxRetries for 429 and 5xx responses
	DefaultMaxRetries = 3
	// DefaultPageSize used when walking paginated listings
	DefaultPageSize = 100
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL      string
	timeout      time.Duration
	maxRetries   int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	rateLimit    float64
	pageSize     int
	httpClient   *http.Client
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:      DefaultBaseURL,
		timeout:      DefaultTimeout,
		maxRetries:   DefaultMaxRetries,
		retryWaitMin: 1 * time.Second,
		retryWaitMax: 30 * time.Second,
		rateLimit:    DefaultRateLimit,
		pageSize:     DefaultPageSize,
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(retries int) Option {
	return func(o *clientOptions) {
		if retries >= 0 {
			o.maxRetries = retries
		}
	}
}

// WithRetryWait sets the backoff bounds between retry attempts.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(o *clientOptions) {
		o.retryWaitMin = minWait
		o.retryWaitMax = maxWait
	}
}

// WithRateLimit sets the client side rate limit in requests per second.
// Zero or a negative value disables limiting.
func WithRateLimit(rps float64) Option {
	return func(o *clientOptions) {
		o.rateLimit = rps
	}
}

// WithPageSize sets the page size used by AllProducts.
func WithPageSize(size int) Option {
	return func(o *clientOptions) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithHTTPClient sets a custom underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}
