package woocommerce

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client wraps the WooCommerce REST API
type Client struct {
	baseURL  string
	pageSize int
	rest     *resty.Client
	logger   zerolog.Logger
}

// NewClient creates a new WooCommerce client for the store at baseURL
func NewClient(baseURL, consumerKey, consumerSecret string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: store URL is required", ErrInvalidConfig)
	}
	if consumerKey == "" || consumerSecret == "" {
		return nil, fmt.Errorf("%w: consumer key and secret are required", ErrInvalidConfig)
	}

	o := clientOptions{
		timeout:   DefaultTimeout,
		pageSize:  DefaultPageSize,
		retries:   2,
		userAgent: "automater-sync",
	}
	for _, opt := range opts {
		opt(&o)
	}

	rest := resty.New()
	if o.httpClient != nil {
		rest = resty.NewWithClient(o.httpClient)
	}
	rest.
		SetBaseURL(baseURL+"/wp-json/wc/v3").
		SetBasicAuth(consumerKey, consumerSecret).
		SetTimeout(o.timeout).
		SetRetryCount(o.retries).
		AddRetryCondition(retryCondition).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", o.userAgent).
		SetLogger(restyLogger{logger: logger})

	return &Client{
		baseURL:  baseURL,
		pageSize: o.pageSize,
		rest:     rest,
		logger:   logger,
	}, nil
}

// retryCondition retries reads on 429 and 5xx. Writes such as order notes
// are retried only when the store certainly did not receive them.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil {
		return false
	}

	idempotent := isIdempotent(r.Request.Method)
	if err != nil {
		return idempotent || isDialError(err)
	}

	switch status := r.StatusCode(); {
	case status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return idempotent
	default:
		return false
	}
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// BaseURL returns the store URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TestConnection verifies the credentials with a minimal products query
func (c *Client) TestConnection(ctx context.Context) error {
	_, _, err := c.ListProducts(ctx, 1, 1)
	return err
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.rest.R().SetContext(ctx).SetError(&errorBody{})
}

// check converts a resty response into an error, if any
func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if !resp.IsError() {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}

// getAll walks a paginated collection using the X-WP-TotalPages header
func getAll[T any](ctx context.Context, c *Client, path string, query map[string]string) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		var items []T
		resp, err := c.request(ctx).
			SetQueryParams(query).
			SetQueryParam("page", strconv.Itoa(page)).
			SetQueryParam("per_page", strconv.Itoa(c.pageSize)).
			SetResult(&items).
			Get(path)
		if err := check(resp, err); err != nil {
			return nil, err
		}

		all = append(all, items...)

		totalPages, _ := strconv.Atoi(resp.Header().Get("X-WP-TotalPages"))
		if page >= totalPages || len(items) == 0 {
			break
		}
	}

	return all, nil
}

// restyLogger routes resty's internal logging through zerolog
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
