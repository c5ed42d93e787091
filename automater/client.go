package automater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client represents an Automater.pl API client
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	pageSize   int
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewClient creates a new Automater client
func NewClient(apiKey, apiSecret string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	apiSecret = strings.TrimSpace(apiSecret)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}
	if apiSecret == "" {
		return nil, fmt.Errorf("%w: API secret is required", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = o.maxRetries
	retryClient.RetryWaitMin = o.retryWaitMin
	retryClient.RetryWaitMax = o.retryWaitMax
	retryClient.Logger = retryLogger{logger: logger}
	retryClient.CheckRetry = checkRetry
	// Hand the last response back so status mapping still applies.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	limiter := rate.NewLimiter(rate.Inf, 1)
	if o.rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.rateLimit), 1)
	}

	return &Client{
		baseURL:    o.baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		pageSize:   o.pageSize,
		httpClient: retryClient,
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// TestConnection verifies the credentials by fetching a single product
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.ListProducts(ctx, ProductsRequest{Page: 1, Limit: 1})
	return err
}

// doRequest signs and performs a request, decoding the body into out
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		// Wait fails early when the deadline would pass before a token frees up
		if _, ok := ctx.Deadline(); ok && !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("%s %s: %w", method, endpoint, ErrTimeout)
		}
		return fmt.Errorf("rate limiter: %w", err)
	}

	signed := Canonicalize(params)
	requestURL := c.baseURL + endpoint

	var body io.Reader
	if method == http.MethodGet {
		if len(signed) > 0 {
			requestURL += "?" + signed.Encode()
		}
	} else {
		body = strings.NewReader(signed.Encode())
	}

	req, err := retryablehttp.NewRequestWithContext(context.WithValue(ctx, methodKey{}, method), method, requestURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Api-Sign", Sign(signed, c.apiSecret))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Msg("Making Automater API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		if isTimeout(err) {
			return fmt.Errorf("%s %s: %w", method, endpoint, ErrTimeout)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return decodeResponse(resp.StatusCode, raw, out)
}

// decodeResponse turns a response into either out or an *APIError
func decodeResponse(status int, raw []byte, out any) error {
	var env envelope
	jsonErr := json.Unmarshal(raw, &env)

	if status < 200 || status >= 300 {
		apiErr := &APIError{StatusCode: status, Message: env.Message}
		if env.Code != nil {
			apiErr.Code = int(*env.Code)
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	if jsonErr != nil {
		return &APIError{StatusCode: status, Code: http.StatusInternalServerError, Message: "undefined result"}
	}

	if env.Code != nil && int(*env.Code) != http.StatusOK {
		return &APIError{StatusCode: status, Code: int(*env.Code), Message: env.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger
type retryLogger struct {
	logger zerolog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Trace().Fields(keysAndValues).Msg(msg)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
