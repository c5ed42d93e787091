package automater

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

type methodKey struct{}

// checkRetry applies the default retry policy to reads. Writes create carts,
// payments and codes, so they are only retried when the server certainly did
// not act on them: a 429 answer or a connection that was never established.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	method, _ := ctx.Value(methodKey{}).(string)
	if isIdempotent(method) {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	if err != nil {
		return isDialError(err), nil
	}
	return resp.StatusCode == http.StatusTooManyRequests, nil
}

func isIdempotent(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
