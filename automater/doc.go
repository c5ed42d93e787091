// Package automater provides a client for the Automater.pl REST API.
//
// Automater.pl is a marketplace for digital goods (license keys, vouchers,
// gift codes). Every request sent to it is signed with the account's API
// secret, so this package does not expose raw HTTP access; callers use the
// typed operations instead.
//
// # Signing
//
// Before a request is sent its parameters are put into canonical form:
// any existing "sign" parameter is removed, keys are sorted, and parameters
// with empty values are dropped. The signature is the hex MD5 of the
// remaining values joined with "|", followed by "|" and the secret:
//
//	md5("v1|v2|...|vn|secret")
//
// The API key travels in the X-Api-Key header and the signature in
// X-Api-Sign.
//
// # Usage
//
//	client, err := automater.NewClient(apiKey, apiSecret, logger,
//		automater.WithTimeout(10*time.Second),
//		automater.WithRateLimit(5),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	products, err := client.AllProducts(ctx)
//
// # Error Handling
//
// Failures are reported as *APIError values which unwrap to one of the
// sentinel errors, so callers can branch with errors.Is:
//
//   - ErrUnauthorized: invalid API key or secret
//   - ErrNotFound: unknown product, cart or invalid parameters
//   - ErrTooManyRequests: the account hit the API rate limit
//   - ErrTimeout: the request deadline expired
package automater
