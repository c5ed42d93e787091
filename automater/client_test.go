package automater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "0123456789abcdef0123456789abcdef"
	testSecret = "fedcba9876543210fedcba9876543210"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{
		WithBaseURL(server.URL),
		WithRateLimit(0),
		WithRetryWait(time.Millisecond, 5*time.Millisecond),
	}, opts...)

	client, err := NewClient(testKey, testSecret, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

// assertSigned checks the headers a signed request must carry
func assertSigned(t *testing.T, r *http.Request) {
	t.Helper()
	assert.NoError(t, r.ParseForm())

	params := r.URL.Query()
	if r.Method != http.MethodGet {
		params = r.PostForm
	}

	assert.Equal(t, testKey, r.Header.Get("X-Api-Key"))
	assert.Equal(t, Sign(params, testSecret), r.Header.Get("X-Api-Sign"))
	for key, values := range params {
		for _, v := range values {
			assert.False(t, isEmpty(v), "empty parameter %s was sent", key)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		secret  string
		wantErr bool
		errMsg  string
	}{
		{name: "valid config", key: testKey, secret: testSecret},
		{name: "missing key", key: "", secret: testSecret, wantErr: true, errMsg: "API key is required"},
		{name: "blank secret", key: testKey, secret: "  ", wantErr: true, errMsg: "API secret is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.key, tt.secret, zerolog.Nop())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultBaseURL, client.baseURL)
			assert.Equal(t, DefaultPageSize, client.pageSize)
		})
	}
}

func TestAllProductsWalksPages(t *testing.T) {
	var calls atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assertSigned(t, r)
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "shop", r.URL.Query().Get("type"))
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, map[string]any{
			"code":        200,
			"count":       5,
			"pages_count": 3,
			"page":        page,
			"limit":       2,
			"data": []map[string]any{
				{"id": page*10 + 1, "name": fmt.Sprintf("Product %d", page*10+1)},
				{"id": fmt.Sprintf("%d", page*10+2), "name": "String ID"},
			},
		})
	}, WithPageSize(2))

	products, err := client.AllProducts(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 3, calls.Load())
	require.Len(t, products, 6)
	assert.Equal(t, ID("11"), products[0].ID)
	assert.Equal(t, ID("12"), products[1].ID)
	assert.Equal(t, ID("32"), products[5].ID)
}

func TestAllProductsEmptyAccount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "pages_count": 0})
	})

	products, err := client.AllProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		code     int
	}{
		{name: "unauthorized", status: 401, body: `{"code":401,"message":"bad key"}`, sentinel: ErrUnauthorized},
		{name: "forbidden", status: 403, body: `{}`, sentinel: ErrUnauthorized},
		{name: "not found", status: 404, body: `{"message":"no product"}`, sentinel: ErrNotFound},
		{name: "rate limited", status: 429, body: `{"message":"slow down"}`, sentinel: ErrTooManyRequests},
		{name: "body code not found", status: 200, body: `{"code":"404","message":"invalid params"}`, sentinel: ErrNotFound},
		{name: "server error", status: 500, body: `oops`, code: 0},
		{name: "undecodable body", status: 200, body: `{`, code: 500},
		{name: "body code generic", status: 200, body: `{"code":400,"message":"bad"}`, code: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, WithMaxRetries(0))

			_, err := client.ProductDetails(context.Background(), "42")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)

			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
				return
			}
			assert.Equal(t, tt.code, apiErr.Code)
			assert.NotErrorIs(t, err, ErrUnauthorized)
			assert.NotErrorIs(t, err, ErrNotFound)
			assert.NotErrorIs(t, err, ErrTooManyRequests)
		})
	}
}

func TestRetriesRateLimitedRequests(t *testing.T) {
	var calls atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"message": "slow down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 42, "available_codes": 7})
	}, WithMaxRetries(2))

	count, err := client.AvailableCodes(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.EqualValues(t, 2, calls.Load())
}

func TestTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]any{})
	}, WithTimeout(20*time.Millisecond), WithMaxRetries(0))

	_, err := client.ProductDetails(context.Background(), "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCreateTransaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		assertSigned(t, r)

		assert.Equal(t, "101", r.PostForm.Get("products[0][id]"))
		assert.Equal(t, "3", r.PostForm.Get("products[0][quantity]"))
		assert.Equal(t, "19.99", r.PostForm.Get("products[0][price]"))
		assert.Equal(t, "PLN", r.PostForm.Get("products[0][currency]"))
		assert.Equal(t, "buyer@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "1", r.PostForm.Get("send_status_email"))
		assert.Equal(t, "pl", r.PostForm.Get("language"))
		_, hasPhone := r.PostForm["phone"]
		assert.False(t, hasPhone)

		writeJSON(w, http.StatusOK, map[string]any{"code": 200, "cart_id": 555, "transaction_ids": []int{1, 2}})
	})

	resp, err := client.CreateTransaction(context.Background(), TransactionRequest{
		Products: []TransactionProduct{
			{ID: "101", Quantity: 3, Price: 19.99, Currency: "PLN"},
		},
		Email:           "buyer@example.com",
		Language:        LanguagePL,
		SendStatusEmail: true,
		Custom:          "Order from Shop, id: #7",
	})
	require.NoError(t, err)
	assert.Equal(t, ID("555"), resp.CartID)
	assert.Equal(t, []ID{"1", "2"}, resp.TransactionIDs)
}

func TestCreateTransactionRequiresProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.CreateTransaction(context.Background(), TransactionRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreatePayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/555/payment", r.URL.Path)
		assertSigned(t, r)
		assert.Equal(t, "1001", r.PostForm.Get("payment_id"))
		assert.Equal(t, "59.97", r.PostForm.Get("amount"))
		assert.Equal(t, "PLN", r.PostForm.Get("currency"))
		assert.Equal(t, "Bank transfer", r.PostForm.Get("description"))

		writeJSON(w, http.StatusOK, map[string]any{"code": 200, "payment_id": "1001"})
	})

	resp, err := client.CreatePayment(context.Background(), "555", PaymentRequest{
		PaymentID:   "1001",
		Amount:      59.97,
		Currency:    "PLN",
		Description: "Bank transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, ID("555"), resp.CartID)
	assert.Equal(t, "1001", resp.PaymentID)
}

func TestAddCodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/databases/9/codes", r.URL.Path)
		assertSigned(t, r)
		assert.Equal(t, `["AAA-1","BBB-2"]`, r.PostForm.Get("codes"))
		writeJSON(w, http.StatusOK, map[string]any{"added": 2})
	})

	resp, err := client.AddCodes(context.Background(), "9", []string{"AAA-1", "BBB-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Added)
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LanguagePL, ParseLanguage("pl_PL"))
	assert.Equal(t, LanguagePL, ParseLanguage("PL"))
	assert.Equal(t, LanguageEN, ParseLanguage("en_US"))
	assert.Equal(t, LanguageEN, ParseLanguage("de"))
	assert.Equal(t, LanguageEN, ParseLanguage(""))
}
