package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ck_test" || pass != "cs_test" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"code":    "woocommerce_rest_cannot_view",
				"message": "Sorry, you cannot list resources.",
			})
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/", "ck_test", "cs_test", zerolog.Nop(), append([]Option{WithRetries(0)}, opts...)...)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("", "ck", "cs", zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewClient("https://shop.example.com", "", "cs", zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	client, err := NewClient(" https://shop.example.com/ ", "ck", "cs", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", client.BaseURL())
}

func TestAllProductsFollowsTotalPages(t *testing.T) {
	var calls atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("X-WP-TotalPages", "2")
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": page*10 + 1, "name": "A", "manage_stock": true},
			{"id": page*10 + 2, "name": "B"},
		})
	}, WithPageSize(2))

	products, err := client.AllProducts(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, calls.Load())
	require.Len(t, products, 4)
	assert.Equal(t, int64(11), products[0].ID)
	assert.True(t, products[0].ManageStock)
	assert.Equal(t, int64(22), products[3].ID)
}

func TestErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"code":    "woocommerce_rest_shop_order_invalid_id",
			"message": "Invalid ID.",
		})
	})

	_, err := client.GetOrder(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "woocommerce_rest_shop_order_invalid_id", apiErr.Code)
	assert.Equal(t, "Invalid ID.", apiErr.Message)
}

func TestUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": "woocommerce_rest_cannot_view", "message": "nope"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "ck_bad", "cs_bad", zerolog.Nop(), WithRetries(0))
	require.NoError(t, err)

	err = client.TestConnection(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateStockSplitsBatches(t *testing.T) {
	var sizes []int

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products/batch", r.URL.Path)

		var body struct {
			Update []StockUpdate `json:"update"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sizes = append(sizes, len(body.Update))
		writeJSON(w, http.StatusOK, map[string]any{"update": body.Update})
	})

	updates := make([]StockUpdate, 150)
	for i := range updates {
		updates[i] = StockUpdate{ID: int64(i + 1), StockQuantity: i, StockStatus: StockStatusInStock}
	}

	require.NoError(t, client.UpdateStock(context.Background(), updates))
	assert.Equal(t, []int{100, 50}, sizes)
}

func TestFindAttribute(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "Color", "slug": "pa_color"},
			{"id": 7, "name": "Automater Product", "slug": "pa_automater_product"},
		})
	})

	attr, err := client.FindAttribute(context.Background(), "automater_product")
	require.NoError(t, err)
	assert.Equal(t, int64(7), attr.ID)

	_, err = client.FindAttribute(context.Background(), "size")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTermLifecycle(t *testing.T) {
	var deleted string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/wp-json/wc/v3/products/attributes/7/terms":
			assert.Equal(t, "false", r.URL.Query().Get("hide_empty"))
			w.Header().Set("X-WP-TotalPages", "1")
			writeJSON(w, http.StatusOK, []Term{{ID: 3, Name: "Game key", Slug: "101"}})
		case r.Method == http.MethodPost && r.URL.Path == "/wp-json/wc/v3/products/attributes/7/terms":
			var term Term
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&term))
			term.ID = 4
			writeJSON(w, http.StatusCreated, term)
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path + "?" + r.URL.RawQuery
			writeJSON(w, http.StatusOK, map[string]any{"id": 3})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	ctx := context.Background()

	terms, err := client.ListTerms(ctx, 7)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "101", terms[0].Slug)

	created, err := client.CreateTerm(ctx, 7, Term{Name: "Voucher", Slug: "202"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)

	require.NoError(t, client.DeleteTerm(ctx, 7, 3))
	assert.Equal(t, "/wp-json/wc/v3/products/attributes/7/terms/3?force=true", deleted)
}

func TestOrderNotesAndMeta(t *testing.T) {
	var note, metaKey string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wc/v3/orders/5/notes":
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			note, _ = body["note"].(string)
			assert.Equal(t, false, body["customer_note"])
			writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
		case "/wp-json/wc/v3/orders/5":
			assert.Equal(t, http.MethodPut, r.Method)
			var body struct {
				MetaData []MetaData `json:"meta_data"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if assert.Len(t, body.MetaData, 1) {
				metaKey = body.MetaData[0].Key
			}
			writeJSON(w, http.StatusOK, map[string]any{"id": 5})
		}
	})

	ctx := context.Background()
	require.NoError(t, client.AddOrderNote(ctx, 5, "Automater.pl codes:<br>done"))
	require.NoError(t, client.UpdateOrderMeta(ctx, 5, "automater_cart_id", "555"))

	assert.Equal(t, "Automater.pl codes:<br>done", note)
	assert.Equal(t, "automater_cart_id", metaKey)
}

func TestOrderHelpers(t *testing.T) {
	order := Order{
		ID: 12,
		LineItems: []LineItem{
			{ID: 1, Subtotal: "19.99"},
			{ID: 2, Subtotal: "40.01"},
			{ID: 3},
		},
		MetaData: []MetaData{
			{Key: "automater_cart_id", Value: float64(555)},
			{Key: "automater_paid", Value: "yes"},
		},
	}

	subtotal, err := order.Subtotal()
	require.NoError(t, err)
	assert.InDelta(t, 60.0, subtotal, 0.0001)

	assert.Equal(t, "555", order.Meta("automater_cart_id"))
	assert.Equal(t, "yes", order.Meta("automater_paid"))
	assert.Equal(t, "", order.Meta("missing"))
	assert.Equal(t, "12", order.DisplayNumber())

	order.LineItems = append(order.LineItems, LineItem{ID: 4, Subtotal: "n/a"})
	_, err = order.Subtotal()
	assert.Error(t, err)
}

func TestRetries(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		call      func(c *Client) error
		wantCalls int32
		wantErr   bool
	}{
		{
			name:   "note not resent after server error",
			status: http.StatusBadGateway,
			call: func(c *Client) error {
				return c.AddOrderNote(context.Background(), 5, "note")
			},
			wantCalls: 1,
			wantErr:   true,
		},
		{
			name:   "note resent after rate limit",
			status: http.StatusTooManyRequests,
			call: func(c *Client) error {
				return c.AddOrderNote(context.Background(), 5, "note")
			},
			wantCalls: 2,
		},
		{
			name:   "order read retried after server error",
			status: http.StatusBadGateway,
			call: func(c *Client) error {
				_, err := c.GetOrder(context.Background(), 5)
				return err
			},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					writeJSON(w, tt.status, map[string]any{"code": "error", "message": "try later"})
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"id": 5})
			}, WithRetries(2))

			err := tt.call(client)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}
