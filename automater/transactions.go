package automater

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// CreateTransaction creates a cart for the given products
func (c *Client) CreateTransaction(ctx context.Context, req TransactionRequest) (*TransactionResponse, error) {
	if len(req.Products) == 0 {
		return nil, fmt.Errorf("%w: transaction has no products", ErrInvalidRequest)
	}

	var response TransactionResponse
	if err := c.doRequest(ctx, http.MethodPost, "/transactions", req.values(), &response); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	c.logger.Debug().
		Str("cart_id", response.CartID.String()).
		Int("products", len(req.Products)).
		Msg("Created Automater transaction")

	return &response, nil
}

// CreatePayment marks a cart as paid
func (c *Client) CreatePayment(ctx context.Context, cartID ID, req PaymentRequest) (*PaymentResponse, error) {
	if cartID == "" {
		return nil, fmt.Errorf("%w: cart id is required", ErrInvalidRequest)
	}

	var response PaymentResponse
	endpoint := "/transactions/" + url.PathEscape(cartID.String()) + "/payment"
	if err := c.doRequest(ctx, http.MethodPost, endpoint, req.values(), &response); err != nil {
		return nil, fmt.Errorf("failed to post payment for cart %s: %w", cartID, err)
	}
	if response.CartID == "" {
		response.CartID = cartID
	}
	return &response, nil
}

func (r TransactionRequest) values() url.Values {
	params := url.Values{}
	for i, p := range r.Products {
		prefix := fmt.Sprintf("products[%d]", i)
		params.Set(prefix+"[id]", p.ID.String())
		params.Set(prefix+"[quantity]", strconv.Itoa(p.Quantity))
		params.Set(prefix+"[price]", formatAmount(p.Price))
		params.Set(prefix+"[currency]", p.Currency)
	}
	params.Set("email", r.Email)
	params.Set("phone", r.Phone)
	params.Set("language", string(r.Language))
	if r.SendStatusEmail {
		params.Set("send_status_email", "1")
	}
	params.Set("custom", r.Custom)
	return params
}

func (r PaymentRequest) values() url.Values {
	params := url.Values{}
	params.Set("payment_id", r.PaymentID)
	params.Set("amount", formatAmount(r.Amount))
	params.Set("currency", r.Currency)
	params.Set("description", r.Description)
	params.Set("custom", r.Custom)
	return params
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
