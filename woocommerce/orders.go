package woocommerce

import (
	"context"
	"fmt"
	"strconv"
)

// GetOrder retrieves a single order
func (c *Client) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var order Order
	resp, err := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&order).
		Get("/orders/{id}")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &order, nil
}

// UpdateOrderMeta sets a single metadata key on an order
func (c *Client) UpdateOrderMeta(ctx context.Context, id int64, key, value string) error {
	body := map[string]any{
		"meta_data": []MetaData{{Key: key, Value: value}},
	}
	resp, err := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetBody(body).
		Put("/orders/{id}")
	if err := check(resp, err); err != nil {
		return fmt.Errorf("failed to update meta %s of order %d: %w", key, id, err)
	}
	return nil
}

// AddOrderNote adds a private note to an order
func (c *Client) AddOrderNote(ctx context.Context, id int64, note string) error {
	body := map[string]any{
		"note":          note,
		"customer_note": false,
	}
	resp, err := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetBody(body).
		Post("/orders/{id}/notes")
	if err := check(resp, err); err != nil {
		return fmt.Errorf("failed to add note to order %d: %w", id, err)
	}
	return nil
}
