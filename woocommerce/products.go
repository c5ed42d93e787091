package woocommerce

import (
	"context"
	"fmt"
	"strconv"
)

// ListProducts retrieves one page of products and the total page count
func (c *Client) ListProducts(ctx context.Context, page, perPage int) ([]Product, int, error) {
	var products []Product
	resp, err := c.request(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("per_page", strconv.Itoa(perPage)).
		SetResult(&products).
		Get("/products")
	if err := check(resp, err); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	totalPages, _ := strconv.Atoi(resp.Header().Get("X-WP-TotalPages"))
	return products, totalPages, nil
}

// AllProducts retrieves every product in the store
func (c *Client) AllProducts(ctx context.Context) ([]Product, error) {
	products, err := getAll[Product](ctx, c, "/products", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	c.logger.Debug().Msgf("Retrieved %d products from WooCommerce", len(products))
	return products, nil
}

// GetProduct retrieves a single product
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	resp, err := c.request(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&product).
		Get("/products/{id}")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

// UpdateStock writes stock fields using the batch endpoint
func (c *Client) UpdateStock(ctx context.Context, updates []StockUpdate) error {
	for start := 0; start < len(updates); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(updates))

		resp, err := c.request(ctx).
			SetBody(map[string]any{"update": updates[start:end]}).
			Post("/products/batch")
		if err := check(resp, err); err != nil {
			return fmt.Errorf("failed to update stock of %d products: %w", end-start, err)
		}

		c.logger.Debug().
			Int("from", start).
			Int("to", end).
			Msg("Updated product stock batch")
	}
	return nil
}
