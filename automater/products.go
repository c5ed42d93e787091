package automater

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListProducts retrieves a single page of products
func (c *Client) ListProducts(ctx context.Context, req ProductsRequest) (*ProductsResponse, error) {
	params := url.Values{}
	params.Set("type", string(req.Type))
	params.Set("status", string(req.Status))
	params.Set("page", strconv.Itoa(req.Page))
	params.Set("limit", strconv.Itoa(req.Limit))

	var response ProductsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/products", params, &response); err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return &response, nil
}

// AllProducts retrieves every active shop product, walking all pages
func (c *Client) AllProducts(ctx context.Context) ([]Product, error) {
	var all []Product

	for page := 1; ; page++ {
		response, err := c.ListProducts(ctx, ProductsRequest{
			Type:   TypeShop,
			Status: StatusActive,
			Page:   page,
			Limit:  c.pageSize,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, response.Data...)

		c.logger.Debug().
			Int("page", page).
			Int("pages", response.PagesCount).
			Int("count", len(response.Data)).
			Int("total", len(all)).
			Msg("Retrieved products from Automater")

		if page >= response.PagesCount {
			break
		}
	}

	return all, nil
}

// ProductDetails retrieves a single product including its code counter
func (c *Client) ProductDetails(ctx context.Context, id ID) (*Product, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidRequest)
	}

	var product Product
	endpoint := "/products/" + url.PathEscape(id.String())
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &product); err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}

// AvailableCodes returns the number of codes left for a product
func (c *Client) AvailableCodes(ctx context.Context, id ID) (int, error) {
	product, err := c.ProductDetails(ctx, id)
	if err != nil {
		return 0, err
	}
	return product.AvailableCodes, nil
}
