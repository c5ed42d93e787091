package woocommerce

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// TaxonomyPrefix is prepended by WordPress to global attribute slugs
const TaxonomyPrefix = "pa_"

// FindAttribute looks up a global attribute by slug, with or without the
// taxonomy prefix. It returns ErrNotFound when the store has no such
// attribute.
func (c *Client) FindAttribute(ctx context.Context, slug string) (*Attribute, error) {
	var attributes []Attribute
	resp, err := c.request(ctx).
		SetResult(&attributes).
		Get("/products/attributes")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}

	want := strings.TrimPrefix(slug, TaxonomyPrefix)
	for i := range attributes {
		if strings.TrimPrefix(attributes[i].Slug, TaxonomyPrefix) == want {
			return &attributes[i], nil
		}
	}
	return nil, fmt.Errorf("attribute %s: %w", slug, ErrNotFound)
}

// CreateAttribute creates a global attribute
func (c *Client) CreateAttribute(ctx context.Context, attribute Attribute) (*Attribute, error) {
	var created Attribute
	resp, err := c.request(ctx).
		SetBody(attribute).
		SetResult(&created).
		Post("/products/attributes")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("failed to create attribute %s: %w", attribute.Slug, err)
	}

	c.logger.Info().
		Int64("id", created.ID).
		Str("slug", created.Slug).
		Msg("Created product attribute")
	return &created, nil
}

// ListTerms retrieves every term of a global attribute
func (c *Client) ListTerms(ctx context.Context, attributeID int64) ([]Term, error) {
	path := "/products/attributes/" + strconv.FormatInt(attributeID, 10) + "/terms"
	terms, err := getAll[Term](ctx, c, path, map[string]string{"hide_empty": "false"})
	if err != nil {
		return nil, fmt.Errorf("failed to list terms of attribute %d: %w", attributeID, err)
	}
	return terms, nil
}

// CreateTerm adds a term to a global attribute
func (c *Client) CreateTerm(ctx context.Context, attributeID int64, term Term) (*Term, error) {
	var created Term
	resp, err := c.request(ctx).
		SetPathParam("attr", strconv.FormatInt(attributeID, 10)).
		SetBody(term).
		SetResult(&created).
		Post("/products/attributes/{attr}/terms")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("failed to create term %s: %w", term.Slug, err)
	}
	return &created, nil
}

// DeleteTerm permanently removes a term
func (c *Client) DeleteTerm(ctx context.Context, attributeID, termID int64) error {
	resp, err := c.request(ctx).
		SetPathParam("attr", strconv.FormatInt(attributeID, 10)).
		SetPathParam("term", strconv.FormatInt(termID, 10)).
		SetQueryParam("force", "true").
		Delete("/products/attributes/{attr}/terms/{term}")
	if err := check(resp, err); err != nil {
		return fmt.Errorf("failed to delete term %d: %w", termID, err)
	}
	return nil
}
