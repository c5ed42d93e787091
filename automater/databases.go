package automater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListDatabases retrieves a single page of code databases
func (c *Client) ListDatabases(ctx context.Context, page, limit int) (*DatabasesResponse, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var response DatabasesResponse
	if err := c.doRequest(ctx, http.MethodGet, "/databases", params, &response); err != nil {
		return nil, fmt.Errorf("failed to get databases: %w", err)
	}
	return &response, nil
}

// AddCodes uploads codes into a database
func (c *Client) AddCodes(ctx context.Context, databaseID ID, codes []string) (*CodesResponse, error) {
	if databaseID == "" {
		return nil, fmt.Errorf("%w: database id is required", ErrInvalidRequest)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: no codes given", ErrInvalidRequest)
	}

	encoded, err := json.Marshal(codes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode codes: %w", err)
	}

	params := url.Values{}
	params.Set("codes", string(encoded))

	var response CodesResponse
	endpoint := "/databases/" + url.PathEscape(databaseID.String()) + "/codes"
	if err := c.doRequest(ctx, http.MethodPost, endpoint, params, &response); err != nil {
		return nil, fmt.Errorf("failed to add codes to database %s: %w", databaseID, err)
	}
	return &response, nil
}
