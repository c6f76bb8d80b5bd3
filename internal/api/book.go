package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetBook fetches the CLOB order book for one token. The body is returned
// as-is; it has the same shape as a market-channel book event.
func (c *Client) GetBook(ctx context.Context, tokenID string) ([]byte, error) {
	query := url.Values{}
	query.Set("token_id", tokenID)

	body, err := c.doWithRetry(ctx, http.MethodGet, "/book", query)
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", tokenID, err)
	}
	return body, nil
}
