package api

import (
	"context"
	"fmt"
	"net/url"
)

// ListTags fetches one page of tags.
func (c *Client) ListTags(ctx context.Context, params ListTagsParams) ([]Tag, error) {
	query := url.Values{}
	setInt(query, "limit", params.Limit)
	setInt(query, "offset", params.Offset)

	var tags []Tag
	if err := c.get(ctx, "/tags", query, &tags); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// ListSports fetches sports metadata.
func (c *Client) ListSports(ctx context.Context) ([]Sport, error) {
	var sports []Sport
	if err := c.get(ctx, "/sports", nil, &sports); err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	return sports, nil
}
