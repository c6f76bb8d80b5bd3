package api

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strings"
)

func (p ListMarketsParams) query() url.Values {
	query := url.Values{}
	setInt(query, "limit", p.Limit)
	setInt(query, "offset", p.Offset)
	setString(query, "order", p.Order)
	setBool(query, "ascending", p.Ascending)
	setBool(query, "active", p.Active)
	setBool(query, "closed", p.Closed)
	setBool(query, "archived", p.Archived)
	setString(query, "slug", p.Slug)
	setString(query, "tag_id", p.TagID)
	setString(query, "clob_token_ids", strings.Join(p.ClobTokenIDs, ","))
	setString(query, "condition_ids", strings.Join(p.ConditionIDs, ","))
	setString(query, "end_date_min", p.EndDateMin)
	setString(query, "end_date_max", p.EndDateMax)
	return query
}

// ListMarkets fetches one page of markets.
func (c *Client) ListMarkets(ctx context.Context, params ListMarketsParams) ([]Market, error) {
	var markets []Market
	if err := c.get(ctx, "/markets", params.query(), &markets); err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	return markets, nil
}

// GetMarketBySlug fetches a single market by slug.
func (c *Client) GetMarketBySlug(ctx context.Context, slug string) (*Market, error) {
	var market Market
	if err := c.get(ctx, "/markets/slug/"+url.PathEscape(slug), nil, &market); err != nil {
		return nil, fmt.Errorf("get market %s: %w", slug, err)
	}
	return &market, nil
}

// IterMarkets walks /markets with offset pagination starting at
// params.Offset. It stops after the first empty or short page.
func (c *Client) IterMarkets(ctx context.Context, pageSize int, params ListMarketsParams) iter.Seq2[Market, error] {
	return paginate(pageSize, params.Offset, func(limit, offset int) ([]Market, error) {
		p := params
		p.Limit, p.Offset = limit, offset
		return c.ListMarkets(ctx, p)
	})
}

// GetAllMarkets collects every market matching params.
func (c *Client) GetAllMarkets(ctx context.Context, params ListMarketsParams) ([]Market, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPaginationTimeout)
		defer cancel()
	}

	var all []Market
	for market, err := range c.IterMarkets(ctx, DefaultPageSize, params) {
		if err != nil {
			return nil, err
		}
		all = append(all, market)
	}
	return all, nil
}
