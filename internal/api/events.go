package api

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
)

// ErrEventNotFound is returned when a slug lookup matches no event.
var ErrEventNotFound = errors.New("event not found")

func (p ListEventsParams) query() url.Values {
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
	return query
}

// ListEvents fetches one page of events.
func (c *Client) ListEvents(ctx context.Context, params ListEventsParams) ([]Event, error) {
	var events []Event
	if err := c.get(ctx, "/events", params.query(), &events); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetEventBySlug fetches a single event by slug.
func (c *Client) GetEventBySlug(ctx context.Context, slug string) (*Event, error) {
	var event Event
	if err := c.get(ctx, "/events/slug/"+url.PathEscape(slug), nil, &event); err != nil {
		return nil, fmt.Errorf("get event %s: %w", slug, err)
	}
	return &event, nil
}

// FindEventBySlug looks an event up through the list endpoint, which also
// returns events the slug route does not.
func (c *Client) FindEventBySlug(ctx context.Context, slug string) (*Event, error) {
	events, err := c.ListEvents(ctx, ListEventsParams{Slug: slug, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w for slug: %s", ErrEventNotFound, slug)
	}
	return &events[0], nil
}

// IterEvents walks /events with offset pagination starting at
// params.Offset. It stops after the first empty or short page.
func (c *Client) IterEvents(ctx context.Context, pageSize int, params ListEventsParams) iter.Seq2[Event, error] {
	return paginate(pageSize, params.Offset, func(limit, offset int) ([]Event, error) {
		p := params
		p.Limit, p.Offset = limit, offset
		return c.ListEvents(ctx, p)
	})
}

// GetAllEvents collects every event matching params.
// Uses DefaultPaginationTimeout if the context has no deadline.
func (c *Client) GetAllEvents(ctx context.Context, params ListEventsParams) ([]Event, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultPaginationTimeout)
		defer cancel()
	}

	var all []Event
	for event, err := range c.IterEvents(ctx, DefaultPageSize, params) {
		if err != nil {
			return nil, err
		}
		all = append(all, event)
	}
	return all, nil
}
