package market

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rickgao/polymarket-book/internal/model"
)

// Selection errors.
var (
	ErrNoMarkets       = errors.New("no markets found in event")
	ErrMarketNotFound  = errors.New("no market found in event")
	ErrAmbiguousMarket = errors.New("event has multiple markets; pass --date-text or --market-slug")
	ErrNoInstruments   = errors.New("no clobTokenIds found for selected market")
)

// maxListedSlugs bounds the example slugs in an ambiguity error.
const maxListedSlugs = 8

// Selection picks one market of an event.
type Selection struct {
	MarketSlug string // exact slug, case-insensitive; wins over DateText
	DateText   string // substring of the market question, case-insensitive
}

// EventSlugFromURL extracts the slug following "/event/" in a Polymarket
// URL. Input without "/event/" is treated as a slug or path.
func EventSlugFromURL(rawURL string) string {
	part := rawURL
	if i := strings.Index(rawURL, "/event/"); i >= 0 {
		part = rawURL[i+len("/event/"):]
	}
	part = strings.Trim(part, "/")
	if i := strings.IndexByte(part, '?'); i >= 0 {
		part = part[:i]
	}
	return part
}

// SelectMarket applies sel to the markets of event. With no criteria the
// event must have exactly one market.
func SelectMarket(event model.Event, sel Selection) (model.Market, error) {
	if len(event.Markets) == 0 {
		return model.Market{}, ErrNoMarkets
	}

	if slug := strings.TrimSpace(sel.MarketSlug); slug != "" {
		needle := strings.ToLower(slug)
		for _, m := range event.Markets {
			if strings.ToLower(m.Slug) == needle {
				return m, nil
			}
		}
		return model.Market{}, fmt.Errorf("%w for market slug: %s", ErrMarketNotFound, sel.MarketSlug)
	}

	if sel.DateText != "" {
		needle := strings.ToLower(sel.DateText)
		for _, m := range event.Markets {
			if strings.Contains(strings.ToLower(m.Question), needle) {
				return m, nil
			}
		}
		return model.Market{}, fmt.Errorf("%w for date text: %s", ErrMarketNotFound, sel.DateText)
	}

	if len(event.Markets) == 1 {
		return event.Markets[0], nil
	}

	n := min(len(event.Markets), maxListedSlugs)
	slugs := make([]string, 0, n)
	for _, m := range event.Markets[:n] {
		slugs = append(slugs, m.Slug)
	}
	return model.Market{}, fmt.Errorf("%w. Example market slugs: %s", ErrAmbiguousMarket, strings.Join(slugs, ", "))
}

// Instruments pairs each token id with its outcome label. Tokens without a
// label are named token_<i>. The result keeps token order.
func Instruments(m model.Market) ([]model.Instrument, error) {
	if len(m.TokenIDs) == 0 {
		return nil, ErrNoInstruments
	}

	out := make([]model.Instrument, 0, len(m.TokenIDs))
	for i, id := range m.TokenIDs {
		label := fmt.Sprintf("token_%d", i)
		if i < len(m.Outcomes) {
			label = m.Outcomes[i]
		}
		out = append(out, model.Instrument{TokenID: id, Outcome: label})
	}
	return out, nil
}
