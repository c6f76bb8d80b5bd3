package market

import (
	"github.com/rickgao/polymarket-book/internal/api"
	"github.com/rickgao/polymarket-book/internal/model"
)

// EventFromAPI converts a catalog event.
func EventFromAPI(e api.Event) model.Event {
	markets := make([]model.Market, 0, len(e.Markets))
	for _, m := range e.Markets {
		markets = append(markets, MarketFromAPI(m))
	}
	return model.Event{
		ID:      string(e.ID),
		Slug:    e.Slug,
		Title:   e.Title,
		Markets: markets,
	}
}

// MarketFromAPI converts a catalog market.
func MarketFromAPI(m api.Market) model.Market {
	return model.Market{
		ID:       string(m.ID),
		Slug:     m.Slug,
		Question: m.Question,
		Outcomes: append([]string(nil), m.Outcomes...),
		TokenIDs: append([]string(nil), m.ClobTokenIDs...),
		Active:   m.Active,
		Closed:   m.Closed,
	}
}
