package market

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rickgao/polymarket-book/internal/api"
	"github.com/rickgao/polymarket-book/internal/model"
)

// Catalog is the part of the catalog client the registry needs.
type Catalog interface {
	FindEventBySlug(ctx context.Context, slug string) (*api.Event, error)
}

// Registry is the fixed set of instruments for one selected market.
// It is immutable after construction.
type Registry struct {
	event       model.Event
	market      model.Market
	instruments []model.Instrument
	byToken     map[string]model.Instrument
}

// NewRegistry builds a registry for market m of event.
func NewRegistry(event model.Event, m model.Market) (*Registry, error) {
	instruments, err := Instruments(m)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		event:       event,
		market:      m,
		instruments: instruments,
		byToken:     make(map[string]model.Instrument, len(instruments)),
	}
	for _, inst := range instruments {
		if _, dup := r.byToken[inst.TokenID]; !dup {
			r.byToken[inst.TokenID] = inst
		}
	}
	return r, nil
}

// Resolve looks up the event behind eventURL and selects one market.
func Resolve(ctx context.Context, catalog Catalog, eventURL string, sel Selection, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	slug := EventSlugFromURL(eventURL)
	if slug == "" {
		return nil, fmt.Errorf("no event slug in %q", eventURL)
	}

	apiEvent, err := catalog.FindEventBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("resolve event: %w", err)
	}

	event := EventFromAPI(*apiEvent)
	m, err := SelectMarket(event, sel)
	if err != nil {
		return nil, err
	}

	r, err := NewRegistry(event, m)
	if err != nil {
		return nil, err
	}

	logger.Info("market resolved",
		"event", event.Slug,
		"market", m.Slug,
		"instruments", len(r.instruments),
	)
	return r, nil
}

// Event returns the selected event.
func (r *Registry) Event() model.Event {
	return r.event
}

// Market returns the selected market.
func (r *Registry) Market() model.Market {
	return r.market
}

// TokenIDs returns the token ids in catalog order, for subscribing.
func (r *Registry) TokenIDs() []string {
	ids := make([]string, 0, len(r.instruments))
	for _, inst := range r.instruments {
		ids = append(ids, inst.TokenID)
	}
	return ids
}

// Instruments returns instruments ordered by label, case-insensitively.
func (r *Registry) Instruments() []model.Instrument {
	out := make([]model.Instrument, len(r.instruments))
	copy(out, r.instruments)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortKey() < out[j].SortKey()
	})
	return out
}

// Instrument looks up an instrument by token id.
func (r *Registry) Instrument(tokenID string) (model.Instrument, bool) {
	inst, ok := r.byToken[tokenID]
	return inst, ok
}
