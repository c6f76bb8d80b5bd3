package book

import (
	"github.com/shopspring/decimal"

	"github.com/rickgao/polymarket-book/internal/price"
)

// View is the read model consumed by display sinks.
type View struct {
	AssetID string
	Bids    []Level // Descending by price
	Asks    []Level // Ascending by price
	BestBid decimal.NullDecimal
	BestAsk decimal.NullDecimal
	Spread  decimal.NullDecimal // Set only when both bests exist and ask >= bid
	Mid     decimal.NullDecimal
}

// Snapshot is a frozen copy of a Store, safe to share between goroutines.
type Snapshot struct {
	states map[string]State
	order  []string
}

// View returns the view for id truncated to depth levels per side.
func (s *Snapshot) View(id string, depth int) (View, bool) {
	if s == nil {
		return View{}, false
	}
	st, ok := s.states[id]
	if !ok {
		return View{}, false
	}
	return st.view(id, depth), true
}

// AssetIDs returns the tracked ids in subscription order.
func (s *Snapshot) AssetIDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (st *State) view(id string, depth int) View {
	v := View{
		AssetID: id,
		Bids:    truncate(st.Bids.sorted(true), depth),
		Asks:    truncate(st.Asks.sorted(false), depth),
		BestBid: st.BestBid,
		BestAsk: st.BestAsk,
	}

	if st.BestBid.Valid && st.BestAsk.Valid && st.BestAsk.Decimal.GreaterThanOrEqual(st.BestBid.Decimal) {
		v.Spread = decimal.NewNullDecimal(price.Spread(st.BestBid.Decimal, st.BestAsk.Decimal))
		v.Mid = decimal.NewNullDecimal(price.Mid(st.BestBid.Decimal, st.BestAsk.Decimal))
	}

	return v
}

// truncate limits levels to depth. depth <= 0 keeps everything.
func truncate(levels []Level, depth int) []Level {
	if depth > 0 && len(levels) > depth {
		return levels[:depth]
	}
	return levels
}
