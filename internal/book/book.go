package book

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rickgao/polymarket-book/internal/price"
)

// Level is a single price level. Size is always > 0 inside a Side.
type Level struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// Side maps canonical price keys (price.Key) to levels.
type Side map[string]Level

// State is the book for one instrument.
type State struct {
	Bids    Side
	Asks    Side
	BestBid decimal.NullDecimal
	BestAsk decimal.NullDecimal
}

// Replace is a snapshot of one or both sides for an instrument.
// A side is only replaced when its Has flag is set.
type Replace struct {
	AssetID string
	Bids    []Level
	Asks    []Level
	HasBids bool
	HasAsks bool
}

// BestUpdate overwrites best prices for an instrument. Invalid fields are
// left untouched.
type BestUpdate struct {
	AssetID string
	BestBid decimal.NullDecimal
	BestAsk decimal.NullDecimal
}

// Options tune snapshot semantics.
type Options struct {
	// ClearBestOnEmpty clears the best price of a side that a snapshot
	// replaced with no levels. When false the previous value is kept.
	ClearBestOnEmpty bool
}

// Store holds the book state of every tracked instrument.
type Store struct {
	opts   Options
	states map[string]*State
	order  []string
}

// NewStore creates empty books for the given asset ids.
// Duplicate ids are tracked once.
func NewStore(assetIDs []string, opts Options) *Store {
	s := &Store{
		opts:   opts,
		states: make(map[string]*State, len(assetIDs)),
		order:  make([]string, 0, len(assetIDs)),
	}
	for _, id := range assetIDs {
		if _, ok := s.states[id]; ok {
			continue
		}
		s.states[id] = &State{Bids: Side{}, Asks: Side{}}
		s.order = append(s.order, id)
	}
	return s
}

// Tracks reports whether id has a book in the store.
func (s *Store) Tracks(id string) bool {
	_, ok := s.states[id]
	return ok
}

// AssetIDs returns tracked ids in subscription order.
func (s *Store) AssetIDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// ApplySnapshot replaces the sides present in r wholesale.
// Returns false if the instrument is not tracked.
func (s *Store) ApplySnapshot(r Replace) bool {
	st, ok := s.states[r.AssetID]
	if !ok {
		return false
	}

	if r.HasBids {
		st.Bids = buildSide(r.Bids)
		st.BestBid = s.recompute(st.BestBid, st.Bids, func(a, b decimal.Decimal) bool {
			return a.GreaterThan(b)
		})
	}
	if r.HasAsks {
		st.Asks = buildSide(r.Asks)
		st.BestAsk = s.recompute(st.BestAsk, st.Asks, func(a, b decimal.Decimal) bool {
			return a.LessThan(b)
		})
	}

	return true
}

// ApplyDelta overwrites best bid and/or ask. Levels are never modified.
// Returns true if any value was written.
func (s *Store) ApplyDelta(u BestUpdate) bool {
	st, ok := s.states[u.AssetID]
	if !ok {
		return false
	}

	changed := false
	if u.BestBid.Valid {
		st.BestBid = u.BestBid
		changed = true
	}
	if u.BestAsk.Valid {
		st.BestAsk = u.BestAsk
		changed = true
	}
	return changed
}

// View returns the read view for id truncated to depth levels per side.
func (s *Store) View(id string, depth int) (View, bool) {
	st, ok := s.states[id]
	if !ok {
		return View{}, false
	}
	return st.view(id, depth), true
}

// Freeze returns an immutable copy of the current state for readers.
func (s *Store) Freeze() *Snapshot {
	snap := &Snapshot{
		states: make(map[string]State, len(s.states)),
		order:  s.AssetIDs(),
	}
	for id, st := range s.states {
		snap.states[id] = *st
	}
	return snap
}

func (s *Store) recompute(prev decimal.NullDecimal, side Side, better func(a, b decimal.Decimal) bool) decimal.NullDecimal {
	if len(side) == 0 {
		if s.opts.ClearBestOnEmpty {
			return decimal.NullDecimal{}
		}
		return prev
	}

	var best decimal.Decimal
	first := true
	for _, l := range side {
		if first || better(l.Price, best) {
			best = l.Price
			first = false
		}
	}
	return decimal.NewNullDecimal(best)
}

// buildSide keys levels by canonical price, dropping non-positive sizes.
// Later entries win on key collision.
func buildSide(levels []Level) Side {
	side := make(Side, len(levels))
	for _, l := range levels {
		if !l.Size.IsPositive() {
			continue
		}
		side[price.Key(l.Price)] = Level{Price: price.Round(l.Price), Size: l.Size}
	}
	return side
}

// sorted returns the side's levels ordered by price.
func (sd Side) sorted(desc bool) []Level {
	out := make([]Level, 0, len(sd))
	for _, l := range sd {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].Price.GreaterThan(out[j].Price)
		}
		return out[i].Price.LessThan(out[j].Price)
	})
	return out
}
