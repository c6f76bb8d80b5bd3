package router

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/polymarket-book/internal/book"
)

// Event is one decoded element of a market-channel frame. It is one of
// Snapshot, Delta or Ignored.
type Event interface {
	isEvent()
}

// Snapshot replaces the levels of the sides present in the frame.
type Snapshot struct {
	AssetID   string
	Bids      []book.Level
	Asks      []book.Level
	HasBids   bool
	HasAsks   bool
	Timestamp time.Time // zero when the frame carried none
}

// Delta carries best-price updates for one or more instruments.
type Delta struct {
	Changes   []Change
	Timestamp time.Time
}

// Change is a best-price update for one instrument. Invalid fields were
// absent or unparsable.
type Change struct {
	AssetID string
	BestBid decimal.NullDecimal
	BestAsk decimal.NullDecimal
}

// Ignored is any element that is neither a snapshot nor a delta
// (last_trade_price, tick_size_change, acks).
type Ignored struct {
	EventType string
}

func (Snapshot) isEvent() {}
func (Delta) isEvent()    {}
func (Ignored) isEvent()  {}

// Replace converts the snapshot into a store operation.
func (s Snapshot) Replace() book.Replace {
	return book.Replace{
		AssetID: s.AssetID,
		Bids:    s.Bids,
		Asks:    s.Asks,
		HasBids: s.HasBids,
		HasAsks: s.HasAsks,
	}
}

// Update converts the change into a store operation.
func (c Change) Update() book.BestUpdate {
	return book.BestUpdate{
		AssetID: c.AssetID,
		BestBid: c.BestBid,
		BestAsk: c.BestAsk,
	}
}

// Stats contains router statistics.
type Stats struct {
	FramesReceived   int64
	FramesChanged    int64
	ParseErrors      int64
	SnapshotsApplied int64
	DeltasApplied    int64
	Untracked        int64
	NoChange         int64 // Deltas for tracked books without a best price
	Ignored          int64
	Queue            QueueStats
}
