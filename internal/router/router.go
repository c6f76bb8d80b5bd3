package router

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rickgao/polymarket-book/internal/book"
	"github.com/rickgao/polymarket-book/internal/connection"
	"github.com/rickgao/polymarket-book/internal/metrics"
	"github.com/rickgao/polymarket-book/internal/status"
)

// Router decodes queued frames and applies them to the book store. It is
// the store's only writer; readers use Books and Changed.
type Router struct {
	logger *slog.Logger
	input  *Queue[connection.RawMessage]
	store  *book.Store
	board  *status.Board
	now    func() time.Time

	books   atomic.Pointer[book.Snapshot]
	changed chan struct{}

	// Stats
	received  atomic.Int64
	changedN  atomic.Int64
	parseErrs atomic.Int64
	snapshots atomic.Int64
	deltas    atomic.Int64
	untracked atomic.Int64
	noChange  atomic.Int64
	ignored   atomic.Int64
}

// NewRouter creates a router reading from input and writing to store.
// board receives the update time of every frame that changed a book.
func NewRouter(input *Queue[connection.RawMessage], store *book.Store, board *status.Board, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		logger:  logger.With("component", "router"),
		input:   input,
		store:   store,
		board:   board,
		now:     time.Now,
		changed: make(chan struct{}, 1),
	}
	r.books.Store(store.Freeze())
	return r
}

// Run routes frames until ctx is done or the input queue is closed.
func (r *Router) Run(ctx context.Context) error {
	r.logger.Info("message router started", "instruments", len(r.store.AssetIDs()))
	defer r.logger.Info("message router stopped")

	for {
		raw, ok := r.input.Receive(ctx)
		if !ok {
			return nil
		}
		r.route(raw)
		metrics.QueueDepth.Set(float64(r.input.Len()))
	}
}

// Books returns the latest published state. The result is immutable.
func (r *Router) Books() *book.Snapshot {
	return r.books.Load()
}

// Changed receives a value after one or more frames changed a book.
// Signals coalesce; a reader always sees the latest state via Books.
func (r *Router) Changed() <-chan struct{} {
	return r.changed
}

// Stats returns current statistics.
func (r *Router) Stats() Stats {
	return Stats{
		FramesReceived:   r.received.Load(),
		FramesChanged:    r.changedN.Load(),
		ParseErrors:      r.parseErrs.Load(),
		SnapshotsApplied: r.snapshots.Load(),
		DeltasApplied:    r.deltas.Load(),
		Untracked:        r.untracked.Load(),
		NoChange:         r.noChange.Load(),
		Ignored:          r.ignored.Load(),
		Queue:            r.input.Stats(),
	}
}

// route decodes and applies a single frame. Returns true if any tracked
// book changed.
func (r *Router) route(raw connection.RawMessage) bool {
	r.received.Add(1)
	metrics.FramesReceived.Inc()

	events, err := Decode(raw.Data)
	if err != nil {
		r.logger.Warn("dropping frame", "error", err, "source", raw.Source, "bytes", len(raw.Data))
		r.parseErrs.Add(1)
		metrics.DecodeErrors.Inc()
		return false
	}

	changed := false
	var stamp time.Time

	for _, ev := range events {
		switch e := ev.(type) {
		case Snapshot:
			if !r.store.ApplySnapshot(e.Replace()) {
				r.untracked.Add(1)
				metrics.EventsApplied.WithLabelValues("untracked").Inc()
				continue
			}
			r.snapshots.Add(1)
			metrics.EventsApplied.WithLabelValues("snapshot").Inc()
			changed, stamp = true, e.Timestamp

		case Delta:
			applied, tracked := false, false
			for _, c := range e.Changes {
				if r.store.Tracks(c.AssetID) {
					tracked = true
				}
				if r.store.ApplyDelta(c.Update()) {
					applied = true
				}
			}
			if !applied {
				if tracked {
					r.noChange.Add(1)
					metrics.EventsApplied.WithLabelValues("no_change").Inc()
				} else {
					r.untracked.Add(1)
					metrics.EventsApplied.WithLabelValues("untracked").Inc()
				}
				continue
			}
			r.deltas.Add(1)
			metrics.EventsApplied.WithLabelValues("delta").Inc()
			changed, stamp = true, e.Timestamp

		case Ignored:
			r.ignored.Add(1)
			metrics.EventsApplied.WithLabelValues("ignored").Inc()
			r.logger.Debug("skipping event", "event_type", e.EventType)
		}
	}

	if !changed {
		return false
	}

	if stamp.IsZero() {
		stamp = r.now()
	}
	r.changedN.Add(1)
	r.books.Store(r.store.Freeze())
	if r.board != nil {
		r.board.Set(status.Stamp(stamp))
	}

	select {
	case r.changed <- struct{}{}:
	default:
	}
	return true
}
