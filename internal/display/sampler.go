package display

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/rickgao/polymarket-book/internal/book"
	"github.com/rickgao/polymarket-book/internal/model"
	"github.com/rickgao/polymarket-book/internal/status"
)

// BookSource publishes immutable book snapshots.
type BookSource interface {
	Books() *book.Snapshot
	Changed() <-chan struct{}
}

// SamplerConfig holds sampler configuration.
type SamplerConfig struct {
	Title    string
	Question string
	Depth    int           // Levels per side
	Interval time.Duration // Refresh tick (default: 100ms)
}

// Sampler turns published snapshots into frames for its sinks.
type Sampler struct {
	cfg         SamplerConfig
	source      BookSource
	board       *status.Board
	instruments []model.Instrument
	sinks       []Sink
	logger      *slog.Logger
	now         func() time.Time
}

// NewSampler creates a sampler. Instruments are displayed ordered by their
// lower-cased label.
func NewSampler(cfg SamplerConfig, source BookSource, board *status.Board, instruments []model.Instrument, logger *slog.Logger, sinks ...Sink) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 100 * time.Millisecond
	}
	if cfg.Depth < 1 {
		cfg.Depth = 1
	}
	if strings.TrimSpace(cfg.Question) == strings.TrimSpace(cfg.Title) {
		cfg.Question = ""
	}

	ordered := slices.Clone(instruments)
	slices.SortStableFunc(ordered, func(a, b model.Instrument) int {
		return strings.Compare(a.SortKey(), b.SortKey())
	})

	return &Sampler{
		cfg:         cfg,
		source:      source,
		board:       board,
		instruments: ordered,
		sinks:       sinks,
		logger:      logger.With("component", "sampler"),
		now:         time.Now,
	}
}

// Sample builds a frame from the latest snapshot and status line.
func (s *Sampler) Sample() Frame {
	snap := s.source.Books()
	line := s.board.Get()

	f := Frame{
		Title:     s.cfg.Title,
		Question:  s.cfg.Question,
		Status:    line.Text,
		UpdatedAt: line.PostedAt,
		SampledAt: s.now(),
		Books:     make([]Book, 0, len(s.instruments)),
	}
	for _, inst := range s.instruments {
		v, ok := snap.View(inst.TokenID, s.cfg.Depth)
		if !ok {
			v = book.View{AssetID: inst.TokenID}
		}
		f.Books = append(f.Books, Book{Instrument: inst, View: v})
	}
	return f
}

// Run renders an initial frame and then re-renders on each tick when the
// books or the status line changed since the last render. It returns nil
// when ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	last := s.render(ctx)
	dirty := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.source.Changed():
			dirty = true
		case <-ticker.C:
			if !dirty && s.board.Get().PostedAt.Equal(last) {
				continue
			}
			last = s.render(ctx)
			dirty = false
		}
	}
}

// render pushes one frame to all sinks and returns the status time it saw.
func (s *Sampler) render(ctx context.Context) time.Time {
	f := s.Sample()
	for _, sink := range s.sinks {
		if err := sink.Render(ctx, f); err != nil {
			s.logger.Warn("sink render failed", "err", err)
		}
	}
	return f.UpdatedAt
}
