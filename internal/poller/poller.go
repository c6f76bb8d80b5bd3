package poller

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/polymarket-book/internal/connection"
)

// TokenSource provides the token ids to poll.
type TokenSource interface {
	TokenIDs() []string
}

// BookFetcher fetches one token's order book as raw JSON.
type BookFetcher interface {
	GetBook(ctx context.Context, tokenID string) ([]byte, error)
}

// Config holds poller configuration.
type Config struct {
	Interval    time.Duration // Poll interval; 0 disables the poller
	Concurrency int           // Max concurrent requests (default: 4)
	Timeout     time.Duration // Per-request timeout (default: 10s)
}

// DefaultConfig returns sensible defaults. The poller is disabled.
func DefaultConfig() Config {
	return Config{
		Interval:    0,
		Concurrency: 4,
		Timeout:     10 * time.Second,
	}
}

// Poller periodically fetches order book snapshots via the REST API.
type Poller struct {
	cfg     Config
	client  BookFetcher
	tokens  TokenSource
	out     connection.FrameSink
	logger  *slog.Logger
	now     func() time.Time
	cycles  atomic.Int64
	fetched atomic.Int64
}

// New creates a new Poller.
func New(cfg Config, client BookFetcher, tokens TokenSource, out connection.FrameSink, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Concurrency < 1 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Poller{
		cfg:    cfg,
		client: client,
		tokens: tokens,
		out:    out,
		logger: logger.With("component", "poller"),
		now:    time.Now,
	}
}

// Enabled reports whether the poller has a positive interval.
func (p *Poller) Enabled() bool {
	return p.cfg.Interval > 0
}

// Run polls immediately and then on every tick until ctx is cancelled.
// It returns nil at once when the poller is disabled.
func (p *Poller) Run(ctx context.Context) error {
	if !p.Enabled() {
		p.logger.Debug("snapshot poller disabled")
		return nil
	}

	p.logger.Info("snapshot poller started",
		"interval", p.cfg.Interval,
		"concurrency", p.cfg.Concurrency,
	)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.pollAll(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("snapshot poller stopped")
			return nil
		case <-ticker.C:
			p.pollAll(ctx)
		}
	}
}

// Cycles returns the number of completed poll cycles.
func (p *Poller) Cycles() int64 {
	return p.cycles.Load()
}

// Fetched returns the number of snapshots pushed to the frame queue.
func (p *Poller) Fetched() int64 {
	return p.fetched.Load()
}

// pollAll fetches books for all tokens with bounded concurrency.
func (p *Poller) pollAll(ctx context.Context) {
	start := time.Now()

	tokens := p.tokens.TokenIDs()
	if len(tokens) == 0 {
		p.logger.Debug("no tokens to poll")
		return
	}

	var fetched, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for _, tokenID := range tokens {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := p.pollToken(gctx, tokenID); err != nil {
				p.logger.Warn("failed to poll book",
					"token_id", tokenID,
					"err", err,
				)
				failed.Add(1)
				return nil
			}
			fetched.Add(1)
			return nil
		})
	}

	_ = g.Wait()

	p.cycles.Add(1)
	p.fetched.Add(fetched.Load())

	p.logger.Info("poll cycle complete",
		"tokens", len(tokens),
		"fetched", fetched.Load(),
		"errors", failed.Load(),
		"duration", time.Since(start),
	)
}

// pollToken fetches one book and forwards it as a REST-sourced frame.
func (p *Poller) pollToken(ctx context.Context, tokenID string) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	body, err := p.client.GetBook(ctx, tokenID)
	if err != nil {
		return err
	}

	p.out.Send(connection.RawMessage{
		Data:       body,
		Source:     connection.SourceREST,
		ReceivedAt: p.now(),
	})
	return nil
}
