package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/polymarket-book/internal/metrics"
	"github.com/rickgao/polymarket-book/internal/status"
)

// FrameSink receives every frame read by a Session. Send must not block.
type FrameSink interface {
	Send(msg RawMessage) bool
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClientFactory replaces the WebSocket client constructor.
func WithClientFactory(f ClientFactory) SessionOption {
	return func(s *Session) {
		s.newClient = f
	}
}

// WithSleep replaces the backoff wait. sleep must return ctx.Err() when ctx
// is done before d elapses.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) SessionOption {
	return func(s *Session) {
		s.sleep = sleep
	}
}

// WithClock replaces the clock used for status timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// Session keeps one market-channel subscription alive for the lifetime of
// its context: Connecting -> Streaming -> Backoff -> Connecting ...
type Session struct {
	cfg     SessionConfig
	sub     Subscription
	subMsg  []byte
	out     FrameSink
	board   *status.Board
	logger  *slog.Logger
	backoff *Backoff

	newClient ClientFactory
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time

	state    atomic.Int32
	attempts atomic.Int64
	frames   atomic.Int64
}

// NewSession creates a session for sub. It fails with ErrEmptySubscription
// before anything is dialed when sub has no asset ids.
func NewSession(cfg SessionConfig, sub Subscription, out FrameSink, board *status.Board, logger *slog.Logger, opts ...SessionOption) (*Session, error) {
	msg, err := sub.Marshal()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		cfg:       cfg,
		sub:       sub,
		subMsg:    msg,
		out:       out,
		board:     board,
		logger:    logger.With("component", "session"),
		backoff:   NewBackoff(cfg.ReconnectBaseDelay, cfg.ReconnectMaxDelay),
		newClient: NewClient,
		sleep:     sleepContext,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// State returns the current state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Attempts returns the number of connection attempts so far.
func (s *Session) Attempts() int64 {
	return s.attempts.Load()
}

// Frames returns the number of frames forwarded to the sink.
func (s *Session) Frames() int64 {
	return s.frames.Load()
}

// Run connects and streams until ctx is done, reconnecting after every
// transport failure. It returns nil on cancellation.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session started",
		"url", s.cfg.Client.URL,
		"instruments", len(s.sub.AssetIDs),
	)
	defer s.logger.Info("session stopped")

	for {
		err := s.stream(ctx)
		if ctx.Err() != nil {
			return nil
		}

		delay := s.backoff.Next()
		s.setState(StateBackoff)
		metrics.Reconnects.Inc()
		metrics.BackoffSeconds.Set(delay.Seconds())

		s.logger.Warn("feed disconnected", "error", err, "retry_in", delay)
		s.post(fmt.Sprintf("feed disconnected (%v); reconnecting in %.1fs at %s",
			err, delay.Seconds(), status.Stamp(s.now())))

		if err := s.sleep(ctx, delay); err != nil {
			return nil
		}
	}
}

// stream runs one connection attempt. It always returns a non-nil error;
// the client is closed on every path.
func (s *Session) stream(ctx context.Context) error {
	attemptID := uuid.NewString()
	logger := s.logger.With("attempt", attemptID)
	s.attempts.Add(1)

	s.setState(StateConnecting)
	s.post("connecting to " + s.cfg.Client.URL)

	c := s.newClient(s.cfg.Client, logger)
	defer c.Close()

	if err := c.Connect(ctx); err != nil {
		return &TransportError{Op: "dial", Err: err}
	}
	if err := c.Send(s.subMsg); err != nil {
		return &TransportError{Op: "subscribe", Err: err}
	}

	s.backoff.Reset()
	s.setState(StateStreaming)
	s.post(fmt.Sprintf("subscribed to %d instruments at %s", len(s.sub.AssetIDs), status.Stamp(s.now())))
	logger.Info("subscribed", "instruments", len(s.sub.AssetIDs))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-c.Messages():
			s.forward(msg, attemptID)

		case err := <-c.Errors():
			s.drain(c, attemptID)
			return err
		}
	}
}

func (s *Session) forward(msg TimestampedMessage, attemptID string) {
	s.frames.Add(1)
	s.out.Send(RawMessage{
		Data:       msg.Data,
		Source:     SourceWS,
		AttemptID:  attemptID,
		ReceivedAt: msg.ReceivedAt,
	})
}

// drain forwards frames the client read before it failed.
func (s *Session) drain(c Client, attemptID string) {
	for {
		select {
		case msg := <-c.Messages():
			s.forward(msg, attemptID)
		default:
			return
		}
	}
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	metrics.SetSessionState(st.String())
}

func (s *Session) post(text string) {
	if s.board != nil {
		s.board.Set(text)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
