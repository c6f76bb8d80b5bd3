package connection_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/rickgao/polymarket-book/internal/book"
	"github.com/rickgao/polymarket-book/internal/connection"
	"github.com/rickgao/polymarket-book/internal/router"
	"github.com/rickgao/polymarket-book/internal/status"
)

// replayClient emits the same snapshot on every connection, then fails.
type replayClient struct {
	messages chan connection.TimestampedMessage
	errs     chan error
}

func newReplayClient(frame string, fail bool) *replayClient {
	c := &replayClient{
		messages: make(chan connection.TimestampedMessage, 1),
		errs:     make(chan error, 1),
	}
	c.messages <- connection.TimestampedMessage{Data: []byte(frame), ReceivedAt: time.Now()}
	if fail {
		c.errs <- &connection.TransportError{Op: "read", Err: errors.New("reset")}
	}
	return c
}

func (c *replayClient) Connect(ctx context.Context) error { return nil }
func (c *replayClient) Close() error { return nil }
func (c *replayClient) Send(data []byte) error { return nil }
func (c *replayClient) Messages() <-chan connection.TimestampedMessage { return c.messages }
func (c *replayClient) Errors() <-chan error { return c.errs }
func (c *replayClient) IsConnected() bool { return true }

func TestReconnect_SnapshotReplayDoesNotDuplicateLevels(t *testing.T) {
	const frame = `{"event_type":"book","asset_id":"A",
		"bids":[{"price":"0.45","size":"100"},{"price":"0.40","size":"50"}],
		"asks":[{"price":"0.55","size":"10"}]}`

	connects := 0
	factory := func(cfg connection.ClientConfig, logger *slog.Logger) connection.Client {
		connects++
		return newReplayClient(frame, connects < 3)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := router.NewQueue[connection.RawMessage]()
	board := status.NewBoard("")
	sess, err := connection.NewSession(connection.DefaultSessionConfig(), connection.Subscription{AssetIDs: []string{"A"}},
		queue, board, nil,
		connection.WithClientFactory(factory),
		connection.WithSleep(func(ctx context.Context, d time.Duration) error { return nil }))
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	go sess.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for queue.Stats().TotalReceived < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	queue.Close()

	if got := queue.Stats().TotalReceived; got < 3 {
		t.Fatalf("frames queued = %d, want at least 3", got)
	}

	r := router.NewRouter(queue, book.NewStore([]string{"A"}, book.Options{}), board, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("router Run failed: %v", err)
	}

	v, ok := r.Books().View("A", 0)
	if !ok {
		t.Fatal("View(A) not found")
	}
	if len(v.Bids) != 2 || len(v.Asks) != 1 {
		t.Errorf("levels = %d bids, %d asks, want 2 and 1", len(v.Bids), len(v.Asks))
	}
	if got := v.BestBid.Decimal.String(); got != "0.45" {
		t.Errorf("BestBid = %s, want 0.45", got)
	}
}
