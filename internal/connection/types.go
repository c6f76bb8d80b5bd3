package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Errors
var (
	ErrNotConnected      = errors.New("not connected")
	ErrPongTimeout       = errors.New("no pong within timeout")
	ErrAlreadyClosed     = errors.New("already closed")
	ErrEmptySubscription = errors.New("subscription has no asset ids")
)

// TransportError is a failure of the underlying connection. It is never
// fatal to a Session; the session backs off and reconnects.
type TransportError struct {
	Op  string // dial, subscribe, read, ping
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// RawMessage is a frame handed to the Message Router.
type RawMessage struct {
	Data       []byte    // Raw frame bytes
	Source     string    // "ws" or "rest"
	AttemptID  string    // Connection attempt that produced the frame
	ReceivedAt time.Time // Local timestamp when the frame was read
}

// Sources
const (
	SourceWS   = "ws"
	SourceREST = "rest"
)

// Subscription is the market-channel subscribe request. It is sent
// unchanged on every (re)connect.
type Subscription struct {
	AssetIDs []string
}

type subscriptionWire struct {
	AssetIDs             []string `json:"assets_ids"`
	Type                 string   `json:"type"`
	CustomFeatureEnabled bool     `json:"custom_feature_enabled"`
}

// Marshal renders the subscribe message.
func (s Subscription) Marshal() ([]byte, error) {
	if len(s.AssetIDs) == 0 {
		return nil, ErrEmptySubscription
	}
	return json.Marshal(subscriptionWire{
		AssetIDs:             s.AssetIDs,
		Type:                 "market",
		CustomFeatureEnabled: true,
	})
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Market channel URL
	PingInterval     time.Duration // Interval between client pings
	PongTimeout      time.Duration // Max time without a pong before the connection fails
	WriteTimeout     time.Duration // Write deadline for sends
	HandshakeTimeout time.Duration // Dial handshake limit
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:              "wss://ws-subscriptions-clob.polymarket.com/ws/market",
		PingInterval:     20 * time.Second,
		PongTimeout:      40 * time.Second,
		WriteTimeout:     5 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		BufferSize:       1000,
	}
}

// SessionConfig configures a Session.
type SessionConfig struct {
	Client             ClientConfig
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
}

// DefaultSessionConfig returns sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Client:             DefaultClientConfig(),
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  30 * time.Second,
	}
}

// State is a Session state.
type State int32

const (
	StateConnecting State = iota
	StateStreaming
	StateBackoff
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateBackoff:
		return "backoff"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
