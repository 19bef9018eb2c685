package connection

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultURL is the blackjack game channel.
const DefaultURL = "wss://arcade.1010819.xyz/game/blackjack/ws"

// Errors
var (
	ErrAlreadyClosed  = errors.New("already closed")
	ErrAlreadyStarted = errors.New("manager already started")
	ErrStopped        = errors.New("manager stopped")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Payload is the decoded form of a text frame. No schema is enforced.
type Payload map[string]any

// Message is a decoded frame delivered to a Handler.
type Message struct {
	Payload    Payload
	AttemptID  uuid.UUID // Connection attempt the frame arrived on
	ReceivedAt time.Time
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // WebSocket URL (e.g., wss://arcade.1010819.xyz/game/blackjack/ws)
	Origin           string        // Optional Origin header
	HandshakeTimeout time.Duration // Dial + upgrade deadline
	WriteTimeout     time.Duration // Deadline for control frames (ping, pong, close)
	PingInterval     time.Duration // How often we ping the server
	ReadTimeout      time.Duration // Max silence (no frame, ping or pong) before the connection is stale
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:              DefaultURL,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     time.Second,
		PingInterval:     15 * time.Second,
		ReadTimeout:      30 * time.Second,
		BufferSize:       256,
	}
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	URL              string        // Fixed endpoint, dialed on every attempt
	Origin           string        // Optional Origin header
	HandshakeTimeout time.Duration // Per-attempt dial timeout
	ReconnectDelay   time.Duration // Fixed wait between a close and the next dial
	PingInterval     time.Duration // Keepalive ping period
	ReadTimeout      time.Duration // Stale-connection deadline, extended by any inbound frame
	BufferSize       int           // Per-connection message buffer
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		URL:              DefaultURL,
		HandshakeTimeout: 10 * time.Second,
		ReconnectDelay:   time.Second,
		PingInterval:     15 * time.Second,
		ReadTimeout:      30 * time.Second,
		BufferSize:       256,
	}
}

// ManagerStats provides counters about the reconnect loop.
type ManagerStats struct {
	Attempts         int64 // Dials started
	Connected        int64 // Dials that completed the handshake
	Disconnects      int64 // Connection ends that scheduled a retry
	MessagesReceived int64
	ParseErrors      int64
}
