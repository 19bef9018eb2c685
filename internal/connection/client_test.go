package connection

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// readUntilError keeps a server-side connection open until the peer goes away.
func readUntilError(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func testClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:              url,
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     time.Second,
		BufferSize:       100,
	}
}

func TestClient_Connect(t *testing.T) {
	server := mockWSServer(t, readUntilError)
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if !client.IsConnected() {
		t.Error("expected IsConnected to return true")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if client.IsConnected() {
		t.Error("expected IsConnected to return false after Close")
	}
	if err := client.Err(); err != nil {
		t.Errorf("Err() after local close = %v, want nil", err)
	}
}

func TestClient_Origin(t *testing.T) {
	origins := make(chan string, 1)
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origins <- r.Header.Get("Origin")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		readUntilError(conn)
	}))
	defer server.Close()

	cfg := testClientConfig(wsURL(server))
	cfg.Origin = "https://arcade.1010819.xyz"

	client := NewClient(cfg, nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	select {
	case got := <-origins:
		if got != cfg.Origin {
			t.Errorf("Origin = %q, want %q", got, cfg.Origin)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handshake")
	}
}

func TestClient_Messages(t *testing.T) {
	testMessages := []string{
		`{"type": "deal", "cards": [1, 2]}`,
		`{"status": "success"}`,
		`{"status": "success", "card": "H10", "score": 10}`,
	}

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for _, msg := range testMessages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		// Keep connection open
		time.Sleep(time.Second)
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	var received []string
	timeout := time.After(500 * time.Millisecond)

	for i := 0; i < len(testMessages); i++ {
		select {
		case msg := <-client.Messages():
			received = append(received, string(msg.Data))
			if msg.ReceivedAt.IsZero() {
				t.Error("ReceivedAt should not be zero")
			}
		case <-timeout:
			t.Fatalf("timeout waiting for messages, received %d of %d", len(received), len(testMessages))
		}
	}

	for i, want := range testMessages {
		if received[i] != want {
			t.Errorf("message %d: got %q, want %q", i, received[i], want)
		}
	}
}

func TestClient_ServerClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "not logged in"),
			time.Now().Add(time.Second),
		)
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	select {
	case _, ok := <-client.Messages():
		if ok {
			t.Fatal("expected messages channel to close without data")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for messages channel to close")
	}

	var closeErr *websocket.CloseError
	if !errors.As(client.Err(), &closeErr) {
		t.Fatalf("Err() = %v, want *websocket.CloseError", client.Err())
	}
	if closeErr.Code != websocket.ClosePolicyViolation {
		t.Errorf("close code = %d, want %d", closeErr.Code, websocket.ClosePolicyViolation)
	}
	if client.IsConnected() {
		t.Error("expected IsConnected to return false after server close")
	}
}

func TestClient_DialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err == nil {
		t.Fatal("expected Connect to fail against a non-WebSocket endpoint")
	}

	// Messages must be closed so consumers do not block
	select {
	case _, ok := <-client.Messages():
		if ok {
			t.Error("expected closed messages channel")
		}
	case <-time.After(time.Second):
		t.Fatal("messages channel not closed after failed dial")
	}
}

func TestClient_ConnectAfterClose(t *testing.T) {
	client := NewClient(testClientConfig("ws://localhost:12345"), nil)

	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := client.Connect(context.Background()); err != ErrAlreadyClosed {
		t.Errorf("expected ErrAlreadyClosed, got %v", err)
	}
}

func TestClient_DoubleClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		time.Sleep(time.Second)
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// First close should succeed
	if err := client.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}

	// Second close should be no-op
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestClient_PingHandler(t *testing.T) {
	pongs := make(chan string, 1)

	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.SetPongHandler(func(data string) error {
			pongs <- data
			return nil
		})
		if err := conn.WriteControl(websocket.PingMessage, []byte("heartbeat"), time.Now().Add(time.Second)); err != nil {
			t.Logf("ping error: %v", err)
			return
		}
		// Pong is only dispatched while reading
		readUntilError(conn)
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	select {
	case data := <-pongs:
		if data != "heartbeat" {
			t.Errorf("pong data = %q, want %q", data, "heartbeat")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for pong")
	}

	if !client.IsConnected() {
		t.Error("expected client to be connected after ping")
	}
}

func TestClient_HeartbeatKeepsQuietConnection(t *testing.T) {
	var pings atomic.Int32

	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.SetPingHandler(func(data string) error {
			pings.Add(1)
			return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
		})
		// Never sends data; only answers pings
		readUntilError(conn)
	})
	defer server.Close()

	cfg := testClientConfig(wsURL(server))
	cfg.PingInterval = 50 * time.Millisecond
	cfg.ReadTimeout = 300 * time.Millisecond
	client := NewClient(cfg, nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	// Several read timeouts pass with no data frames
	time.Sleep(time.Second)

	if !client.IsConnected() {
		t.Fatalf("connection dropped while pongs were arriving, err = %v", client.Err())
	}
	if got := pings.Load(); got < 3 {
		t.Errorf("server saw %d pings, want at least 3", got)
	}
}

func TestClient_StaleConnection(t *testing.T) {
	release := make(chan struct{})

	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Half-open peer: never reads, so pings go unanswered
		<-release
	})
	defer server.Close()
	defer close(release)

	cfg := testClientConfig(wsURL(server))
	cfg.PingInterval = time.Hour
	cfg.ReadTimeout = 200 * time.Millisecond
	client := NewClient(cfg, nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	select {
	case _, ok := <-client.Messages():
		if ok {
			t.Fatal("unexpected message from silent server")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stale connection was not detected")
	}

	var netErr net.Error
	if err := client.Err(); !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("Err() = %v, want read timeout", err)
	}
	if client.IsConnected() {
		t.Error("expected IsConnected false after read timeout")
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIgnorePongError(t *testing.T) {
	broken := errors.New("broken pipe")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "close sent", err: websocket.ErrCloseSent, want: nil},
		{name: "write timeout", err: timeoutError{}, want: nil},
		{name: "wrapped timeout", err: &net.OpError{Op: "write", Net: "tcp", Err: timeoutError{}}, want: nil},
		{name: "other error", err: broken, want: broken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ignorePongError(tt.err); got != tt.want {
				t.Errorf("ignorePongError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
