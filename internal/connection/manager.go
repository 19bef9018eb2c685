package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Manager owns the reconnect loop for the game endpoint.
type Manager interface {
	// Start begins the reconnect loop in the background.
	Start(ctx context.Context) error

	// Stop cancels the loop, closes the live connection and waits for the
	// loop to exit or ctx to expire.
	Stop(ctx context.Context) error

	// Stats returns current loop counters.
	Stats() ManagerStats
}

// errClosedLocally marks a connection that ended because the loop was stopping.
var errClosedLocally = errors.New("closed locally")

// errNullPayload rejects a JSON null frame, which decodes without error.
var errNullPayload = errors.New("payload is null, want an object")

// manager implements the Manager interface.
type manager struct {
	cfg     ManagerConfig
	handler Handler
	logger  *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}

	attempts    atomic.Int64
	connected   atomic.Int64
	disconnects atomic.Int64
	received    atomic.Int64
	parseErrors atomic.Int64
}

// NewManager creates a new Connection Manager. A nil handler discards messages.
func NewManager(cfg ManagerConfig, handler Handler, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if handler == nil {
		handler = NopHandler
	}

	defaults := DefaultManagerConfig()
	if cfg.URL == "" {
		cfg.URL = defaults.URL
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaults.ReconnectDelay
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = defaults.BufferSize
	}

	return &manager{
		cfg:     cfg,
		handler: handler,
		logger:  logger.With("component", "connection_manager"),
		done:    make(chan struct{}),
	}
}

// Start begins the connection manager.
func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrStopped
	}
	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	go m.run(loopCtx)

	m.logger.Info("connection manager started",
		"url", m.cfg.URL,
		"reconnect_delay", m.cfg.ReconnectDelay,
	)

	return nil
}

// Stop gracefully shuts down.
func (m *manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	started := m.started
	cancel := m.cancel
	m.mu.Unlock()

	if !started {
		return nil
	}

	m.logger.Info("stopping connection manager")
	cancel()

	select {
	case <-m.done:
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout, loop still running")
		return fmt.Errorf("stop connection manager: %w", ctx.Err())
	}

	m.logger.Info("connection manager stopped")
	return nil
}

// Stats returns current statistics.
func (m *manager) Stats() ManagerStats {
	return ManagerStats{
		Attempts:         m.attempts.Load(),
		Connected:        m.connected.Load(),
		Disconnects:      m.disconnects.Load(),
		MessagesReceived: m.received.Load(),
		ParseErrors:      m.parseErrors.Load(),
	}
}

// run is the reconnect loop: connect, read until close, wait, repeat.
// Only this goroutine dials, so attempts never overlap.
func (m *manager) run(ctx context.Context) {
	defer close(m.done)

	for {
		err := m.connectOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		m.disconnects.Add(1)
		m.logger.Warn("disconnected, reconnecting",
			"delay", m.cfg.ReconnectDelay,
			"error", err,
		)

		timer := time.NewTimer(m.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// connectOnce dials one connection and consumes it until it ends. The
// returned error describes why it ended; all causes are treated alike.
func (m *manager) connectOnce(ctx context.Context) error {
	attemptID := uuid.New()
	logger := m.logger.With("attempt_id", attemptID.String())

	m.attempts.Add(1)
	logger.Debug("connecting", "url", m.cfg.URL)

	client := NewClient(ClientConfig{
		URL:              m.cfg.URL,
		Origin:           m.cfg.Origin,
		HandshakeTimeout: m.cfg.HandshakeTimeout,
		PingInterval:     m.cfg.PingInterval,
		ReadTimeout:      m.cfg.ReadTimeout,
		BufferSize:       m.cfg.BufferSize,
	}, logger)
	defer client.Close()

	// Stopping the loop closes the live connection, which ends the range below.
	stopClose := context.AfterFunc(ctx, func() { client.Close() })
	defer stopClose()

	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("dial %s: %w", m.cfg.URL, err)
	}

	m.connected.Add(1)
	logger.Info("connected", "url", m.cfg.URL)

	for msg := range client.Messages() {
		m.handleMessage(ctx, logger, attemptID, msg)
	}

	if err := client.Err(); err != nil {
		return err
	}
	return errClosedLocally
}

// handleMessage decodes one frame and hands it to the handler. Malformed
// frames are logged and dropped; the connection stays open.
func (m *manager) handleMessage(ctx context.Context, logger *slog.Logger, attemptID uuid.UUID, msg TimestampedMessage) {
	m.received.Add(1)

	var payload Payload
	err := json.Unmarshal(msg.Data, &payload)
	if err == nil && payload == nil {
		err = errNullPayload
	}
	if err != nil {
		m.parseErrors.Add(1)
		logger.Warn("dropping malformed message",
			"error", err,
			"bytes", len(msg.Data),
		)
		return
	}

	logger.Debug("message received", "keys", len(payload))

	m.handler.HandleMessage(ctx, Message{
		Payload:    payload,
		AttemptID:  attemptID,
		ReceivedAt: msg.ReceivedAt,
	})
}
